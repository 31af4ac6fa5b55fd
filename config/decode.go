package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Decode builds the configuration. Values from a .env file in the working
// directory are exported first, then the YAML file at path is read (if path is
// not empty) and finally environment variables override anything set so far.
func Decode(path string) (Config, error) {
	var cfg Config
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(path, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	switch cfg.Database.Driver {
	case "mongodb", "postgres", "memory":
	default:
		return cfg, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver != "memory" && cfg.Database.URI == "" {
		return cfg, errors.New("database uri must be provided")
	}
	return cfg, nil
}
