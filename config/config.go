package config

import "time"

// Config defines the app configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port" env:"PORT" env-default:"8452"`
		Env  string `yaml:"env" env:"ENV" env-default:"development"`
	} `yaml:"server"`
	Database struct {
		Driver                 string        `yaml:"driver" env:"DBDRIVER" env-default:"mongodb"`
		URI                    string        `yaml:"uri" env:"DBURI"`
		Name                   string        `yaml:"name" env:"DBNAME" env-default:"shelflog"`
		Collection             string        `yaml:"collection" env:"DBCOLLECTION" env-default:"books"`
		MaxOpenConns           int           `yaml:"max_open_conns" env:"MAXOPENCONNS" env-default:"10"`
		MinOpenConns           int           `yaml:"min_open_conns" env:"MINOPENCONNS" env-default:"2"`
		MaxIdleTime            string        `yaml:"max_idle_time" env:"MAXIDLETIME" env-default:"15m"`
		OperationTimeout       time.Duration `yaml:"operation_timeout" env:"DBOPTIMEOUT" env-default:"15s"`
		ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout" env:"DBSELECTIONTIMEOUT" env-default:"15s"`
		SocketTimeout          time.Duration `yaml:"socket_timeout" env:"DBSOCKETTIMEOUT" env-default:"60s"`
		ReconnectDelay         time.Duration `yaml:"reconnect_delay" env:"DBRECONNECTDELAY" env-default:"5s"`
		Heartbeat              time.Duration `yaml:"heartbeat" env:"DBHEARTBEAT" env-default:"10s"`
	} `yaml:"database"`
	Logger struct {
		Level string `yaml:"level" env:"LOGLEVEL" env-default:"info"`
	} `yaml:"logger"`
	Smtp struct {
		Host      string `yaml:"host" env:"SMTPHOST"`
		Port      int    `yaml:"port" env:"SMTPPORT" env-default:"25"`
		Username  string `yaml:"username" env:"SMTPUSERNAME"`
		Password  string `yaml:"password" env:"SMTPPASSWORD"`
		Sender    string `yaml:"sender" env:"SMTPSENDER" env-default:"ShelfLog <no-reply@shelflog.local>"`
		Recipient string `yaml:"recipient" env:"SMTPRECIPIENT"`
	} `yaml:"smtp"`
	S3 struct {
		AccessKeyID     string `yaml:"access_key_id" env:"ACCESSKEYID"`
		SecretAccessKey string `yaml:"secret_access_key" env:"SECRETACCESSKEY"`
		Region          string `yaml:"region" env:"REGION"`
		Bucket          string `yaml:"bucket" env:"BUCKET"`
	} `yaml:"s3"`
	Limiter struct {
		RPS     float64 `yaml:"rps" env:"RPS" env-default:"4"`
		Burst   int     `yaml:"burst" env:"BURST" env-default:"8"`
		Enabled bool    `yaml:"enabled" env:"LENABLED" env-default:"true"`
	} `yaml:"limiter"`
	Cors struct {
		TrustedOrigins []string `yaml:"trusted_origins" env:"TRUSTEDORIGINS" env-separator:" "`
	} `yaml:"cors"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"MENABLED" env-default:"true"`
	} `yaml:"metrics"`
	BasicAuth struct {
		Username     string `yaml:"username" env:"USERNAME"`
		PasswordHash string `yaml:"password_hash" env:"PASSWORDHASH"`
	} `yaml:"basic_auth"`
}

// MailEnabled reports whether enough SMTP settings are present to send notifications.
func (c Config) MailEnabled() bool {
	return c.Smtp.Host != "" && c.Smtp.Recipient != ""
}

// BackupEnabled reports whether an S3 bucket has been configured.
func (c Config) BackupEnabled() bool {
	return c.S3.Bucket != "" && c.S3.Region != ""
}
