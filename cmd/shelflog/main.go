package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/emzola/shelflog/clients"
	"github.com/emzola/shelflog/internal/jsonlog"
	"github.com/spf13/cobra"
)

const defaultAPI = "http://localhost:8452"

// options are the flags shared by every command.
type options struct {
	api     string
	verbose bool
	timeout time.Duration
	output  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "shelflog",
		Short:         "Keep track of the books you read",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "text", "json", "yaml":
				return nil
			}
			return fmt.Errorf("unsupported output format %q", opts.output)
		},
	}
	api := os.Getenv("SHELFLOG_API")
	if api == "" {
		api = defaultAPI
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.api, "api", api, "ShelfLog API base URL ($SHELFLOG_API)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format (text|json|yaml)")

	root.AddCommand(
		listCmd(opts),
		showCmd(opts),
		addCmd(opts),
		editCmd(opts),
		deleteCmd(opts),
		shellCmd(opts),
	)
	return root
}

// client builds the API client for the configured server.
func (o *options) client(stderr io.Writer) *clients.API {
	var logger *jsonlog.Logger
	if o.verbose {
		logger = jsonlog.New(stderr, jsonlog.LevelDebug)
	}
	return clients.NewAPI(o.api, clients.NewHTTPClient(o.timeout), logger)
}
