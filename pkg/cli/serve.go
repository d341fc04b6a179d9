package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/restkit/internal/cliconfig"
	"github.com/getmockd/restkit/pkg/app"
	"github.com/getmockd/restkit/pkg/config"
)

// serveCmd represents the serve command, the foreground server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST server (foreground)",
	Long: `Start the REST server and mount every configured resource.

Flags override environment variables, which override the configuration file.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	Example: `  # Start with restkit.yaml from the current directory
  restkit serve

  # Start with a config file on a custom port
  restkit serve --config api.yaml --port 8080

  # Serve from MongoDB instead of memory
  restkit serve --mongo-uri mongodb://localhost:27017

  # JSON logs with request metrics on /metrics
  restkit serve --log-format json --metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "HTTP server port (env: "+cliconfig.EnvPort+")")
	serveCmd.Flags().String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error) (env: "+cliconfig.EnvLogLevel+")")
	serveCmd.Flags().String("log-format", config.DefaultLogFormat, "Log format (text, json) (env: "+cliconfig.EnvLogFormat+")")
	serveCmd.Flags().String("mongo-uri", "", "Serve from MongoDB at this URI (env: "+cliconfig.EnvMongoURI+")")
	serveCmd.Flags().Bool("metrics", false, "Serve request metrics on /metrics (env: "+cliconfig.EnvMetrics+")")
	serveCmd.Flags().Float64("rate-limit", 0, "Requests per second per client, 0 disables (env: "+cliconfig.EnvRateLimit+")")
}

func runServe(cmd *cobra.Command, _ []string) error {
	lc, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, lc.Config, app.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	log := a.Logger()
	log.Info("configuration loaded",
		"file", lc.Path,
		"resources", len(lc.Config.Resources),
		"store", lc.Config.Store.Driver)
	for _, key := range lc.Settings.Keys() {
		log.Debug("setting override", "key", key, "source", lc.Settings.Source(key))
	}

	return a.Run(ctx)
}
