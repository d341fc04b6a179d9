package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/restkit/internal/cliconfig"
	"github.com/getmockd/restkit/pkg/config"
)

// ErrNoConfig is returned when no configuration file is given or found.
var ErrNoConfig = errors.New("no configuration file found")

// loadedConfig is a validated configuration and where its settings came from.
type loadedConfig struct {
	Path     string
	Config   *config.Config
	Settings *cliconfig.Settings
}

// resolveSettings layers environment variables and the flags set on cmd.
// Flags that a command does not define are skipped.
func resolveSettings(cmd *cobra.Command) (*cliconfig.Settings, error) {
	s := cliconfig.New()
	cliconfig.LoadEnv(s)

	flags := cmd.Flags()
	if flags.Changed("config") {
		s.ConfigFile = configFile
		s.Set(cliconfig.KeyConfigFile, cliconfig.SourceFlag)
	}

	if f := flags.Lookup("port"); f != nil && f.Changed {
		port, err := flags.GetInt("port")
		if err != nil {
			return nil, err
		}
		s.Port = port
		s.Set(cliconfig.KeyPort, cliconfig.SourceFlag)
	}
	stringFlag := func(name, key string, dst *string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
			s.Set(key, cliconfig.SourceFlag)
		}
	}
	stringFlag("log-level", cliconfig.KeyLogLevel, &s.LogLevel)
	stringFlag("log-format", cliconfig.KeyLogFormat, &s.LogFormat)
	stringFlag("mongo-uri", cliconfig.KeyMongoURI, &s.MongoURI)

	if f := flags.Lookup("metrics"); f != nil && f.Changed {
		metrics, err := flags.GetBool("metrics")
		if err != nil {
			return nil, err
		}
		s.Metrics = metrics
		s.Set(cliconfig.KeyMetrics, cliconfig.SourceFlag)
	}

	if f := flags.Lookup("rate-limit"); f != nil && f.Changed {
		rps, err := flags.GetFloat64("rate-limit")
		if err != nil {
			return nil, err
		}
		s.RateLimit = rps
		s.Set(cliconfig.KeyRateLimit, cliconfig.SourceFlag)
	}

	return s, nil
}

// loadConfig resolves settings for cmd and loads the configuration file
// they point to.
func loadConfig(cmd *cobra.Command) (*loadedConfig, error) {
	s, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	path := s.ResolveConfigFile(dir)
	if path == "" {
		return nil, fmt.Errorf("%w (looked for %s); use --config or %s",
			ErrNoConfig, strings.Join(cliconfig.DefaultConfigFiles, ", "), cliconfig.EnvConfig)
	}

	cfg, err := config.LoadFromFile(path, s.Apply)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &loadedConfig{Path: path, Config: cfg, Settings: s}, nil
}
