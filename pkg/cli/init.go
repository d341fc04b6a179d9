package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getmockd/restkit/internal/cliconfig"
	"github.com/getmockd/restkit/pkg/cli/internal/output"
	"github.com/getmockd/restkit/pkg/config"
)

// InitOutput is the JSON output of `restkit init`.
type InitOutput struct {
	File      string   `json:"file"`
	Driver    string   `json:"driver"`
	Resources []string `json:"resources"`
}

var (
	initName     string
	initPath     string
	initDriver   string
	initMongoURI string
	initPort     int
	initOutput   string
	initForce    bool
)

// isInteractive reports whether prompts can be shown.
var isInteractive = func() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a restkit configuration file with one resource.

Without --name, and with a terminal attached, the settings are asked for
interactively.`,
	Example: `  # Answer a few questions
  restkit init

  # Non-interactive
  restkit init --name users --driver file -o api.yaml`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initName, "name", "", "Resource (collection) name")
	initCmd.Flags().StringVar(&initPath, "path", "", "Resource path (default: /<name>)")
	initCmd.Flags().StringVar(&initDriver, "driver", config.DriverMemory, "Store driver (memory, file, mongo)")
	initCmd.Flags().StringVar(&initMongoURI, "mongo-uri", "", "MongoDB URI for the mongo driver")
	initCmd.Flags().IntVar(&initPort, "port", config.DefaultPort, "HTTP server port")
	initCmd.Flags().StringVarP(&initOutput, "output", "o", cliconfig.DefaultConfigFiles[0], "File to write")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
}

func runInit(cmd *cobra.Command, _ []string) error {
	if !cmd.Flags().Changed("name") {
		if !isInteractive() {
			return errors.New("--name is required when not running interactively")
		}
		if err := promptInit(); err != nil {
			return err
		}
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: initPort},
		Store:  config.StoreConfig{Driver: initDriver, URI: initMongoURI},
		Resources: []config.ResourceConfig{{
			Name: strings.TrimSpace(initName),
			Path: strings.TrimSpace(initPath),
		}},
	}
	if cfg.Server.Port == config.DefaultPort {
		cfg.Server.Port = 0
	}

	check := *cfg
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return err
	}

	data, err := config.ToYAML(cfg)
	if err != nil {
		return err
	}

	if _, err := os.Stat(initOutput); err == nil {
		if !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", initOutput)
		}
		output.Warn(cmd.ErrOrStderr(), "overwriting %s", initOutput)
	}
	if err := os.WriteFile(initOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", initOutput, err)
	}

	out := InitOutput{File: initOutput, Driver: check.Store.Driver, Resources: []string{check.Resources[0].ResolvedPath()}}
	return printResult(cmd, out, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s with resource %s (%s store)\n", out.File, out.Resources[0], out.Driver)
		fmt.Fprintln(cmd.OutOrStdout(), "Run 'restkit serve' to start the server.")
	})
}

func promptInit() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What is the resource called?").
				Placeholder("users").
				Value(&initName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Which path should it be served on?").
				Description("Leave empty for /<name>").
				Value(&initPath),
			huh.NewSelect[string]().
				Title("Where should documents be stored?").
				Options(
					huh.NewOption("In memory", config.DriverMemory),
					huh.NewOption("JSON files", config.DriverFile),
					huh.NewOption("MongoDB", config.DriverMongo),
				).
				Value(&initDriver),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("MongoDB URI").
				Placeholder("mongodb://localhost:27017").
				Value(&initMongoURI).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("a URI is required for the mongo driver")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return initDriver != config.DriverMongo }),
	)
	return form.Run()
}
