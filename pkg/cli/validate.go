package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateOutput is the JSON output of `restkit validate`.
type ValidateOutput struct {
	Valid     bool              `json:"valid"`
	File      string            `json:"file,omitempty"`
	Resources []string          `json:"resources,omitempty"`
	Sources   map[string]string `json:"sources,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
}

var validateVerbose bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file without starting the server",
	Long: `Validate a restkit configuration file without starting the server.

This command checks:
  - JSON or YAML syntax, rejecting unknown fields
  - The document against the configuration schema (see restkit schema)
  - Server settings (port, timeouts, log level and format)
  - The store driver and its connection settings
  - Every resource: name, path, supported methods, paging, saved queries`,
	Example: `  # Validate the config in the current directory
  restkit validate

  # Validate a specific file and show where each setting came from
  restkit validate -c api.yaml --verbose`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateVerbose, "verbose", false, "Show resources and setting sources")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	lc, err := loadConfig(cmd)
	if err != nil {
		out := ValidateOutput{Valid: false, Errors: validationMessages(err)}
		if perr := printResult(cmd, out, func() {
			fmt.Fprintln(cmd.ErrOrStderr(), "Configuration is invalid:")
			for _, msg := range out.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", msg)
			}
		}); perr != nil {
			return perr
		}
		return err
	}

	out := ValidateOutput{Valid: true, File: lc.Path, Sources: lc.Settings.Sources}
	for _, r := range lc.Config.Resources {
		out.Resources = append(out.Resources, r.ResolvedPath())
	}

	return printResult(cmd, out, func() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s is valid (%d resources)\n", lc.Path, len(out.Resources))
		if !validateVerbose {
			return
		}
		for _, r := range lc.Config.Resources {
			fmt.Fprintf(w, "  %s -> %s\n", r.Name, r.ResolvedPath())
		}
		for _, key := range lc.Settings.Keys() {
			fmt.Fprintf(w, "  %s from %s\n", key, lc.Settings.Source(key))
		}
		if len(lc.Settings.Sources) == 0 {
			fmt.Fprintln(w, "  no overrides from environment or flags")
		}
	})
}

// validationMessages flattens joined validation errors into one message each.
func validationMessages(err error) []string {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, e.Error())
	}
	return msgs
}
