package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/restkit/pkg/openapi"
)

var (
	openapiFormat string
	openapiOutput string
)

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print an OpenAPI document describing every resource",
	Long: `Generate an OpenAPI 3 document from the configuration.

Each resource contributes its collection and item paths and its saved
queries. The store is not contacted.

Set server.openapi in the configuration to also serve the document at
/openapi.json and /openapi.yaml.`,
	Example: `  # Print the document as YAML
  restkit openapi

  # Write JSON to a file
  restkit openapi --format json -o openapi.json`,
	RunE: runOpenAPI,
}

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.Flags().StringVar(&openapiFormat, "format", "yaml", "Output format (yaml, json)")
	openapiCmd.Flags().StringVarP(&openapiOutput, "output", "o", "", "Write to a file instead of stdout")
}

func runOpenAPI(cmd *cobra.Command, _ []string) error {
	lc, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := buildOffline(cmd, lc)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(cmd.Context()) }()

	doc := a.OpenAPI()

	format := openapiFormat
	if jsonOutput {
		format = "json"
	}
	var data []byte
	switch format {
	case "yaml", "yml":
		data, err = openapi.MarshalYAML(doc)
	case "json":
		data, err = openapi.MarshalJSON(doc)
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown format %q (use yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if openapiOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(openapiOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", openapiOutput, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", openapiOutput)
	return nil
}
