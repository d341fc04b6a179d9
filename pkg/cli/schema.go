package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/restkit/pkg/config"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the configuration file",
	Long: `Print the JSON Schema that every configuration file is checked against.

Point your editor's YAML or JSON language server at the file to get
completion and inline errors while editing restkit.yaml.`,
	Example: `  # Save the schema next to the config
  restkit schema -o restkit.schema.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if schemaOutput == "" {
			_, err := cmd.OutOrStdout().Write(config.SchemaJSON)
			return err
		}
		if err := os.WriteFile(schemaOutput, config.SchemaJSON, 0o644); err != nil {
			return fmt.Errorf("failed to write schema: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", schemaOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Write to a file instead of stdout")
}
