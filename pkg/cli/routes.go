package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/restkit/pkg/app"
	"github.com/getmockd/restkit/pkg/cli/internal/output"
	"github.com/getmockd/restkit/pkg/config"
	"github.com/getmockd/restkit/pkg/logging"
)

// RouteOutput is one row of `restkit routes`.
type RouteOutput struct {
	Resource string   `json:"resource"`
	Pattern  string   `json:"pattern"`
	Handler  string   `json:"handler"`
	Methods  []string `json:"methods"`
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the routes mounted for every resource",
	Long: `List the URL patterns every configured resource mounts, in matching order.
Static routes are matched before the default {path}/{id} route.

The store is not contacted: resources are built over memory stores.`,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	lc, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := buildOffline(cmd, lc)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(cmd.Context()) }()

	var rows []RouteOutput
	for _, res := range a.Server.Resources() {
		supports := res.Config().Supports
		for _, r := range res.Routes() {
			row := RouteOutput{Resource: res.Name(), Pattern: r.Pattern, Handler: "crud", Methods: supports}
			if r.Static != "" {
				row.Handler = "static:" + r.Static
				row.Methods = []string{"any"}
			}
			rows = append(rows, row)
		}
	}

	return printResult(cmd, rows, func() {
		tw := output.Table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "RESOURCE\tPATTERN\tHANDLER\tMETHODS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Resource, r.Pattern, r.Handler, strings.Join(r.Methods, ","))
		}
		_ = tw.Flush()
	})
}

// buildOffline assembles lc over memory stores, so that nothing is contacted
// or written.
func buildOffline(cmd *cobra.Command, lc *loadedConfig) (*app.App, error) {
	offline := *lc.Config
	offline.Store = config.StoreConfig{Driver: config.DriverMemory}
	return app.Build(cmd.Context(), &offline, app.WithLogger(logging.Nop()))
}
