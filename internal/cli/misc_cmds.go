package cli

import (
	"fmt"
	"runtime"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func (c *cli) consoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive console",
		Long: `Open a full screen console with the dashboard, companies and orders. Every key
press or mouse action counts as activity; after the idle timeout the console closes and
the session is logged out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.session(cmd, ""); err != nil {
				return err
			}
			if c.opts.Console == nil {
				return fmt.Errorf("console is not available in this build")
			}
			return c.opts.Console(cmd.Context(), c.app)
		},
	}
}

func (c *cli) versionCommand() *cobra.Command {
	return noApp(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.output == OutputTable {
				fmt.Fprintln(cmd.OutOrStdout(), figure.NewFigure("rxadmin", "", true).String())
			}
			return c.out.print(versionInfo{
				Version:  c.opts.Version,
				Go:       runtime.Version(),
				Platform: runtime.GOOS + "/" + runtime.GOARCH,
			})
		},
	})
}

type versionInfo struct {
	Version  string `json:"version" yaml:"version"`
	Go       string `json:"go" yaml:"go"`
	Platform string `json:"platform" yaml:"platform"`
}

func (v versionInfo) headers() []string { return keyValues{}.headers() }

func (v versionInfo) rows() [][]string {
	return keyValues{{"Version", v.Version}, {"Go", v.Go}, {"Platform", v.Platform}}.rows()
}
