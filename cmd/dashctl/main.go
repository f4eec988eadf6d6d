// dashctl uploads clue spreadsheets to the processing backend from a terminal and
// renders the resulting dashboard to static files.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/laborwatch/cluedash/config"
	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/dashboard"
	"github.com/laborwatch/cluedash/payload"
	"github.com/laborwatch/cluedash/workbook"
	"github.com/spf13/cobra"
)

const fstrConfig = "config"

func main() {
	root := &cobra.Command{
		Use:   "dashctl",
		Short: "Labor inspection clue dashboard from the command line",
	}
	root.PersistentFlags().String(fstrConfig, "cluedash.toml", "TOML configuration file")
	root.AddCommand(getUploadCmd(), getRenderCmd(), getTablesCmd(), getRankingsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func ifErrLogExit(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) *config.Config {
	path, err := cmd.Flags().GetString(fstrConfig)
	ifErrLogExit(cmd, err)
	cfg, err := config.Load(path)
	ifErrLogExit(cmd, err)
	return cfg
}

// writeDashboard renders p into outDir as a static page plus the chart options that
// the server's dev routes publish under /chartdata.
func writeDashboard(outDir string, p *payload.Payload, summary *workbook.Summary, notice string) (string, error) {
	d, err := dashboard.Render(p)
	if err != nil {
		return "", err
	}
	defer d.Destroy()
	d.Workbook = summary

	if err := os.MkdirAll(outDir, consts.DirPermissions); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, consts.DashboardFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.FilePermissions)
	if err != nil {
		return "", err
	}
	if err := d.WriteHTML(f, dashboard.PageOptions{Notice: notice}); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if _, err := d.Charts.ExportJSON(filepath.Join(outDir, "chartdata")); err != nil {
		return "", fmt.Errorf("exporting charts: %w", err)
	}
	return path, nil
}
