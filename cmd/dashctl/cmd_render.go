package main

import (
	"cmp"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/laborwatch/cluedash/config"
	"github.com/laborwatch/cluedash/payload"
	"github.com/laborwatch/cluedash/workbook"
	"github.com/spf13/cobra"
)

// renderEnv provides the environment for the render command.
type renderEnv struct {
	payloadFile  string
	workbookFile string
	outDir       string
}

// getRenderCmd returns the definition of the render command.
func getRenderCmd() *cobra.Command {
	env := &renderEnv{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved dashboard payload to a static HTML page",
		Run:   env.runRenderCmd,
	}

	cmd.Flags().StringVar(&env.payloadFile, "payload", "", "Dashboard payload JSON (payload.json or a saved X-Dashboard-Data value)")
	cmd.Flags().StringVar(&env.workbookFile, "workbook", "", "Summary workbook to list on the page")
	cmd.Flags().StringVar(&env.outDir, "out", "", "Output directory (defaults to the configured data folder)")
	must(cmd.MarkFlagRequired("payload"))

	return cmd
}

// runRenderCmd executes the render command.
func (e *renderEnv) runRenderCmd(cmd *cobra.Command, _ []string) {
	ifErrLogExit(cmd, e.render(loadConfig(cmd), cmd.OutOrStdout()))
}

func (e *renderEnv) render(cfg *config.Config, out io.Writer) error {
	p, err := payload.Load(e.payloadFile)
	if err != nil {
		return fmt.Errorf("loading %s: %w", e.payloadFile, err)
	}

	var summary *workbook.Summary
	if e.workbookFile != "" {
		data, err := os.ReadFile(e.workbookFile)
		if err != nil {
			return err
		}
		if summary, err = workbook.Inspect(data); err != nil {
			log.Printf("Error inspecting workbook %s: %v", e.workbookFile, err)
		}
	}

	page, err := writeDashboard(cmp.Or(e.outDir, cfg.Data.Folder), p, summary, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote dashboard to %s\n", page)
	return nil
}
