package main

import (
	"fmt"
	"io"

	"github.com/laborwatch/cluedash/dashboard"
	"github.com/laborwatch/cluedash/payload"
	"github.com/laborwatch/cluedash/table"
	"github.com/spf13/cobra"
)

// tablesEnv provides the environment for the tables command.
type tablesEnv struct {
	payloadFile string
	tableID     string
	sortFields  []string
	page        int
}

// getTablesCmd returns the definition of the tables command.
func getTablesCmd() *cobra.Command {
	env := &tablesEnv{}
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the large-project tables of a saved payload",
		Long: `
Prints every large-project table, or only --table. Each --sort behaves like a click on
that column header: the first sorts ascending, repeating it flips the order.`,
		Run: env.runTablesCmd,
	}

	cmd.Flags().StringVar(&env.payloadFile, "payload", "", "Dashboard payload JSON")
	cmd.Flags().StringVar(&env.tableID, "table", "", "Only print this table ("+dashboard.JiansheLargeProjects+" or "+dashboard.FeijianLargeProjects+")")
	cmd.Flags().StringSliceVar(&env.sortFields, "sort", nil, "Column to sort by; repeat to toggle the order")
	cmd.Flags().IntVar(&env.page, "page", 1, "Page to print")
	must(cmd.MarkFlagRequired("payload"))

	return cmd
}

// runTablesCmd executes the tables command.
func (e *tablesEnv) runTablesCmd(cmd *cobra.Command, _ []string) {
	ifErrLogExit(cmd, e.print(cmd.OutOrStdout()))
}

func (e *tablesEnv) print(out io.Writer) error {
	p, err := payload.Load(e.payloadFile)
	if err != nil {
		return fmt.Errorf("loading %s: %w", e.payloadFile, err)
	}
	d, err := dashboard.Render(p)
	if err != nil {
		return err
	}
	defer d.Destroy()

	printed := 0
	for _, t := range d.ProjectTables {
		if e.tableID != "" && t.ID != e.tableID {
			continue
		}
		for _, field := range e.sortFields {
			if _, err := d.Tables.Sort(t.ID, field); err != nil {
				return err
			}
		}
		if e.page != 1 {
			_, ok, err := d.Tables.GoTo(t.ID, e.page)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("table %s has no page %d", t.ID, e.page)
			}
		}
		page, err := d.Tables.View(t.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", t.Title)
		if err := table.WriteText(out, page); err != nil {
			return err
		}
		printed++
	}
	if printed == 0 && e.tableID != "" {
		return fmt.Errorf("%w: %q", table.ErrUnknownTable, e.tableID)
	}
	return nil
}
