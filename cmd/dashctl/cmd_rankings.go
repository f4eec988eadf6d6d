package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/laborwatch/cluedash/dashboard"
	"github.com/laborwatch/cluedash/payload"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// rankingsEnv provides the environment for the rankings command.
type rankingsEnv struct {
	payloadFile string
	limit       int
}

// getRankingsCmd returns the definition of the rankings command.
func getRankingsCmd() *cobra.Command {
	env := &rankingsEnv{}
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Print the district rankings of a saved payload",
		Run:   env.runRankingsCmd,
	}

	cmd.Flags().StringVar(&env.payloadFile, "payload", "", "Dashboard payload JSON")
	cmd.Flags().IntVar(&env.limit, "limit", 0, "Only print the first N entries of each ranking (0 prints all)")
	must(cmd.MarkFlagRequired("payload"))

	return cmd
}

// runRankingsCmd executes the rankings command.
func (e *rankingsEnv) runRankingsCmd(cmd *cobra.Command, _ []string) {
	ifErrLogExit(cmd, e.print(cmd.OutOrStdout()))
}

func (e *rankingsEnv) print(out io.Writer) error {
	p, err := payload.Load(e.payloadFile)
	if err != nil {
		return fmt.Errorf("loading %s: %w", e.payloadFile, err)
	}
	d, err := dashboard.Render(p)
	if err != nil {
		return err
	}
	defer d.Destroy()

	for _, r := range d.Rankings {
		fmt.Fprintf(out, "%s\n", r.Title)
		tw := tablewriter.NewWriter(out)
		tw.SetHeader([]string{"排名", "县市区", "数量"})
		tw.SetAutoWrapText(false)
		entries := r.Entries
		if e.limit > 0 && e.limit < len(entries) {
			entries = entries[:e.limit]
		}
		for _, entry := range entries {
			rank := strconv.Itoa(entry.Rank)
			if entry.Top {
				rank += " *"
			}
			tw.Append([]string{rank, entry.Name, strconv.FormatFloat(entry.Value, 'f', -1, 64)})
		}
		tw.Render()
		fmt.Fprintln(out)
	}
	return nil
}
