package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hupe1980/cellgo/persistence"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show the layout and statistics of a stored array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			ctx := cmd.Context()

			t, err := e.load(ctx, args[0])
			if err != nil {
				return err
			}
			blob := t.name
			if t.dataset {
				blob = persistence.VersionName(t.name, t.version)
			}
			h, err := e.mgr.Inspect(ctx, blob)
			if err != nil {
				return err
			}

			ca := t.cells
			homogeneous := "no"
			if n := ca.IsHomogeneous(); n >= 0 {
				homogeneous = strconv.FormatInt(n, 10)
			}
			sizes, err := ca.DistinctCellSizesContext(ctx)
			if err != nil {
				return err
			}
			used, err := ca.UsedPointsContext(ctx)
			if err != nil {
				return err
			}

			tbl := table.NewWriter()
			tbl.SetStyle(table.StyleLight)
			tbl.Style().Options.DrawBorder = false
			tbl.Style().Options.SeparateColumns = false
			tbl.Style().Options.SeparateHeader = false
			tbl.SetTitle(blob)
			tbl.AppendRows([]table.Row{
				{"cells", ca.NumberOfCells()},
				{"connectivity ids", ca.NumberOfConnectivityIDs()},
				{"width", ca.Width()},
				{"homogeneous", homogeneous},
				{"max cell size", ca.MaxCellSize()},
				{"distinct sizes", fmt.Sprint(sizes)},
				{"used points", used.GetCardinality()},
				{"memory", humanize.IBytes(uint64(ca.ActualMemorySize()))},
				{"compression", h.Compression},
				{"stored payload", humanize.IBytes(h.PayloadSize)},
				{"valid", ca.IsValid()},
			})
			if t.dataset {
				tbl.AppendRow(table.Row{"version", t.version})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
			return nil
		},
	}
}
