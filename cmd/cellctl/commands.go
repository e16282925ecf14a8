package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cellgo"
)

func newImportCommand() *cobra.Command {
	var (
		smallest bool
		commit   bool
	)
	cmd := &cobra.Command{
		Use:   "import <legacy-file|-> <name>",
		Short: "Import a legacy count-prefixed cell list",
		Long: `Import reads whitespace-separated integers in the legacy layout
(n p1 ... pn n p1 ... pn ...) and stores them as a binary cell array.
With --commit, name is a dataset and the array becomes its next version.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			ctx := cmd.Context()

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			data, err := readLegacy(r)
			if err != nil {
				return err
			}

			ca := cellgo.New(e.opts...)
			if err := ca.ImportLegacyFormat(data); err != nil {
				return err
			}
			if smallest {
				if err := ca.ConvertToSmallestStorage(); err != nil {
					return err
				}
			}

			t := &target{cells: ca, name: args[1], dataset: commit}
			name, err := e.save(ctx, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cells (%s) into %s\n", ca.NumberOfCells(), ca.Width(), name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&smallest, "smallest", false, "store with the narrowest width that holds every value")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit as the next version of dataset <name>")
	return cmd
}

func newExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a cell array in the legacy layout, one cell per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := envFrom(cmd).load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeLegacy(w, t.cells.ExportLegacyFormat())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <name>...",
		Short: "Check that stored arrays decode and are structurally valid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			failed := 0
			for _, name := range args {
				t, err := e.load(cmd.Context(), name)
				switch {
				case err != nil:
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: INVALID: %v\n", name, err)
				case !t.cells.IsValid():
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: INVALID: inconsistent offsets\n", name)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d cells)\n", name, t.cells.NumberOfCells())
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d arrays invalid", failed, len(args))
			}
			return nil
		},
	}
}

func newConvertCommand() *cobra.Command {
	var width string
	cmd := &cobra.Command{
		Use:   "convert <name>",
		Short: "Rewrite a stored array with a different storage width",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			t, err := e.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			from := t.cells.Width()
			switch width {
			case "32":
				err = t.cells.ConvertTo32BitStorage()
			case "64":
				err = t.cells.ConvertTo64BitStorage()
			case "smallest":
				err = t.cells.ConvertToSmallestStorage()
			default:
				return fmt.Errorf("--width must be 32, 64 or smallest, got %q", width)
			}
			if err != nil {
				return err
			}
			name, err := e.save(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted %s from %s to %s\n", name, from, t.cells.Width())
			return nil
		},
	}
	cmd.Flags().StringVar(&width, "width", "smallest", "target width: 32, 64 or smallest")
	return cmd
}

func newVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <dataset>",
		Short: "List the committed versions of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			versions, err := e.mgr.Versions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			current, _ := e.mgr.Current(cmd.Context(), args[0])
			for _, v := range versions {
				marker := " "
				if v == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", marker, v)
			}
			return nil
		},
	}
}

func newPruneCommand() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune <dataset>",
		Short: "Delete old versions of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := envFrom(cmd).mgr.Prune(cmd.Context(), args[0], keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d versions\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 3, "number of newest versions to keep")
	return cmd
}
