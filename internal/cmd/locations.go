package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gravitrone/clientdesk/internal/export"
	"github.com/gravitrone/clientdesk/internal/grid"
	"github.com/gravitrone/clientdesk/internal/locations"
)

// LocationsCmd returns the `clientdesk locations` command group.
func LocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List, import and export insured locations",
	}
	cmd.AddCommand(locationsListCmd())
	cmd.AddCommand(locationsImportCmd())
	cmd.AddCommand(locationsExportCmd())
	return cmd
}

func openLocations(ctx context.Context) (*Env, grid.Scope, []grid.Row, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, grid.Scope{}, nil, err
	}
	env, err := Open(ctx, cfg)
	if err != nil {
		return nil, grid.Scope{}, nil, err
	}
	scope, err := env.Scope()
	if err != nil {
		return nil, grid.Scope{}, nil, err
	}
	rows, err := env.Store().Load(ctx, scope)
	if err != nil {
		return nil, grid.Scope{}, nil, err
	}
	return env, scope, rows, nil
}

func locationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List locations of the selected client",
		RunE: func(c *cobra.Command, _ []string) error {
			_, _, rows, err := openLocations(c.Context())
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "no locations found")
				return nil
			}
			return writeLocationTable(out, rows)
		},
	}
}

var listColumns = []string{"location_number", "location_name", "city", "state", "occupancy"}

func writeLocationTable(w io.Writer, rows []grid.Row) error {
	columns := locations.Columns()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := make([]string, 0, len(listColumns)+1)
	for _, key := range listColumns {
		header = append(header, columns[grid.ColumnIndex(columns, key)].Label)
	}
	fmt.Fprintln(tw, strings.Join(append(header, "TIV"), "\t"))

	var total float64
	currency := grid.Column{Type: grid.TypeCurrency}
	for _, r := range rows {
		cells := make([]string, 0, len(listColumns)+1)
		for _, key := range listColumns {
			cells = append(cells, grid.ToDisplay(r.Value(key), columns[grid.ColumnIndex(columns, key)]))
		}
		tiv := locations.TIV(r)
		total += tiv
		fmt.Fprintln(tw, strings.Join(append(cells, grid.ToDisplay(tiv, currency)), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d locations, total insured value %s\n", len(rows), grid.ToDisplay(total, currency))
	return err
}

func locationsImportCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Append locations from a TSV or .xlsx file",
		Long: "Append locations from tab-separated text or the first sheet of an .xlsx workbook.\n" +
			"A header row is matched to columns by name; without one, values fill the editable\n" +
			"columns in order. Use - to read TSV from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			text, err := readImport(args[0], c.InOrStdin())
			if err != nil {
				return err
			}
			parsed := grid.ParsePaste(text, locations.Columns())
			if len(parsed.Rows) == 0 {
				return fmt.Errorf("no rows found in %s", args[0])
			}

			env, scope, rows, err := openLocations(c.Context())
			if err != nil {
				return err
			}
			ctrl := grid.NewController(scope, env.Session, locations.Columns())
			ctrl.Load(rows)
			cmds, err := ctrl.BulkImport(parsed.Rows)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			if dryRun {
				fmt.Fprintf(c.OutOrStdout(), "%d locations would be imported\n", len(parsed.Rows))
				return nil
			}
			if err := runHeadless(c.Context(), ctrl, env.Store(), cmds); err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(c.OutOrStdout(), "imported %d locations\n", len(parsed.Rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate without saving")
	return cmd
}

func readImport(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return export.ReadTSV(bytes.NewReader(data))
	}
	return string(data), nil
}

// runHeadless executes controller commands in order, applying each result
// and any follow-ups before the next.
func runHeadless(ctx context.Context, ctrl *grid.Controller, store grid.Store, cmds []grid.Command) error {
	queue := append([]grid.Command(nil), cmds...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		follow, err := ctrl.Apply(grid.Execute(ctx, store, next))
		if err != nil {
			return err
		}
		queue = append(queue, follow...)
	}
	return nil
}

func locationsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <out.xlsx>",
		Short: "Write the schedule of values to an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			_, _, rows, err := openLocations(c.Context())
			if err != nil {
				return err
			}
			path := args[0]
			if filepath.Ext(path) == "" {
				path += ".xlsx"
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := export.WriteXLSX(f, locations.Columns(), rows); err != nil {
				f.Close()
				return fmt.Errorf("export: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", path, err)
			}
			log.Info().Str("path", path).Int("rows", len(rows)).Msg("locations exported")
			fmt.Fprintf(c.OutOrStdout(), "exported %d locations to %s\n", len(rows), path)
			return nil
		},
	}
}
