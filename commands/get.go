package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uhppoted/gsheets-feed/spreadsheet"
	"github.com/uhppoted/gsheets-feed/table"
)

type Get struct {
	command
	worksheet string
	file      string
	columns   []string
	query     spreadsheet.RowQuery
}

func newGetCommand(options *Options) *cobra.Command {
	get := Get{
		command: command{options: options},
		file:    time.Now().Format("2006-01-02T150405.tsv"),
	}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Downloads the rows of a worksheet to a TSV file",
		Example: `  gsheets --debug get --credentials "credentials.json" \
                     --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \
                     --worksheet od6 \
                     --orderby column:name \
                     --file "example.tsv"`,
		Args: cobra.NoArgs,
		RunE: get.execute,
	}

	get.flags(cmd)

	cmd.Flags().StringVar(&get.worksheet, "worksheet", get.worksheet, "Worksheet ID e.g. 'od6'")
	cmd.Flags().StringVar(&get.file, "file", get.file, "TSV file name. Defaults to '<yyyy-mm-ddTHHmmss>.tsv'")
	cmd.Flags().StringSliceVar(&get.columns, "columns", get.columns, "Columns to write first e.g. 'name,email'")
	cmd.Flags().StringVar(&get.query.Query, "query", get.query.Query, "Structured query e.g. 'age > 25'")
	cmd.Flags().StringVar(&get.query.OrderBy, "orderby", get.query.OrderBy, "Row order e.g. 'column:name'")
	cmd.Flags().BoolVar(&get.query.Reverse, "reverse", get.query.Reverse, "Reverses the row order")
	cmd.Flags().IntVar(&get.query.Start, "start", get.query.Start, "1-based index of the first row")
	cmd.Flags().IntVar(&get.query.Num, "num", get.query.Num, "Maximum number of rows")

	return cmd
}

func (g *Get) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if strings.TrimSpace(g.worksheet) == "" {
		return fmt.Errorf("--worksheet is a required option")
	}

	if strings.TrimSpace(g.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	sheet, err := g.open(ctx)
	if err != nil {
		return err
	}

	rows, err := sheet.GetRows(ctx, g.worksheet, g.query)
	if err != nil {
		return fmt.Errorf("unable to retrieve rows from worksheet (%v)", err)
	}

	debugf("Retrieved %v rows from worksheet %v", len(rows), g.worksheet)

	dir := filepath.Dir(g.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".gsheets")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := table.MakeTSV(tmp, table.FromRows(rows), g.columns...); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	tmp.Close()

	if err := os.Rename(tmp.Name(), g.file); err != nil {
		return err
	}

	infof("Retrieved %v rows to file %s", len(rows), g.file)

	return nil
}
