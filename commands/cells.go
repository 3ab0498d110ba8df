package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uhppoted/gsheets-feed/spreadsheet"
)

type Cells struct {
	command
	worksheet string
	query     spreadsheet.CellQuery
}

func newCellsCommand(options *Options) *cobra.Command {
	cells := Cells{
		command: command{options: options},
	}

	cmd := &cobra.Command{
		Use:     "cells",
		Short:   "Lists the cells of a worksheet",
		Example: `  gsheets cells --key 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms --worksheet od6 --min-row 1 --max-row 1`,
		Args:    cobra.NoArgs,
		RunE:    cells.execute,
	}

	cells.flags(cmd)

	cmd.Flags().StringVar(&cells.worksheet, "worksheet", cells.worksheet, "Worksheet ID e.g. 'od6'")
	cmd.Flags().IntVar(&cells.query.MinRow, "min-row", cells.query.MinRow, "First row")
	cmd.Flags().IntVar(&cells.query.MaxRow, "max-row", cells.query.MaxRow, "Last row")
	cmd.Flags().IntVar(&cells.query.MinCol, "min-col", cells.query.MinCol, "First column")
	cmd.Flags().IntVar(&cells.query.MaxCol, "max-col", cells.query.MaxCol, "Last column")
	cmd.Flags().BoolVar(&cells.query.ReturnEmpty, "empty", cells.query.ReturnEmpty, "Includes empty cells")

	return cmd
}

func (c *Cells) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if strings.TrimSpace(c.worksheet) == "" {
		return fmt.Errorf("--worksheet is a required option")
	}

	sheet, err := c.open(ctx)
	if err != nil {
		return err
	}

	cells, err := sheet.GetCells(ctx, c.worksheet, c.query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, cell := range cells {
		fmt.Fprintf(out, "R%vC%v\t%q\n", cell.Row, cell.Col, cell.Value)
	}

	return nil
}
