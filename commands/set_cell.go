package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uhppoted/gsheets-feed/spreadsheet"
)

type SetCell struct {
	command
	worksheet string
	row       int
	col       int
	value     string
}

func newSetCellCommand(options *Options) *cobra.Command {
	set := SetCell{
		command: command{options: options},
	}

	cmd := &cobra.Command{
		Use:   "set-cell",
		Short: "Updates a single cell (an empty value clears the cell)",
		Example: `  gsheets set-cell --service-account robot.json --key 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms \
                   --worksheet od6 --row 2 --col 3 --value "=SUM(A2:B2)"`,
		Args: cobra.NoArgs,
		RunE: set.execute,
	}

	set.flags(cmd)

	cmd.Flags().StringVar(&set.worksheet, "worksheet", set.worksheet, "Worksheet ID e.g. 'od6'")
	cmd.Flags().IntVar(&set.row, "row", set.row, "Cell row (1-based)")
	cmd.Flags().IntVar(&set.col, "col", set.col, "Cell column (1-based)")
	cmd.Flags().StringVar(&set.value, "value", set.value, "Cell value or formula")

	return cmd
}

func (s *SetCell) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if strings.TrimSpace(s.worksheet) == "" {
		return fmt.Errorf("--worksheet is a required option")
	}

	if s.row < 1 || s.col < 1 {
		return fmt.Errorf("--row and --col are required and must be greater than 0")
	}

	sheet, err := s.open(ctx)
	if err != nil {
		return err
	}

	cells, err := sheet.GetCells(ctx, s.worksheet, spreadsheet.CellQuery{
		MinRow:      s.row,
		MaxRow:      s.row,
		MinCol:      s.col,
		MaxCol:      s.col,
		ReturnEmpty: true,
	})
	if err != nil {
		return err
	}

	if len(cells) != 1 {
		return fmt.Errorf("cell R%vC%v not found in worksheet %v", s.row, s.col, s.worksheet)
	}

	if s.value == "" {
		err = cells[0].Del(ctx)
	} else {
		err = cells[0].SetValue(ctx, s.value)
	}

	if err != nil {
		return err
	}

	infof("Updated cell R%vC%v in worksheet %v", s.row, s.col, s.worksheet)

	return nil
}
