package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uhppoted/gsheets-feed/table"
)

type Put struct {
	command
	worksheet string
	file      string
}

func newPutCommand(options *Options) *cobra.Command {
	put := Put{
		command: command{options: options},
	}

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Appends the records in a TSV file to a worksheet",
		Long: `Appends each record in a TSV file to the worksheet as a new row. The TSV header row
is matched to the worksheet columns by name, ignoring case, whitespace and underscores.`,
		Example: `  gsheets put --service-account robot.json --key 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms \
              --worksheet od6 --file "example.tsv"`,
		Args: cobra.NoArgs,
		RunE: put.execute,
	}

	put.flags(cmd)

	cmd.Flags().StringVar(&put.worksheet, "worksheet", put.worksheet, "Worksheet ID e.g. 'od6'")
	cmd.Flags().StringVar(&put.file, "file", put.file, "TSV file")

	return cmd
}

func (p *Put) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if strings.TrimSpace(p.worksheet) == "" {
		return fmt.Errorf("--worksheet is a required option")
	}

	if strings.TrimSpace(p.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	f, err := os.Open(p.file)
	if err != nil {
		return err
	}

	defer f.Close()

	data, err := table.ParseTSV(f)
	if err != nil {
		return fmt.Errorf("invalid TSV file (%v)", err)
	}

	records, err := table.Records(data)
	if err != nil {
		return fmt.Errorf("invalid TSV file (%v)", err)
	}

	sheet, err := p.open(ctx)
	if err != nil {
		return err
	}

	for i, record := range records {
		row, err := sheet.AddRow(ctx, p.worksheet, record)
		if err != nil {
			return fmt.Errorf("error adding record %v (%v)", i+1, err)
		}

		debugf("Added row %v", row.ID)
	}

	infof("Added %v rows to worksheet %v", len(records), p.worksheet)

	return nil
}
