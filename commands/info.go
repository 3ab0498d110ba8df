package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type Info struct {
	command
}

func newInfoCommand(options *Options) *cobra.Command {
	info := Info{
		command: command{options: options},
	}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Displays the spreadsheet title, owner and worksheets",
		Example: `  gsheets info --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"
  gsheets info --key 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms --service-account robot.json`,
		Args: cobra.NoArgs,
		RunE: info.execute,
	}

	info.flags(cmd)

	return cmd
}

func (i *Info) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sheet, err := i.open(ctx)
	if err != nil {
		return err
	}

	info, err := sheet.GetInfo(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%v\n", info.Title)
	if !info.Updated.IsZero() {
		fmt.Fprintf(out, "  updated:  %v\n", info.Updated.Format(time.RFC3339))
	}

	if info.Author.Name != "" || info.Author.Email != "" {
		fmt.Fprintf(out, "  author:   %v <%v>\n", info.Author.Name, info.Author.Email)
	}

	fmt.Fprintln(out)

	for _, ws := range info.Worksheets {
		fmt.Fprintf(out, "  %-8v %-24q %4d rows  %3d columns\n", ws.ID, ws.Title, ws.RowCount, ws.ColCount)
	}

	return nil
}
