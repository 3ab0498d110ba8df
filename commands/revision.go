package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type Revision struct {
	command
	endpoint string
}

type version struct {
	revision string
	modified time.Time
}

func newRevisionCommand(options *Options) *cobra.Command {
	revision := Revision{
		command: command{options: options},
	}

	cmd := &cobra.Command{
		Use:   "revision",
		Short: "Displays the latest Google Drive revision of the spreadsheet",
		Long: `Displays the ID and modification time of the latest Google Drive revision of the
spreadsheet. Requires --credentials or --service-account with access to the Drive metadata.`,
		Example: `  gsheets revision --service-account robot.json --key 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms`,
		Args:    cobra.NoArgs,
		RunE:    revision.execute,
	}

	revision.flags(cmd)

	cmd.Flags().StringVar(&revision.endpoint, "drive-endpoint", revision.endpoint, "Google Drive API endpoint")
	cmd.Flags().MarkHidden("drive-endpoint")

	return cmd
}

func (r *Revision) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	key, err := r.spreadsheetKey()
	if err != nil {
		return err
	}

	source, err := r.tokenSource(ctx)
	if err != nil {
		return fmt.Errorf("authentication/authorization error (%v)", err)
	}

	options := []option.ClientOption{option.WithTokenSource(source)}
	if r.endpoint != "" {
		options = append(options, option.WithEndpoint(r.endpoint))
	}

	gdrive, err := drive.NewService(ctx, options...)
	if err != nil {
		return fmt.Errorf("unable to create new Drive client (%v)", err)
	}

	latest, err := getVersion(ctx, gdrive, key)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%v  %v\n", latest.revision, latest.modified.Format(time.RFC3339))

	return nil
}

func (r *Revision) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	config := r.config()

	switch {
	case config.ServiceAccount != "":
		return serviceAccount(ctx, config.ServiceAccount, drive.DriveMetadataReadonlyScope)

	case config.Credentials != "":
		return authorize(ctx, config.Credentials, r.tokenFile(config, "drive"), drive.DriveMetadataReadonlyScope)

	default:
		return nil, fmt.Errorf("--credentials or --service-account is required for Drive access")
	}
}

func getVersion(ctx context.Context, gdrive *drive.Service, fileId string) (*version, error) {
	page := ""
	latest := version{
		revision: "",
		modified: time.Time{},
	}

	for {
		call := gdrive.Revisions.List(fileId).Fields("nextPageToken", "revisions(id,modifiedTime)").Context(ctx)
		if page != "" {
			call.PageToken(page)
		}

		revisions, err := call.Do()
		if err != nil {
			return nil, err
		}

		for _, revision := range revisions.Revisions {
			datetime, err := time.Parse(time.RFC3339, revision.ModifiedTime)
			if err != nil {
				return nil, err
			}

			if latest.modified.Before(datetime) {
				latest.revision = revision.Id
				latest.modified = datetime
			}
		}

		if page = revisions.NextPageToken; page == "" {
			break
		}
	}

	if latest.modified.IsZero() {
		return nil, fmt.Errorf("unable to identify latest revision for file ID %s", fileId)
	}

	return &latest, nil
}
