package commands

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uhppoted/gsheets-feed/spreadsheet"
)

const APP = "gsheets"

var VERSION = "v0.1.0"

// Options are the global command line options.
type Options struct {
	Debug  bool
	Config string
	config *Config
}

// command holds the authorisation and addressing flags shared by the spreadsheet commands.
type command struct {
	url            string
	key            string
	credentials    string
	serviceAccount string
	tokens         string
	options        *Options
}

var log = logrus.StandardLogger()

// NewRootCommand builds the 'gsheets' command tree.
func NewRootCommand() *cobra.Command {
	options := Options{
		Config: DEFAULT_CONFIG,
	}

	root := &cobra.Command{
		Use:           APP,
		Short:         "Command line client for the Google Sheets spreadsheet feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if options.Debug {
				log.SetLevel(logrus.DebugLevel)
			}

			options.config = NewConfig()

			return options.config.Load(options.Config)
		},
	}

	root.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	root.PersistentFlags().StringVar(&options.Config, "config", options.Config, "TOML configuration file")

	root.AddCommand(
		newInfoCommand(&options),
		newGetCommand(&options),
		newPutCommand(&options),
		newCellsCommand(&options),
		newSetCellCommand(&options),
		newRevisionCommand(&options),
		newVersionCommand(),
	)

	return root
}

// Execute runs the command line and returns the error from the selected command.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

func (c *command) flags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.url, "url", c.url, "Spreadsheet URL e.g. https://docs.google.com/spreadsheets/d/<key>")
	cmd.Flags().StringVar(&c.key, "key", c.key, "Spreadsheet key (alternative to --url)")
	cmd.Flags().StringVar(&c.credentials, "credentials", c.credentials, "OAuth2 client 'credentials.json' file")
	cmd.Flags().StringVar(&c.serviceAccount, "service-account", c.serviceAccount, "Service account JSON key file")
	cmd.Flags().StringVar(&c.tokens, "tokens", c.tokens, "OAuth2 token file (defaults to <workdir>/.google/<credentials>.tokens)")
}

func (c *command) config() *Config {
	config := NewConfig()
	if c.options != nil && c.options.config != nil {
		config = c.options.config
	}

	if c.credentials != "" {
		config.Credentials = c.credentials
	}

	if c.serviceAccount != "" {
		config.ServiceAccount = c.serviceAccount
	}

	if c.tokens != "" {
		config.Tokens = c.tokens
	}

	return config
}

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// spreadsheetKey extracts the key from --url or returns --key.
func (c *command) spreadsheetKey() (string, error) {
	if strings.TrimSpace(c.key) != "" {
		return strings.TrimSpace(c.key), nil
	}

	if strings.TrimSpace(c.url) == "" {
		return "", fmt.Errorf("--url or --key is a required option")
	}

	match := spreadsheetURL.FindStringSubmatch(strings.TrimSpace(c.url))
	if len(match) < 2 || match[1] == "" {
		return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
	}

	return match[1], nil
}

// open creates an authorised spreadsheet session: service account if configured, otherwise the
// OAuth2 token file flow if a credentials file is configured, otherwise anonymous.
func (c *command) open(ctx context.Context) (*spreadsheet.Spreadsheet, error) {
	key, err := c.spreadsheetKey()
	if err != nil {
		return nil, err
	}

	config := c.config()
	options := append(config.options(), spreadsheet.WithLogger(log))

	sheet, err := spreadsheet.New(key, nil, options...)
	if err != nil {
		return nil, err
	}

	switch {
	case config.ServiceAccount != "":
		debugf("Spreadsheet - key:%v  auth:service account (%v)", key, config.ServiceAccount)
		if err := sheet.UseServiceAccountAuthFile(ctx, config.ServiceAccount); err != nil {
			return nil, fmt.Errorf("authentication/authorization error (%v)", err)
		}

	case config.Credentials != "":
		debugf("Spreadsheet - key:%v  auth:OAuth2 (%v)", key, config.Credentials)
		source, err := authorize(ctx, config.Credentials, c.tokenFile(config), spreadsheet.Scope)
		if err != nil {
			return nil, fmt.Errorf("authentication/authorization error (%v)", err)
		}

		if err := sheet.UseTokenSource(ctx, source); err != nil {
			return nil, fmt.Errorf("authentication/authorization error (%v)", err)
		}

	default:
		debugf("Spreadsheet - key:%v  auth:anonymous", key)
	}

	return sheet, nil
}

func debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

func infof(format string, args ...any) {
	log.Infof(format, args...)
}

func warnf(format string, args ...any) {
	log.Warnf(format, args...)
}
