package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/uhppoted/gsheets-feed/spreadsheet"
)

// Config is the TOML configuration file. Command line flags override the file values.
type Config struct {
	Workdir        string    `toml:"workdir"`
	Credentials    string    `toml:"credentials"`
	ServiceAccount string    `toml:"service-account"`
	Tokens         string    `toml:"tokens"`
	FeedURL        string    `toml:"feed-url"`
	Visibility     string    `toml:"visibility"`
	Projection     string    `toml:"projection"`
	RateLimit      RateLimit `toml:"rate-limit"`
}

type RateLimit struct {
	RequestsPerSecond float64 `toml:"requests-per-second"`
	Burst             int     `toml:"burst"`
}

func NewConfig() *Config {
	return &Config{
		Workdir:     DEFAULT_WORKDIR,
		Credentials: "",
		FeedURL:     spreadsheet.DefaultFeedURL,
		RateLimit: RateLimit{
			RequestsPerSecond: spreadsheet.DefaultRateLimit.RequestsPerSecond,
			Burst:             spreadsheet.DefaultRateLimit.BurstSize,
		},
	}
}

// Load reads the configuration file over the defaults. A missing file is not an error.
func (c *Config) Load(file string) error {
	if file == "" {
		return nil
	}

	b, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	if err := toml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("invalid configuration file %v (%v)", file, err)
	}

	return c.validate()
}

func (c *Config) validate() error {
	switch spreadsheet.Visibility(c.Visibility) {
	case "", spreadsheet.Public, spreadsheet.Private:
	default:
		return fmt.Errorf("invalid visibility '%v' - expected 'public' or 'private'", c.Visibility)
	}

	switch spreadsheet.Projection(c.Projection) {
	case "", spreadsheet.Values, spreadsheet.Full:
	default:
		return fmt.Errorf("invalid projection '%v' - expected 'values' or 'full'", c.Projection)
	}

	return nil
}

func (c *Config) options() []spreadsheet.Option {
	options := []spreadsheet.Option{
		spreadsheet.WithRateLimit(spreadsheet.RateLimitConfig{
			RequestsPerSecond: c.RateLimit.RequestsPerSecond,
			BurstSize:         c.RateLimit.Burst,
		}),
	}

	if c.FeedURL != "" {
		options = append(options, spreadsheet.WithFeedURL(c.FeedURL))
	}

	if c.Visibility != "" {
		options = append(options, spreadsheet.WithVisibility(spreadsheet.Visibility(c.Visibility)))
	}

	if c.Projection != "" {
		options = append(options, spreadsheet.WithProjection(spreadsheet.Projection(c.Projection)))
	}

	return options
}
