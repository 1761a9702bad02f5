package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/mxpv/kickstarter/pkg/db"
	"github.com/mxpv/kickstarter/pkg/hook"
	"github.com/mxpv/kickstarter/pkg/model"
	"github.com/mxpv/kickstarter/pkg/server"
)

const (
	CustodyModeMemory = "memory"
	CustodyModeREST   = "rest"

	DispatchModeLog    = "log"
	DispatchModeMemory = "memory"
	DispatchModeSQS    = "sqs"
	DispatchModeKafka  = "kafka"
)

type Config struct {
	// Server is the web server configuration
	Server server.Config `toml:"server"`
	// Log is the optional logging configuration
	Log Log `toml:"log"`
	// Database configuration
	Database db.Config `toml:"database"`
	// Campaign is created from this section on the first start
	Campaign Campaign `toml:"campaign"`
	// Settlement controls fee payout
	Settlement Settlement `toml:"settlement"`
	// Custody is where pledged funds are held
	Custody Custody `toml:"custody"`
	// Dispatch selects where effects are sent after commit
	Dispatch Dispatch `toml:"dispatch"`
	// Stats is optional Redis backed activity tracking
	Stats Stats `toml:"stats"`
	// Watcher checks the campaign deadline on schedule
	Watcher WatcherConfig `toml:"watcher"`
	// Hooks are external commands fired on lifecycle events
	Hooks Hooks `toml:"hooks"`
	// AddressPrefix is the bech32 human readable part of valid identities
	AddressPrefix string `toml:"address_prefix"`
}

type Log struct {
	// Filename to write the log to (instead of stdout)
	Filename string `toml:"filename"`
	// MaxSize is the maximum size of the log file in MB
	MaxSize int `toml:"max_size"`
	// MaxBackups is the maximum number of log file backups to keep after rotation
	MaxBackups int `toml:"max_backups"`
	// MaxAge is the maximum number of days to keep the logs for
	MaxAge int `toml:"max_age"`
	// Compress old backups
	Compress bool `toml:"compress"`
}

type Campaign struct {
	// Address is the custody account holding pledged funds
	Address      string `toml:"address"`
	Creator      string `toml:"creator"`
	TokenAddress string `toml:"token_address"`
	Denom        string `toml:"denom"`

	Name        string    `toml:"name"`
	Description string    `toml:"description"`
	EndTime     time.Time `toml:"end_time"`
	Goal        uint64    `toml:"goal"`
	// MinimumContribution of 0 disables the check
	MinimumContribution uint64       `toml:"minimum_contribution"`
	Links               []model.Link `toml:"links"`
	Tiers               []model.Tier `toml:"tiers"`
}

// Meta converts the config section to the campaign record.
func (c Campaign) Meta() model.CampaignMeta {
	meta := model.CampaignMeta{
		Name:        c.Name,
		Description: c.Description,
		EndTime:     model.NewTimestamp(c.EndTime),
		Goal:        c.Goal,
		Links:       c.Links,
		Tiers:       c.Tiers,
	}

	if c.MinimumContribution > 0 {
		min := c.MinimumContribution
		meta.MinimumContribution = &min
	}

	return meta
}

type Settlement struct {
	// Basis is either "custody" or "ledger"
	Basis    model.SettlementBasis `toml:"basis"`
	Treasury string                `toml:"treasury"`
}

type Custody struct {
	// Mode is either "memory" (sandbox) or "rest"
	Mode string `toml:"mode"`
	// Endpoint is the bank LCD address for "rest" mode
	Endpoint string `toml:"endpoint"`
	// Timeout in seconds for balance queries
	Timeout int `toml:"timeout"`
}

type Dispatch struct {
	// Mode is one of "log", "memory", "sqs", "kafka"
	Mode  string `toml:"mode"`
	SQS   SQS    `toml:"sqs"`
	Kafka Kafka  `toml:"kafka"`
}

type SQS struct {
	URL    string `toml:"url"`
	Region string `toml:"region"`
}

type Kafka struct {
	Brokers StringSlice `toml:"brokers"`
	Topic   string      `toml:"topic"`
}

type Stats struct {
	RedisURL string `toml:"redis_url"`
}

type WatcherConfig struct {
	// Schedule is a cron expression, see https://pkg.go.dev/github.com/robfig/cron/v3
	Schedule string `toml:"schedule"`
}

type Hooks struct {
	// OnCampaignEnd runs once after the deadline passes
	OnCampaignEnd []hook.Exec `toml:"on_campaign_end"`
}

// LoadConfig loads TOML configuration from a file path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	config := Config{}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal toml")
	}

	config.applyDefaults(path)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	var result *multierror.Error

	if c.Campaign.Creator == "" {
		result = multierror.Append(result, errors.New("campaign creator is required"))
	}

	if c.Campaign.TokenAddress == "" {
		result = multierror.Append(result, errors.New("receipt token address is required"))
	}

	if c.Campaign.Name == "" {
		result = multierror.Append(result, errors.New("campaign name is required"))
	}

	if c.Campaign.EndTime.IsZero() {
		result = multierror.Append(result, errors.New("campaign end time is required"))
	}

	if c.Settlement.Treasury == "" {
		result = multierror.Append(result, errors.New("treasury address is required"))
	}

	switch c.Settlement.Basis {
	case model.SettlementBasisCustody:
		if c.Campaign.Address == "" {
			result = multierror.Append(result, errors.New("campaign address is required for custody settlement"))
		}
	case model.SettlementBasisLedger:
	default:
		result = multierror.Append(result, errors.Errorf("unsupported settlement basis %q", c.Settlement.Basis))
	}

	switch c.Custody.Mode {
	case CustodyModeMemory:
	case CustodyModeREST:
		if c.Custody.Endpoint == "" {
			result = multierror.Append(result, errors.New("custody endpoint is required in rest mode"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("unsupported custody mode %q", c.Custody.Mode))
	}

	switch c.Dispatch.Mode {
	case DispatchModeLog:
	case DispatchModeMemory:
		if c.Custody.Mode != CustodyModeMemory {
			result = multierror.Append(result, errors.New("memory dispatch requires memory custody"))
		}
	case DispatchModeSQS:
		if c.Dispatch.SQS.URL == "" {
			result = multierror.Append(result, errors.New("sqs queue url is required"))
		}
	case DispatchModeKafka:
		if len(c.Dispatch.Kafka.Brokers) == 0 || c.Dispatch.Kafka.Topic == "" {
			result = multierror.Append(result, errors.New("kafka brokers and topic are required"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("unsupported dispatch mode %q", c.Dispatch.Mode))
	}

	for idx, h := range c.Hooks.OnCampaignEnd {
		if len(h.Command) == 0 {
			result = multierror.Append(result, errors.Errorf("hook %d has no command", idx))
		}
	}

	return result.ErrorOrNil()
}

func (c *Config) applyDefaults(configPath string) {
	if c.Server.Port == 0 {
		c.Server.Port = model.DefaultServerPort
	}

	if c.Log.Filename != "" {
		if c.Log.MaxSize == 0 {
			c.Log.MaxSize = model.DefaultLogMaxSize
		}
		if c.Log.MaxAge == 0 {
			c.Log.MaxAge = model.DefaultLogMaxAge
		}
		if c.Log.MaxBackups == 0 {
			c.Log.MaxBackups = model.DefaultLogMaxBackups
		}
	}

	if c.Database.Dir == "" && !c.Database.InMemory {
		c.Database.Dir = filepath.Join(filepath.Dir(configPath), "db")
	}

	if c.AddressPrefix == "" {
		c.AddressPrefix = model.DefaultAddressPrefix
	}

	if c.Campaign.Denom == "" {
		c.Campaign.Denom = model.DefaultDenom
	}

	if c.Settlement.Basis == "" {
		c.Settlement.Basis = model.DefaultSettlementMode
	}

	if c.Custody.Mode == "" {
		c.Custody.Mode = CustodyModeMemory
	}

	if c.Dispatch.Mode == "" {
		c.Dispatch.Mode = DispatchModeLog
	}

	if c.Watcher.Schedule == "" {
		c.Watcher.Schedule = model.DefaultWatchSchedule
	}
}

// StringSlice is a toml extension that lets you to specify either a string
// value (a slice with just one element) or a string slice.
type StringSlice []string

func (s *StringSlice) UnmarshalTOML(v interface{}) error {
	if str, ok := v.(string); ok {
		*s = []string{str}
		return nil
	}

	return errors.New("failed to decode string slice field")
}
