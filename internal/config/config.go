package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"raffle/internal/beacon"
	"raffle/internal/blockchain"
	"raffle/internal/logger"
	"raffle/internal/raffle"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tonkeeper/tongo/ton"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "raffle.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultStoragePlugin   = "sqlite"
	DefaultDatabasePath    = "raffle.db"
	DefaultBeaconSource    = beacon.RandomSourceName
	DefaultListenAddress   = ":8080"
	DefaultTrackerInterval = 5 * time.Second
)

type Config struct {
	Logger          logger.Configuration `yaml:"logger"`
	StoragePlugin   string               `yaml:"storagePlugin"   envconfig:"RAFFLE_STORAGE_PLUGIN"`
	DatabasePath    string               `yaml:"databasePath"    envconfig:"RAFFLE_DATABASE_PATH"`
	ProgramID       string               `yaml:"programId"       envconfig:"RAFFLE_PROGRAM_ID"`
	TimeBuffer      time.Duration        `yaml:"timeBuffer"      envconfig:"RAFFLE_TIME_BUFFER"`
	Rent            raffle.Rent          `yaml:"rent"`
	BeaconSource    string               `yaml:"beaconSource"    envconfig:"RAFFLE_BEACON_SOURCE"`
	BeaconSeed      string               `yaml:"beaconSeed"      envconfig:"RAFFLE_BEACON_SEED"`
	TonapiToken     string               `yaml:"tonapiToken"     envconfig:"RAFFLE_TONAPI_TOKEN"`
	ListenAddress   string               `yaml:"listenAddress"   envconfig:"RAFFLE_LISTEN_ADDRESS"`
	TrackerOperator string               `yaml:"trackerOperator" envconfig:"RAFFLE_TRACKER_OPERATOR"`
	TrackerInterval time.Duration        `yaml:"trackerInterval" envconfig:"RAFFLE_TRACKER_INTERVAL"`
	Faucet          bool                 `yaml:"faucet"          envconfig:"RAFFLE_FAUCET"`
}

func Default() *Config {
	return &Config{
		Logger: logger.Configuration{
			Level:   "info",
			Console: true,
		},
		StoragePlugin:   DefaultStoragePlugin,
		DatabasePath:    DefaultDatabasePath,
		Rent:            raffle.DefaultRent(),
		BeaconSource:    DefaultBeaconSource,
		ListenAddress:   DefaultListenAddress,
		TrackerInterval: DefaultTrackerInterval,
	}
}

// Load layers defaults, the optional YAML file and the environment (including a .env file when
// present), then validates the result.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	cfg := Default()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process("raffle", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoragePlugin {
	case "sqlite", "badger":
	default:
		return fmt.Errorf("invalid storagePlugin: %q (must be 'sqlite' or 'badger')", c.StoragePlugin)
	}

	switch c.BeaconSource {
	case beacon.StaticSourceName:
		if _, err := beacon.ParseSeed(c.BeaconSeed); err != nil {
			return fmt.Errorf("invalid beaconSeed: %w", err)
		}
	case beacon.RandomSourceName, beacon.LiteapiSourceName, beacon.TonapiSourceName:
	default:
		return fmt.Errorf("invalid beaconSource: %q", c.BeaconSource)
	}

	if _, err := c.ProgramIdentity(); err != nil {
		return fmt.Errorf("invalid programId: %w", err)
	}
	if _, _, err := c.TrackerIdentity(); err != nil {
		return fmt.Errorf("invalid trackerOperator: %w", err)
	}
	if c.TimeBuffer < 0 {
		return fmt.Errorf("invalid timeBuffer: %s", c.TimeBuffer)
	}
	if c.TrackerInterval <= 0 {
		return fmt.Errorf("invalid trackerInterval: %s", c.TrackerInterval)
	}
	if c.Rent.NanosPerByteYear == 0 || c.Rent.ExemptionYears == 0 {
		return errors.New("invalid rent: both nanosPerByteYear and exemptionYears must be set")
	}
	return nil
}

func (c *Config) ProgramIdentity() (ton.AccountID, error) {
	if c.ProgramID == "" {
		return blockchain.DefaultProgramID, nil
	}
	return blockchain.ParseIdentity(c.ProgramID)
}

// TrackerIdentity reports the operator the tracker acts for; ok is false when the tracker is disabled.
func (c *Config) TrackerIdentity() (ton.AccountID, bool, error) {
	if c.TrackerOperator == "" {
		return ton.AccountID{}, false, nil
	}
	operator, err := blockchain.ParseIdentity(c.TrackerOperator)
	if err != nil {
		return ton.AccountID{}, false, err
	}
	return operator, true, nil
}
