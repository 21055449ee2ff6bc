// Package config loads the lending node configuration from defaults, an
// optional file (toml, yaml or json) and SHIELDED_LENDING_* environment
// variables, in that order of priority.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/praneet25101-blip/ShieldedLending/utils"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/contract"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/prover"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "SHIELDED_LENDING"

type Config struct {
	DataDir     string    `mapstructure:"data_dir"`
	KeystoreDir string    `mapstructure:"keystore_dir"`
	Hasher      string    `mapstructure:"hasher"`
	Prover      string    `mapstructure:"prover"`
	ProverDir   string    `mapstructure:"prover_dir"`
	Log         LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shielded-lending"
	}
	return filepath.Join(home, ".shielded-lending")
}

func setDefaults(v *viper.Viper) {
	home := defaultHome()
	v.SetDefault("data_dir", filepath.Join(home, "journal"))
	v.SetDefault("keystore_dir", filepath.Join(home, "keystore"))
	v.SetDefault("hasher", contract.HasherSHA256)
	v.SetDefault("prover", string(prover.Groth16))
	v.SetDefault("prover_dir", filepath.Join(home, "prover"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if c.KeystoreDir == "" {
		return fmt.Errorf("keystore_dir must be set")
	}
	if c.ProverDir == "" {
		return fmt.Errorf("prover_dir must be set")
	}
	if filepath.Clean(c.DataDir) == filepath.Clean(c.KeystoreDir) {
		return fmt.Errorf("data_dir and keystore_dir must differ")
	}
	if _, err := contract.NewHasher(c.Hasher); err != nil {
		return err
	}
	switch prover.Backend(c.Prover) {
	case prover.Groth16, prover.Plonk:
	default:
		return fmt.Errorf("unknown prover %q", c.Prover)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

func (c *Config) CommitmentHasher() contract.Hasher {
	h, err := contract.NewHasher(c.Hasher)
	if err != nil {
		panic(err) // checked by Validate
	}
	return h
}

func (c *Config) NewLogger(w io.Writer) (zerolog.Logger, error) {
	return utils.NewLogger(w, c.Log.Level, c.Log.Format)
}
