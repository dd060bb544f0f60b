package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/torfstack/revsync/internal/logging"
	"github.com/torfstack/revsync/internal/util"
)

var (
	configFilePath      = filepath.Join(util.ConfigDir, "config.toml")
	defaultDataFile     = filepath.Join(util.HomeDir(), "revsync", "app-data.json")
	defaultSyncFilePath = "/revsync/app-data.json"
	defaultSyncInterval = 60 * time.Second
	defaultTimeout      = 30 * time.Second
)

type Config struct {
	DataFile       string        `toml:"data_file"`
	SyncInterval   time.Duration `toml:"sync_interval"`
	// RequestTimeout bounds every single request to the remote store.
	RequestTimeout time.Duration `toml:"request_timeout"`
	Remote         Remote        `toml:"remote"`
}

// Remote holds everything needed to reach the remote file store. It is
// always handed around by value so a call keeps the snapshot it started with.
type Remote struct {
	BaseURL      string `toml:"base_url"`
	UserName     string `toml:"user_name"`
	Password     string `toml:"password"`
	SyncFilePath string `toml:"sync_file_path"`
}

// Complete reports whether all four remote settings are present.
func (r Remote) Complete() bool {
	return r.BaseURL != "" && r.UserName != "" && r.Password != "" && r.SyncFilePath != ""
}

func FilePath() string {
	return configFilePath
}

func Get() (Config, error) {
	return get(configFilePath, false)
}

func GetInteractive() (Config, error) {
	return get(configFilePath, true)
}

// Load reads the config at path. Unlike Get it never creates a default file.
func Load(path string) (Config, error) {
	c := Config{}
	_, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, fmt.Errorf("could not decode config file '%s': %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

func get(path string, interactive bool) (Config, error) {
	c := Config{}
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return initConfig(path, interactive)
	case err != nil:
		return c, fmt.Errorf("could not open config file for reading '%s': %w", path, err)
	}
	defer f.Close()

	_, err = toml.NewDecoder(f).Decode(&c)
	if err != nil {
		return c, fmt.Errorf("could not decode config file '%s': %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

func initConfig(path string, interactive bool) (Config, error) {
	c := initialConfig()
	if interactive {
		err := guidedInitialization(&c)
		if err != nil {
			return c, fmt.Errorf("could not initialize config interactively: %w", err)
		}
	}
	return c, c.persist(path)
}

func (c *Config) persist(path string) error {
	f, err := util.OpenWithParents(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("could not open config file for writing '%s': %w", path, err)
	}
	defer f.Close()

	logging.Debugf("Persisting config file to '%s'", path)
	err = toml.NewEncoder(f).Encode(c)
	if err != nil {
		return fmt.Errorf("could not persist config to file '%s': %w", path, err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.SyncInterval <= 0 {
		c.SyncInterval = defaultSyncInterval
	}
	if c.DataFile == "" {
		c.DataFile = defaultDataFile
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultTimeout
	}
}

func initialConfig() Config {
	return Config{
		DataFile:       defaultDataFile,
		SyncInterval:   defaultSyncInterval,
		RequestTimeout: defaultTimeout,
		Remote:         Remote{SyncFilePath: defaultSyncFilePath},
	}
}
