package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds CLI configuration. Values are resolved by viper from,
// in order of precedence: flags, LANDGRAB_* environment variables, an
// optional ~/.landgrab/config.yaml, and built-in defaults.
type Config struct {
	ServerURL string `mapstructure:"server"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token_file"`
	Output    string `mapstructure:"output"`
	Verbose   bool   `mapstructure:"verbose"`
}

// LoadConfig resolves CLI configuration via viper
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("token_file", defaultTokenFile())
	v.SetDefault("output", "text")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("LANDGRAB")
	v.AutomaticEnv()

	// Optional config file; absence is not an error
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = string(data)
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".landgrab"
	}
	return filepath.Join(home, ".landgrab")
}

func defaultTokenFile() string {
	return filepath.Join(configDir(), "token")
}
