// Package config reads the client configuration once at startup from an
// optional YAML file and SERVICECALL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/constants"
	"github.com/loykin/servicecall/internal/httpc"
	"github.com/loykin/servicecall/internal/session"
	"github.com/loykin/servicecall/internal/store"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SERVICECALL_API_BASE_URL.
const EnvPrefix = "SERVICECALL"

var (
	ErrMissingBaseURL   = errors.New("config: api_base_url is required")
	ErrMissingEncodeKey = errors.New("config: encode_key is required")
)

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
}

type Config struct {
	APIBaseURL     string `mapstructure:"api_base_url" yaml:"api_base_url"`
	APIPrefix      string `mapstructure:"api_prefix" yaml:"api_prefix"`
	EncodeKey      string `mapstructure:"encode_key" yaml:"encode_key"`
	LoginEndpoint  string `mapstructure:"login_endpoint" yaml:"login_endpoint"`
	LogoutEndpoint string `mapstructure:"logout_endpoint" yaml:"logout_endpoint"`

	session.Paths `mapstructure:",squash" yaml:",inline"`

	Client     httpc.Options `mapstructure:"client" yaml:"client"`
	Storage    store.Config  `mapstructure:"storage" yaml:"storage"`
	Logging    LoggingConfig `mapstructure:"logging" yaml:"logging"`
	RoutesFile string        `mapstructure:"routes_file" yaml:"routes_file"`

	// Vars are template variables for request documents. Names are
	// lower-cased by the loader.
	Vars map[string]string `mapstructure:"vars" yaml:"vars"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "")
	v.SetDefault("api_prefix", constants.DefaultAPIPrefix)
	v.SetDefault("encode_key", "")
	v.SetDefault("login_endpoint", constants.DefaultLoginEndpoint)
	v.SetDefault("logout_endpoint", constants.DefaultLogoutEndpoint)
	v.SetDefault("admin_prefix", constants.DefaultAdminPrefix)
	v.SetDefault("admin_login_path", constants.DefaultAdminLoginPath)
	v.SetDefault("portal_login_path", constants.DefaultPortalLoginPath)
	v.SetDefault("client.insecure", false)
	v.SetDefault("client.min_tls", "")
	v.SetDefault("client.max_tls", "")
	v.SetDefault("client.timeout", "0s")
	v.SetDefault("client.tracing", false)
	v.SetDefault("storage.type", store.TypeMemory)
	v.SetDefault("storage.table", constants.DefaultStorageTable)
	v.SetDefault("storage.sqlite.path", "")
	v.SetDefault("storage.sqlite.dsn", "")
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("storage.postgres.host", "")
	v.SetDefault("storage.postgres.port", 0)
	v.SetDefault("storage.postgres.user", "")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.dbname", "")
	v.SetDefault("storage.postgres.sslmode", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("routes_file", "")
}

// Load reads path (optional) and the environment into a Config. It does not
// validate; call Validate.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if p := strings.TrimSpace(path); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", p, err)
		}
	}

	var c Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&c, hook); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &c, nil
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return ErrMissingBaseURL
	}
	if c.EncodeKey == "" {
		return ErrMissingEncodeKey
	}
	return nil
}

func (c *Config) parseLogLevel() (common.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "error", "warn", "warning", "info", "", "debug":
		return common.ParseLogLevel(c.Logging.Level), nil
	default:
		return common.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings.
func (c *Config) SetupLogging() error {
	return c.setupLogging(os.Stdout)
}

func (c *Config) setupLogging(w io.Writer) error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json)", c.Logging.Format)
	}
	if format == "" {
		format = "text"
	}

	mask := true
	if c.Logging.MaskSensitive != nil {
		mask = *c.Logging.MaskSensitive
	}
	common.EnableMasking(mask)
	common.SetDefaultLogger(common.NewLoggerWithWriter(w, level, format))
	return nil
}
