package postgresql

import (
	"fmt"
	"strings"

	"github.com/loykin/servicecall/internal/constants"
)

type Config struct {
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// ToDSN prefers an explicit DSN; otherwise it is built from components when a
// host is set. Returns "" when neither is configured.
func (c Config) ToDSN() string {
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn
	}
	host := strings.TrimSpace(c.Host)
	if host == "" {
		return ""
	}
	port := c.Port
	if port == 0 {
		port = constants.DefaultPostgresPort
	}
	ssl := strings.TrimSpace(c.SSLMode)
	if ssl == "" {
		ssl = constants.DefaultPostgresSSLMode
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		strings.TrimSpace(c.User), strings.TrimSpace(c.Password), host, port, strings.TrimSpace(c.DBName), ssl)
}
