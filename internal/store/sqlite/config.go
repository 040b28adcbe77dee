package sqlite

import (
	"fmt"
	"strings"
)

// Config selects the database file. An empty path means an in-memory database.
type Config struct {
	Path string `mapstructure:"path" yaml:"path"`
	DSN  string `mapstructure:"dsn" yaml:"dsn"`
}

// ToDSN prefers an explicit DSN, then a file path.
func (c Config) ToDSN() string {
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn
	}
	if path := strings.TrimSpace(c.Path); path != "" {
		return fmt.Sprintf("file:%s?_busy_timeout=%d&%s", path, busyTimeoutMS, foreignKeysParam)
	}
	return ":memory:"
}
