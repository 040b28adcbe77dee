package session

import (
	"strings"

	"github.com/loykin/servicecall/internal/constants"
)

// AppContext distinguishes the admin application from the portal.
type AppContext string

const (
	Admin  AppContext = "admin"
	Portal AppContext = "portal"
)

// Paths holds the route conventions used to classify the app context.
type Paths struct {
	AdminPrefix string `mapstructure:"admin_prefix" yaml:"admin_prefix"`
	AdminLogin  string `mapstructure:"admin_login_path" yaml:"admin_login_path"`
	PortalLogin string `mapstructure:"portal_login_path" yaml:"portal_login_path"`
}

// DefaultPaths returns the portal's route conventions.
func DefaultPaths() Paths {
	return Paths{
		AdminPrefix: constants.DefaultAdminPrefix,
		AdminLogin:  constants.DefaultAdminLoginPath,
		PortalLogin: constants.DefaultPortalLoginPath,
	}
}

func (p Paths) withDefaults() Paths {
	d := DefaultPaths()
	if strings.TrimSpace(p.AdminPrefix) == "" {
		p.AdminPrefix = d.AdminPrefix
	}
	if strings.TrimSpace(p.AdminLogin) == "" {
		p.AdminLogin = d.AdminLogin
	}
	if strings.TrimSpace(p.PortalLogin) == "" {
		p.PortalLogin = d.PortalLogin
	}
	return p
}

// Classify returns Admin for paths equal to or under the admin prefix. Any
// query or fragment is ignored.
func (p Paths) Classify(path string) AppContext {
	p = p.withDefaults()
	prefix := strings.TrimSuffix(p.AdminPrefix, "/")
	path = stripQuery(path)
	if path == prefix || strings.HasPrefix(path, prefix+"/") {
		return Admin
	}
	return Portal
}

// LoginPath returns the login route of c.
func (p Paths) LoginPath(c AppContext) string {
	p = p.withDefaults()
	if c == Admin {
		return p.AdminLogin
	}
	return p.PortalLogin
}

// RequireAdmin guards admin routes that need a signed-in user. It returns
// the admin login path and true when path must be redirected.
func (p Paths) RequireAdmin(path string, authorized bool) (string, bool) {
	p = p.withDefaults()
	if p.Classify(path) != Admin || authorized {
		return "", false
	}
	if stripQuery(path) == p.AdminLogin {
		return "", false
	}
	return p.AdminLogin, true
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}
