package config

import (
	"sort"
	"strings"
)

type corsSettings struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
	AllowedMethods []string `koanf:"allowed_methods"`
	AllowedHeaders []string `koanf:"allowed_headers"`
}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func NewAllowedOrigins(origins ...string) AllowedOrigins {
	a := AllowedOrigins{}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			a[origin] = nullValue{}
		}
	}
	return a
}

// IsAllowedOrigin reports whether origin is listed, "*" allows any origin
func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	if _, ok := a["*"]; ok {
		return true
	}
	_, ok := a[origin]
	return ok
}

// List returns the origins sorted
func (a AllowedOrigins) List() []string {
	origins := make([]string, 0, len(a))
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return origins
}

func (a AllowedOrigins) String() string {
	return strings.Join(a.List(), ", ")
}

func (c *mainConfig) GetAllowedOrigins() AllowedOrigins {
	return NewAllowedOrigins(c.Cors.AllowedOrigins...)
}

func (c *mainConfig) GetAllowedMethods() []string {
	return c.Cors.AllowedMethods
}

func (c *mainConfig) GetAllowedHeaders() []string {
	return c.Cors.AllowedHeaders
}
