package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig controls cross-origin headers for the browser frontend.
type CORSConfig struct {
	Enabled          bool          `yaml:"enabled"`
	AllowedOrigins   []string      `yaml:"allowedOrigins"`
	AllowedMethods   []string      `yaml:"allowedMethods"`
	AllowedHeaders   []string      `yaml:"allowedHeaders"`
	ExposedHeaders   []string      `yaml:"exposedHeaders"`
	AllowCredentials bool          `yaml:"allowCredentials"`
	MaxAge           time.Duration `yaml:"maxAge"`
}

type corsPolicy struct {
	origins     map[string]struct{}
	anyOrigin   bool
	credentials bool
	static      http.Header
	echoHeaders bool
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	p := &corsPolicy{origins: map[string]struct{}{}, credentials: cfg.AllowCredentials, static: http.Header{}}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.ToLower(strings.TrimSpace(origin))
		switch origin {
		case "":
		case "*":
			p.anyOrigin = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	setJoined := func(name string, values []string) {
		if len(values) > 0 {
			p.static.Set(name, strings.Join(values, ","))
		}
	}
	setJoined("Access-Control-Allow-Methods", cfg.AllowedMethods)
	setJoined("Access-Control-Allow-Headers", cfg.AllowedHeaders)
	setJoined("Access-Control-Expose-Headers", cfg.ExposedHeaders)
	p.echoHeaders = len(cfg.AllowedHeaders) == 0
	if cfg.AllowCredentials {
		p.static.Set("Access-Control-Allow-Credentials", "true")
	}
	if cfg.MaxAge > 0 {
		p.static.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge/time.Second)))
	}
	return p
}

func (p *corsPolicy) allows(origin string) bool {
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[strings.ToLower(origin)]
	return ok
}

func (p *corsPolicy) apply(h http.Header, origin, requestedHeaders string) {
	// Credentialed requests need the exact origin echoed back.
	if p.anyOrigin && len(p.origins) == 0 && !p.credentials {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
	for name, values := range p.static {
		h[name] = values
	}
	if p.echoHeaders && requestedHeaders != "" {
		h.Set("Access-Control-Allow-Headers", requestedHeaders)
	}
}

// CORSMiddleware answers preflights and decorates responses for allowed
// origins. Preflights from other origins get 403; their simple requests pass
// through undecorated.
func CORSMiddleware(cfg CORSConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	policy := newCORSPolicy(cfg)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions
		switch {
		case origin == "":
		case policy.allows(origin):
			policy.apply(c.Writer.Header(), origin, c.GetHeader("Access-Control-Request-Headers"))
			if preflight {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
		case preflight:
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
