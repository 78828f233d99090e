package security

import (
	"strings"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

const (
	contentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"
	permissionsPolicy     = "camera=(), microphone=(), geolocation=(), payment=()"

	// one year
	hstsSeconds = 31536000
)

// sets the standard security headers on every response. HSTS is only
// sent in production, where the service is always behind TLS.
func Headers(production bool) gin.HandlerFunc {
	cfg := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}

	if production {
		cfg.STSSeconds = hstsSeconds
		cfg.STSIncludeSubdomains = true
	}

	headers := secure.New(cfg)

	return func(c *gin.Context) {
		c.Header("Permissions-Policy", permissionsPolicy)

		// API responses carry account data and must not be cached
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Cache-Control", "no-store")
		}

		headers(c)
	}
}
