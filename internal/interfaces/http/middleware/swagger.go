package middleware

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SwaggerConfig controls who may read the API docs
type SwaggerConfig struct {
	Enabled     bool     // Serve /swagger at all
	RequireAuth bool     // Require an admin session
	AllowedIPs  []string // Single IPs or CIDRs; empty allows every client
}

// SwaggerProtection guards the API docs.
//
// A disabled config answers 404. An allowlist rejects other clients with 403.
// With RequireAuth the admin gate runs after the allowlist, so both can be combined.
// Entries that are neither an IP nor a CIDR are skipped with a warning.
func SwaggerProtection(cfg SwaggerConfig, adminGate gin.HandlerFunc, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make([]netip.Prefix, 0, len(cfg.AllowedIPs))
	for _, entry := range cfg.AllowedIPs {
		prefix, err := parseAllowedIP(entry)
		if err != nil {
			logger.Warn("Ignoring invalid swagger allowlist entry", zap.String("entry", entry), zap.Error(err))
			continue
		}
		allowed = append(allowed, prefix)
	}
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if !cfg.Enabled {
			dto.NotFound(c, "API documentation is not available",
				dto.ErrorInfo{Code: dto.ErrCodeNotFound, RequestID: GetRequestID(c)})
			return
		}

		if restricted && !ipAllowed(clientAddr(c), allowed) {
			dto.Forbidden(c, "Access to API documentation is restricted",
				dto.ErrorInfo{Code: dto.ErrCodeForbidden, RequestID: GetRequestID(c)})
			return
		}

		if cfg.RequireAuth && adminGate != nil {
			adminGate(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

func parseAllowedIP(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, err
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// clientAddr prefers gin's ClientIP, which honours the trusted proxy list,
// and falls back to the raw remote address.
func clientAddr(c *gin.Context) netip.Addr {
	if addr, err := netip.ParseAddr(c.ClientIP()); err == nil {
		return addr.Unmap()
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

func ipAllowed(addr netip.Addr, allowed []netip.Prefix) bool {
	if !addr.IsValid() {
		return false
	}
	for _, prefix := range allowed {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
