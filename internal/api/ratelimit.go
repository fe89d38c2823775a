package api

import (
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/httprate"

	"github.com/elewand/elewand-server/internal/http/response"
)

// authRateLimit limits credential endpoints per client IP.
// Returns 429 Too Many Requests when limit is exceeded.
func (s *Server) authRateLimit() func(http.Handler) http.Handler {
	return httprate.Limit(
		s.opts.AuthRequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Warn("rate limit exceeded",
				"ip", clientIP(r.RemoteAddr),
				"path", r.URL.Path,
			)
			response.TooManyRequests(w, "too many requests, please try again later", s.logger)
		}),
	)
}

// catalogRateLimit is a huma middleware limiting catalog-backed operations per
// user. Anonymous callers are keyed by IP.
func (s *Server) catalogRateLimit(ctx huma.Context, next func(huma.Context)) {
	if s.catalogLimiter == nil {
		next(ctx)
		return
	}

	key, err := GetUserID(ctx.Context())
	if err != nil {
		key = "ip:" + clientIP(ctx.RemoteAddr())
	}

	if !s.catalogLimiter.Allow(key) {
		s.logger.Warn("catalog rate limit exceeded", "key", key, "path", ctx.URL().Path)
		ctx.SetHeader("Retry-After", "60")
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests, please try again later")
		return
	}

	next(ctx)
}

// clientIP strips the port from a remote address. RealIP has already
// replaced RemoteAddr with the forwarded client address when present.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
