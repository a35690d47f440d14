package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// ServerView is the configuration read by the HTTP server bootstrap.
type ServerView struct {
	Port     int
	Host     string
	Env      Env
	APIURL   string // empty when API_URL is unset
	GRPCPort int    // zero disables the gRPC listener

	// TrustedProxies is nil when no proxy is trusted.
	TrustedProxies []string
}

// Addr returns the host:port listen address.
func (v ServerView) Addr() string {
	return net.JoinHostPort(v.Host, strconv.Itoa(v.Port))
}

// GRPCAddr returns the gRPC listen address, or "" when disabled.
func (v ServerView) GRPCAddr() string {
	if v.GRPCPort == 0 {
		return ""
	}
	return net.JoinHostPort(v.Host, strconv.Itoa(v.GRPCPort))
}

// CORSOrigin is either a single origin or an ordered list of origins.
// List is nil in the single form.
type CORSOrigin struct {
	Single string
	List   []string
}

// IsList reports whether the origin holds more than one entry.
func (o CORSOrigin) IsList() bool {
	return o.List != nil
}

// Values returns the origins as a fresh slice in either form.
func (o CORSOrigin) Values() []string {
	if o.List == nil {
		return []string{o.Single}
	}
	out := make([]string, len(o.List))
	copy(out, o.List)
	return out
}

// CORSView is the configuration read by the CORS middleware.
type CORSView struct {
	Origin      CORSOrigin
	Credentials bool
}

// RateLimitView is the configuration read by the rate limiter.
type RateLimitView struct {
	Max      int
	WindowMs int
	RedisURL string
}

// Window returns the rate limit window as a duration.
func (v RateLimitView) Window() time.Duration {
	return time.Duration(v.WindowMs) * time.Millisecond
}

// AuthView is the configuration read by the token and session layer.
type AuthView struct {
	JWTSecret     string
	JWTExpiresIn  string
	SessionSecret string
	SessionMaxAge int // seconds
}

// PoolView holds connection pool bounds.
type PoolView struct {
	Min int
	Max int
}

// DatabaseView is the configuration read by the database connection layer.
type DatabaseView struct {
	URL               string
	Pool              PoolView
	ConnectionTimeout int // milliseconds
}

// Timeout returns the connection timeout as a duration.
func (v DatabaseView) Timeout() time.Duration {
	return time.Duration(v.ConnectionTimeout) * time.Millisecond
}

// ServerView returns the server bootstrap view.
func (c *Config) ServerView() ServerView {
	var proxies []string
	if c.Server.TrustedProxies != "" {
		proxies = splitList(c.Server.TrustedProxies)
	}

	return ServerView{
		Port:           c.Server.Port,
		Host:           c.Server.Host,
		Env:            c.Server.NodeEnv,
		APIURL:         c.Server.APIURL,
		GRPCPort:       c.Server.GRPCPort,
		TrustedProxies: proxies,
	}
}

// CORSView returns the CORS middleware view. CORS_ORIGIN is split on commas
// and trimmed; exactly one entry yields the single form.
func (c *Config) CORSView() CORSView {
	parts := splitList(c.CORS.Origins)

	origin := CORSOrigin{List: parts}
	if len(parts) == 1 {
		origin = CORSOrigin{Single: parts[0]}
	}

	return CORSView{
		Origin:      origin,
		Credentials: bool(c.CORS.Credentials),
	}
}

// RateLimitView returns the rate limiter view.
func (c *Config) RateLimitView() RateLimitView {
	return RateLimitView{
		Max:      c.RateLimit.Max,
		WindowMs: c.RateLimit.Window,
		RedisURL: c.RateLimit.RedisURL,
	}
}

// AuthView returns the auth and session view.
func (c *Config) AuthView() AuthView {
	return AuthView{
		JWTSecret:     c.Auth.JWTSecret,
		JWTExpiresIn:  c.Auth.JWTExpiresIn,
		SessionSecret: c.Auth.SessionSecret,
		SessionMaxAge: c.Auth.SessionMaxAge,
	}
}

// DatabaseView returns the database connection view.
func (c *Config) DatabaseView() DatabaseView {
	return DatabaseView{
		URL: c.Database.URL,
		Pool: PoolView{
			Min: c.Database.PoolMin,
			Max: c.Database.PoolMax,
		},
		ConnectionTimeout: c.Database.ConnectionTimeout,
	}
}

// splitList splits a comma-separated value and trims each entry.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
