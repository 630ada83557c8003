package quickbase

import (
	"strings"
	"time"
)

// Unlimited disables the client's concurrency limit when assigned to
// Config.ConnectionLimit.
const Unlimited = -1

const (
	defaultServer          = "api.quickbase.com"
	defaultVersion         = "v1"
	defaultConnectionLimit = 10
)

// Config carries everything a Client needs to reach a realm. It round-trips
// through JSON or YAML, so a session (including credentials installed by the
// client itself) can be persisted and restored with New.
type Config struct {
	// Realm is the customer subdomain, with or without the
	// ".quickbase.com" suffix.
	Realm string `json:"realm" yaml:"realm"`

	// Server is the REST API host. Defaults to api.quickbase.com.
	Server string `json:"server,omitempty" yaml:"server,omitempty"`

	// Version is the REST API path prefix. Defaults to v1.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// UserToken is a long-lived token sent as "QB-USER-TOKEN".
	UserToken string `json:"userToken,omitempty" yaml:"user-token,omitempty"`

	// TempToken is a short-lived token sent as "QB-TEMP-TOKEN". It is only
	// valid for the table it was issued for, recorded in TempTokenDbid.
	TempToken     string `json:"tempToken,omitempty" yaml:"temp-token,omitempty"`
	TempTokenDbid string `json:"tempTokenDbid,omitempty" yaml:"temp-token-dbid,omitempty"`

	// AppToken authorizes legacy XML gateway calls alongside the ticket.
	AppToken string `json:"appToken,omitempty" yaml:"app-token,omitempty"`

	// Username and Password drive the legacy sign-in flow. When both are
	// set the client re-authenticates transparently on an invalid-ticket
	// failure.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// Ticket is the legacy session credential returned by sign-in.
	Ticket string `json:"ticket,omitempty" yaml:"ticket,omitempty"`

	// UserAgent is appended to the client's own User-Agent header.
	UserAgent string `json:"userAgent,omitempty" yaml:"user-agent,omitempty"`

	// ConnectionLimit bounds concurrently in-flight requests. Zero selects
	// the default of 10; Unlimited disables the bound.
	ConnectionLimit int `json:"connectionLimit,omitempty" yaml:"connection-limit,omitempty"`

	// ConnectionLimitPeriod, when positive, turns the limit into a rate:
	// each request counts against the limit for this long regardless of
	// when it completes.
	ConnectionLimitPeriod time.Duration `json:"connectionLimitPeriod,omitempty" yaml:"connection-limit-period,omitempty"`

	// ErrorOnConnectionLimit fails calls at the limit instead of queuing.
	ErrorOnConnectionLimit bool `json:"errorOnConnectionLimit,omitempty" yaml:"error-on-connection-limit,omitempty"`

	// AutoRenewTempTokens controls transparent temp-token renewal on
	// expired-credential failures. Nil means enabled.
	AutoRenewTempTokens *bool `json:"autoRenewTempTokens,omitempty" yaml:"auto-renew-temp-tokens,omitempty"`

	// RetryOnQuotaExceeded controls transparent backoff-and-retry on 429
	// responses. Nil means enabled.
	RetryOnQuotaExceeded *bool `json:"retryOnQuotaExceeded,omitempty" yaml:"retry-on-quota-exceeded,omitempty"`

	// ProxyURL routes outbound calls through an http, https, or socks5
	// proxy.
	ProxyURL string `json:"proxyUrl,omitempty" yaml:"proxy-url,omitempty"`

	// Timeout is the per-request transport timeout. Zero means none.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Bool returns a pointer to v, for the optional Config booleans.
func Bool(v bool) *bool {
	return &v
}

func (c *Config) withDefaults() {
	if c.Server == "" {
		c.Server = defaultServer
	}
	if c.Version == "" {
		c.Version = defaultVersion
	}
	if c.ConnectionLimit == 0 {
		c.ConnectionLimit = defaultConnectionLimit
	}
}

// realmHost returns the fully qualified realm hostname.
func (c *Config) realmHost() string {
	realm := strings.TrimSpace(c.Realm)
	if realm == "" {
		return ""
	}
	if strings.Contains(realm, ".") {
		return realm
	}
	return realm + ".quickbase.com"
}

func (c *Config) autoRenew() bool {
	return c.AutoRenewTempTokens == nil || *c.AutoRenewTempTokens
}

func (c *Config) retryOnQuota() bool {
	return c.RetryOnQuotaExceeded == nil || *c.RetryOnQuotaExceeded
}
