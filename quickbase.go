// Package quickbase is a client for the Quickbase JSON REST API and the
// legacy XML gateway. Every call is routed through a retry core that
// throttles concurrency, backs off on rate limiting, and transparently
// renews expired credentials.
package quickbase

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"

	"github.com/qbclient/quickbase-go/internal/throttle"
	"github.com/qbclient/quickbase-go/internal/transport"
)

// Version is the client library version reported in the User-Agent header.
const Version = "1.0.0"

// Client issues authenticated calls against a single realm. It is safe for
// concurrent use; credential fields installed by setters or by transparent
// renewal are visible to all in-flight calls.
type Client struct {
	mu        sync.RWMutex
	cfg       Config
	userAgent string
	http      *http.Client
	throttle  *throttle.Throttle
}

// New builds a Client from cfg, applying defaults for any zero-valued
// settings (server host, API version, connection limit).
func New(cfg Config) (*Client, error) {
	cfg.withDefaults()

	httpClient, err := transport.NewClient(cfg.ProxyURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	ua := fmt.Sprintf("quickbase-go/%s (%s; %s)", Version, runtime.GOOS, runtime.Version())
	if cfg.UserAgent != "" {
		ua += " " + cfg.UserAgent
	}

	return &Client{
		cfg:       cfg,
		userAgent: ua,
		http:      httpClient,
		throttle:  throttle.New(cfg.ConnectionLimit, cfg.ConnectionLimitPeriod, cfg.ErrorOnConnectionLimit),
	}, nil
}

// Config returns a snapshot of the client's current configuration, including
// credentials installed after construction. Marshalling the snapshot and
// constructing a new client from it yields an equivalent session.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// SetUserToken installs a long-lived user token.
func (c *Client) SetUserToken(token string) {
	c.mu.Lock()
	c.cfg.UserToken = token
	c.mu.Unlock()
}

// SetTempToken installs a temporary token together with the table it was
// issued for. The token is only attached to requests addressing that table.
func (c *Client) SetTempToken(token, dbid string) {
	c.mu.Lock()
	c.cfg.TempToken = token
	c.cfg.TempTokenDbid = dbid
	c.mu.Unlock()
}

// SetTicket installs a legacy session ticket.
func (c *Client) SetTicket(ticket string) {
	c.mu.Lock()
	c.cfg.Ticket = ticket
	c.mu.Unlock()
}

// authorization computes the Authorization header value for a request
// addressing tableID under the current credentials. A temp token wins over
// a user token but never crosses table boundaries.
func (c *Client) authorization(tableID string, legacy bool) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if legacy {
		if c.cfg.Ticket != "" {
			return "QB-TICKET " + c.cfg.Ticket
		}
		return ""
	}
	if c.cfg.TempToken != "" && (tableID == "" || tableID == c.cfg.TempTokenDbid) {
		return "QB-TEMP-TOKEN " + c.cfg.TempToken
	}
	if c.cfg.UserToken != "" {
		return "QB-USER-TOKEN " + c.cfg.UserToken
	}
	return ""
}

// authorizationFor resolves the header value for a single attempt, honoring
// the request's preference for the long-lived token.
func (c *Client) authorizationFor(req *request) string {
	if req.preferUserToken {
		c.mu.RLock()
		token := c.cfg.UserToken
		c.mu.RUnlock()
		if token != "" {
			return "QB-USER-TOKEN " + token
		}
	}
	return c.authorization(req.tableID, req.legacy)
}

func (c *Client) tempTokenDbid() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.TempTokenDbid
}

func (c *Client) legacyCredentials() (username, password string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Username, c.cfg.Password
}
