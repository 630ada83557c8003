package quickbase

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/qbclient/quickbase-go/internal/json"
	"github.com/qbclient/quickbase-go/internal/transport"
)

// request is the fully assembled descriptor handed to the retry core. It is
// immutable across retries; only the Authorization header is recomputed when
// credentials change between attempts.
type request struct {
	id      string
	method  string
	url     string
	header  http.Header
	query   url.Values
	body    []byte
	tableID string
	legacy  bool

	// preferUserToken routes the call with the long-lived token even when a
	// temp token is active, used by the temp-token endpoint itself.
	preferUserToken bool
}

type bodyPatch struct {
	path  string
	value any
}

type callOverrides struct {
	headers []string // alternating key, value
	query   []string
	patches []bodyPatch
	rawURL  string
}

// CallOption customizes a single API call without changing the client.
type CallOption func(*callOverrides)

// WithHeader sets an extra request header for this call.
func WithHeader(key, value string) CallOption {
	return func(o *callOverrides) {
		o.headers = append(o.headers, key, value)
	}
}

// WithQueryParam sets an extra query parameter for this call.
func WithQueryParam(key, value string) CallOption {
	return func(o *callOverrides) {
		o.query = append(o.query, key, value)
	}
}

// WithBodyPatch sets a value at an sjson path in the request body after it
// is marshalled, letting callers reach fields the typed request structs do
// not expose.
func WithBodyPatch(path string, value any) CallOption {
	return func(o *callOverrides) {
		o.patches = append(o.patches, bodyPatch{path: path, value: value})
	}
}

// WithURL replaces the computed request URL entirely.
func WithURL(raw string) CallOption {
	return func(o *callOverrides) {
		o.rawURL = raw
	}
}

// newRequest assembles a REST request for path (relative to the versioned
// base). body is marshalled to JSON when non-nil. tableID names the table
// the call addresses, used for temp-token scoping.
func (c *Client) newRequest(method, path, tableID string, body any, opts ...CallOption) (*request, error) {
	var overrides callOverrides
	for _, opt := range opts {
		opt(&overrides)
	}

	base := c.cfg.Server
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	req := &request{
		id:      uuid.NewString(),
		method:  method,
		url:     fmt.Sprintf("%s/%s%s", base, c.cfg.Version, path),
		header:  make(http.Header),
		query:   make(url.Values),
		tableID: tableID,
	}
	if overrides.rawURL != "" {
		req.url = overrides.rawURL
	}

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("quickbase: encode request body: %w", err)
		}
		req.body = encoded
	}
	for _, patch := range overrides.patches {
		patched, err := sjson.SetBytes(req.body, patch.path, patch.value)
		if err != nil {
			return nil, fmt.Errorf("quickbase: apply body patch %q: %w", patch.path, err)
		}
		req.body = patched
	}

	req.header.Set("Content-Type", "application/json")
	req.header.Set("Accept-Encoding", transport.AcceptEncoding)
	req.header.Set("QB-Realm-Hostname", c.cfg.realmHost())
	req.header.Set("User-Agent", c.userAgent)
	for i := 0; i+1 < len(overrides.headers); i += 2 {
		req.header.Set(overrides.headers[i], overrides.headers[i+1])
	}
	for i := 0; i+1 < len(overrides.query); i += 2 {
		req.query.Set(overrides.query[i], overrides.query[i+1])
	}
	return req, nil
}

// newLegacyRequest assembles an XML gateway request for dbid with the given
// QUICKBASE-ACTION. body is the serialized qdbapi payload.
func (c *Client) newLegacyRequest(action, dbid string, body []byte, opts ...CallOption) *request {
	var overrides callOverrides
	for _, opt := range opts {
		opt(&overrides)
	}

	host := c.cfg.realmHost()
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	req := &request{
		id:      uuid.NewString(),
		method:  http.MethodPost,
		url:     fmt.Sprintf("%s/db/%s", host, dbid),
		header:  make(http.Header),
		query:   make(url.Values),
		body:    body,
		tableID: dbid,
		legacy:  true,
	}
	if overrides.rawURL != "" {
		req.url = overrides.rawURL
	}

	req.header.Set("Content-Type", "application/xml")
	req.header.Set("QUICKBASE-ACTION", action)
	req.header.Set("Accept-Encoding", transport.AcceptEncoding)
	req.header.Set("User-Agent", c.userAgent)
	for i := 0; i+1 < len(overrides.headers); i += 2 {
		req.header.Set(overrides.headers[i], overrides.headers[i+1])
	}
	for i := 0; i+1 < len(overrides.query); i += 2 {
		req.query.Set(overrides.query[i], overrides.query[i+1])
	}
	return req
}
