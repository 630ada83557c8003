package quickbase

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/qbclient/quickbase-go/internal/json"
	log "github.com/qbclient/quickbase-go/internal/logging"
	"github.com/qbclient/quickbase-go/internal/transport"
)

const (
	// maxAttempts bounds corrective retries (credential renewal and legacy
	// re-authentication). Rate-limit waits deliberately do not consume it.
	maxAttempts = 3

	// defaultQuotaDelay applies when a 429 response carries no usable
	// Retry-After or x-ratelimit-reset header.
	defaultQuotaDelay = 10 * time.Second
)

// do executes one logical API call: throttled transport, then the failure
// decision table. attempt travels explicitly through the recursion so
// concurrent calls never share retry bookkeeping. On success the response
// body is decoded into out (which may be nil).
func (c *Client) do(ctx context.Context, req *request, attempt int, out any) error {
	status, headers, body, err := c.transmit(ctx, req)
	if err != nil {
		// Transport failures carry no signal to act on; pass them through
		// unwrapped.
		return err
	}

	if status >= 200 && status < 300 {
		// The legacy gateway reports failures in-band with HTTP 200.
		if !req.legacy || legacyErrCode(body) == 0 {
			return decodeBody(req, body, out)
		}
	}

	qerr := normalizeError(status, headers, body)
	log.WithFields(log.Fields{
		"requestId": req.id,
		"code":      qerr.Code,
		"attempt":   attempt,
		"ray":       qerr.RayID,
	}).Debugf("request failed: %s", qerr.Description)

	if qerr.Code == http.StatusTooManyRequests && c.cfg.retryOnQuota() {
		delay := quotaDelay(headers)
		log.WithField("requestId", req.id).Debugf("rate limited, retrying in %s", delay)
		if err := waitFor(ctx, delay); err != nil {
			return err
		}
		// Same attempt counter: quota waits may recur as long as the
		// server keeps signaling 429.
		return c.do(ctx, req, attempt, out)
	}

	if attempt >= maxAttempts {
		return qerr
	}

	if isExpiredCredential(qerr.Description) && c.cfg.autoRenew() && c.tempTokenDbid() != "" {
		if err := c.renewTempToken(ctx, attempt+1); err != nil {
			return err
		}
		return c.do(ctx, req, attempt+1, out)
	}

	if username, password := c.legacyCredentials(); qerr.Code == errcodeInvalidTicket && username != "" && password != "" {
		if err := c.authenticate(ctx, attempt+1); err != nil {
			return err
		}
		return c.do(ctx, req, attempt+1, out)
	}

	return qerr
}

// transmit performs a single transport attempt under a throttle slot. The
// slot covers only the network call; backoff waits happen outside it.
func (c *Client) transmit(ctx context.Context, req *request) (int, http.Header, []byte, error) {
	release, err := c.throttle.Acquire(ctx)
	if err != nil {
		return 0, nil, nil, err
	}
	defer release()

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, bytes.NewReader(req.body))
	if err != nil {
		return 0, nil, nil, err
	}
	httpReq.Header = req.header.Clone()
	if len(req.query) > 0 {
		httpReq.URL.RawQuery = req.query.Encode()
	}
	// Recomputed per attempt so a retry after renewal carries the fresh
	// credential.
	if auth := c.authorizationFor(req); auth != "" {
		httpReq.Header.Set("Authorization", auth)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	reader, err := transport.DecodeBody(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return 0, nil, nil, err
	}
	body, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.StatusCode, resp.Header, body, nil
}

// decodeBody unmarshals a successful response into out.
func decodeBody(req *request, body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if req.legacy {
		return xml.Unmarshal(body, out)
	}
	return json.Unmarshal(body, out)
}

// legacyErrCode extracts the gateway errcode from a 2xx XML body; zero means
// success or an unparseable body.
func legacyErrCode(body []byte) int {
	var env xmlErrorEnvelope
	if err := xml.Unmarshal(bytes.TrimSpace(body), &env); err != nil {
		return 0
	}
	if env.ErrCode == nil {
		return 0
	}
	return *env.ErrCode
}

// quotaDelay computes the wait before retrying a rate-limited call:
// Retry-After as seconds or an HTTP-date, then x-ratelimit-reset
// (milliseconds), then the fixed default. Never negative.
func quotaDelay(headers http.Header) time.Duration {
	if v := headers.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			if secs < 0 {
				secs = 0
			}
			return time.Duration(secs * float64(time.Second))
		}
		if at, err := http.ParseTime(v); err == nil {
			delay := time.Until(at)
			if delay < 0 {
				delay = 0
			}
			return delay
		}
	}
	if v := headers.Get("X-RateLimit-Reset"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultQuotaDelay
}

// waitFor blocks until the delay elapses or ctx is done.
func waitFor(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// renewTempToken fetches a fresh temporary token for the configured binding
// through the same retry core and installs it for subsequent attempts.
func (c *Client) renewTempToken(ctx context.Context, attempt int) error {
	dbid := c.tempTokenDbid()
	token, err := c.getTempToken(ctx, dbid, attempt)
	if err != nil {
		return err
	}
	log.WithField("dbid", dbid).Debug("temporary token renewed")
	c.SetTempToken(token, dbid)
	return nil
}
