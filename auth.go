package quickbase

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"net/http"

	log "github.com/qbclient/quickbase-go/internal/logging"
)

// tempTokenResponse is the body of GET /auth/temporary/{dbid}.
type tempTokenResponse struct {
	TemporaryAuthorization string `json:"temporaryAuthorization"`
}

// GetTempToken fetches a temporary token scoped to dbid and installs it as
// the active credential for that table.
func (c *Client) GetTempToken(ctx context.Context, dbid string) (string, error) {
	token, err := c.getTempToken(ctx, dbid, 0)
	if err != nil {
		return "", err
	}
	c.SetTempToken(token, dbid)
	return token, nil
}

func (c *Client) getTempToken(ctx context.Context, dbid string, attempt int) (string, error) {
	req, err := c.newRequest(http.MethodGet, "/auth/temporary/"+dbid, dbid, nil)
	if err != nil {
		return "", err
	}
	req.preferUserToken = true

	var out tempTokenResponse
	if err := c.do(ctx, req, attempt, &out); err != nil {
		return "", err
	}
	if out.TemporaryAuthorization == "" {
		return "", errors.New("quickbase: temporary token response was empty")
	}
	return out.TemporaryAuthorization, nil
}

type authenticatePayload struct {
	XMLName  xml.Name `xml:"qdbapi"`
	Username string   `xml:"username"`
	Password string   `xml:"password"`
	Hours    int      `xml:"hours,omitempty"`
	AppToken string   `xml:"apptoken,omitempty"`
}

type authenticateResponse struct {
	XMLName xml.Name `xml:"qdbapi"`
	ErrCode int      `xml:"errcode"`
	Ticket  string   `xml:"ticket"`
	UserID  string   `xml:"userid"`
}

// AuthenticateLegacy signs in against the XML gateway with the configured
// username and password and stores the returned session ticket. It is also
// invoked transparently when a call fails with the invalid-ticket code.
func (c *Client) AuthenticateLegacy(ctx context.Context) error {
	return c.authenticate(ctx, 0)
}

func (c *Client) authenticate(ctx context.Context, attempt int) error {
	username, password := c.legacyCredentials()
	if username == "" || password == "" {
		return errors.New("quickbase: username and password are required to authenticate")
	}

	payload, err := marshalLegacy(authenticatePayload{
		Username: username,
		Password: password,
		AppToken: c.cfg.AppToken,
	})
	if err != nil {
		return err
	}
	req := c.newLegacyRequest("API_Authenticate", "main", payload)

	var out authenticateResponse
	if err := c.do(ctx, req, attempt, &out); err != nil {
		return err
	}
	if out.Ticket == "" {
		return errors.New("quickbase: sign-in response carried no ticket")
	}
	log.WithField("user", out.UserID).Debug("legacy session established")
	c.SetTicket(out.Ticket)
	return nil
}

func marshalLegacy(payload any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
