package quickbase

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// rayHeader carries the correlation id the service attaches to every
// response for matching client failures against server-side logs.
const rayHeader = "qb-api-ray"

// errcodeInvalidTicket is the legacy gateway's sentinel for an invalid or
// missing ticket.
const errcodeInvalidTicket = 4

const defaultErrorDescription = "Unable to complete request"

// Error is the normalized failure shape surfaced for any failed API call.
// Code is the HTTP status, or the legacy gateway's errcode when the failure
// was reported in-band.
type Error struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
	RayID       string `json:"rayId,omitempty"`
}

func (e *Error) Error() string {
	if e.RayID != "" {
		return fmt.Sprintf("quickbase: %d %s: %s (ray %s)", e.Code, e.Message, e.Description, e.RayID)
	}
	return fmt.Sprintf("quickbase: %d %s: %s", e.Code, e.Message, e.Description)
}

// StatusCode reports the normalized code, matching the accessor shape other
// HTTP error types in this module's ecosystem expose.
func (e *Error) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.Code
}

// normalizeError converts a failed response into an *Error. It is a pure
// function of its inputs: the service is inconsistent about both header
// casing and error body shape, so header keys are lowered before lookup and
// several body layouts are tolerated.
func normalizeError(status int, headers http.Header, body []byte) *Error {
	e := &Error{
		Code:        status,
		Message:     http.StatusText(status),
		Description: defaultErrorDescription,
		RayID:       lowerHeaderLookup(headers, rayHeader),
	}
	if e.Message == "" {
		e.Message = "Quickbase Error"
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return e
	}
	if trimmed[0] == '<' {
		normalizeXMLError(e, trimmed)
		return e
	}
	normalizeJSONError(e, trimmed)
	return e
}

// normalizeJSONError fills e from a JSON error body. Description precedence:
// an "errors" array joined with spaces, then "error", then "description".
func normalizeJSONError(e *Error, body []byte) {
	if !gjson.ValidBytes(body) {
		return
	}
	if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
		e.Message = msg.String()
	}
	if errs := gjson.GetBytes(body, "errors"); errs.IsArray() {
		parts := make([]string, 0, 4)
		for _, item := range errs.Array() {
			if s := item.String(); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			e.Description = strings.Join(parts, " ")
			return
		}
	}
	if v := gjson.GetBytes(body, "error"); v.Exists() && v.String() != "" {
		e.Description = v.String()
		return
	}
	if v := gjson.GetBytes(body, "description"); v.Exists() && v.String() != "" {
		e.Description = v.String()
	}
}

type xmlErrorEnvelope struct {
	XMLName   xml.Name `xml:"qdbapi"`
	ErrCode   *int     `xml:"errcode"`
	ErrText   string   `xml:"errtext"`
	ErrDetail string   `xml:"errdetail"`
}

// normalizeXMLError fills e from a legacy gateway body. The gateway reports
// failures via errcode even on HTTP 200, so errcode overrides the status.
func normalizeXMLError(e *Error, body []byte) {
	var env xmlErrorEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return
	}
	if env.ErrCode != nil {
		e.Code = *env.ErrCode
	}
	if env.ErrText != "" {
		e.Message = env.ErrText
	}
	switch {
	case env.ErrDetail != "":
		e.Description = env.ErrDetail
	case env.ErrText != "":
		e.Description = env.ErrText
	}
}

// lowerHeaderLookup finds key among headers compared case-insensitively.
// key must already be lowercase.
func lowerHeaderLookup(headers http.Header, key string) string {
	for k, vals := range headers {
		if strings.ToLower(k) == key && len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// isExpiredCredential reports whether a failure description signals an
// expired or unusable credential that temp-token renewal can correct.
func isExpiredCredential(description string) bool {
	d := strings.ToLower(description)
	return strings.Contains(d, "ticket has expired") ||
		strings.Contains(d, "invalid authorization") ||
		strings.Contains(d, "required header 'authorization' not found")
}
