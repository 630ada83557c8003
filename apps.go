package quickbase

import (
	"context"
	"net/http"
)

// App describes an application as returned by the REST API.
type App struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	Description              string `json:"description,omitempty"`
	Created                  string `json:"created,omitempty"`
	Updated                  string `json:"updated,omitempty"`
	TimeZone                 string `json:"timeZone,omitempty"`
	DateFormat               string `json:"dateFormat,omitempty"`
	HasEveryoneOnTheInternet bool   `json:"hasEveryoneOnTheInternet,omitempty"`
}

// GetApp fetches a single application by id.
func (c *Client) GetApp(ctx context.Context, appID string, opts ...CallOption) (*App, error) {
	req, err := c.newRequest(http.MethodGet, "/apps/"+appID, "", nil, opts...)
	if err != nil {
		return nil, err
	}
	var out App
	if err := c.do(ctx, req, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
