package quickbase

import (
	"context"
	"net/http"
)

// Field describes a column of a table.
type Field struct {
	ID               int    `json:"id"`
	Label            string `json:"label"`
	FieldType        string `json:"fieldType"`
	Mode             string `json:"mode,omitempty"`
	NoWrap           bool   `json:"noWrap,omitempty"`
	Bold             bool   `json:"bold,omitempty"`
	Required         bool   `json:"required,omitempty"`
	Unique           bool   `json:"unique,omitempty"`
	AppearsByDefault bool   `json:"appearsByDefault,omitempty"`
	FindEnabled      bool   `json:"findEnabled,omitempty"`
}

// GetFields lists the fields of a table.
func (c *Client) GetFields(ctx context.Context, tableID string, opts ...CallOption) ([]Field, error) {
	opts = append(opts, WithQueryParam("tableId", tableID))
	req, err := c.newRequest(http.MethodGet, "/fields", tableID, nil, opts...)
	if err != nil {
		return nil, err
	}
	var out []Field
	if err := c.do(ctx, req, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}
