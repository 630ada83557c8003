package quickbase

import (
	"context"
	"net/http"
)

// Table describes a table within an application.
type Table struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Alias              string `json:"alias,omitempty"`
	Description        string `json:"description,omitempty"`
	SingleRecordName   string `json:"singleRecordName,omitempty"`
	PluralRecordName   string `json:"pluralRecordName,omitempty"`
	NextRecordID       int    `json:"nextRecordId,omitempty"`
	NextFieldID        int    `json:"nextFieldId,omitempty"`
	DefaultSortFieldID int    `json:"defaultSortFieldId,omitempty"`
	KeyFieldID         int    `json:"keyFieldId,omitempty"`
	SizeLimit          string `json:"sizeLimit,omitempty"`
	SpaceUsed          string `json:"spaceUsed,omitempty"`
	SpaceRemaining     string `json:"spaceRemaining,omitempty"`
}

// GetTables lists the tables of an application.
func (c *Client) GetTables(ctx context.Context, appID string, opts ...CallOption) ([]Table, error) {
	opts = append(opts, WithQueryParam("appId", appID))
	req, err := c.newRequest(http.MethodGet, "/tables", "", nil, opts...)
	if err != nil {
		return nil, err
	}
	var out []Table
	if err := c.do(ctx, req, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTable fetches a single table by id.
func (c *Client) GetTable(ctx context.Context, tableID, appID string, opts ...CallOption) (*Table, error) {
	opts = append(opts, WithQueryParam("appId", appID))
	req, err := c.newRequest(http.MethodGet, "/tables/"+tableID, tableID, nil, opts...)
	if err != nil {
		return nil, err
	}
	var out Table
	if err := c.do(ctx, req, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
