package quickbase

import (
	"context"
	"net/http"

	"github.com/qbclient/quickbase-go/internal/json"
)

// FieldValue wraps a record cell. Values are kept raw because the field type
// dictates the JSON shape.
type FieldValue struct {
	Value json.RawMessage `json:"value"`
}

// Record maps field ids (as strings, matching the wire shape) to values.
type Record map[string]FieldValue

// SortField orders query results by a field.
type SortField struct {
	FieldID int    `json:"fieldId"`
	Order   string `json:"order,omitempty"`
}

// QueryOptions pages and tunes a query.
type QueryOptions struct {
	Skip                    int  `json:"skip,omitempty"`
	Top                     int  `json:"top,omitempty"`
	CompareWithAppLocalTime bool `json:"compareWithAppLocalTime,omitempty"`
}

// QueryRequest is the body of POST /records/query.
type QueryRequest struct {
	From    string        `json:"from"`
	Select  []int         `json:"select,omitempty"`
	Where   string        `json:"where,omitempty"`
	SortBy  []SortField   `json:"sortBy,omitempty"`
	GroupBy []GroupField  `json:"groupBy,omitempty"`
	Options *QueryOptions `json:"options,omitempty"`
}

// GroupField groups query results by a field.
type GroupField struct {
	FieldID  int    `json:"fieldId"`
	Grouping string `json:"grouping,omitempty"`
}

// FieldSummary describes a field referenced by a query response.
type FieldSummary struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// QueryMetadata reports paging counters for a query response.
type QueryMetadata struct {
	TotalRecords int `json:"totalRecords"`
	NumRecords   int `json:"numRecords"`
	NumFields    int `json:"numFields"`
	Skip         int `json:"skip"`
	Top          int `json:"top,omitempty"`
}

// QueryResponse is the decoded body of POST /records/query.
type QueryResponse struct {
	Data     []Record       `json:"data"`
	Fields   []FieldSummary `json:"fields"`
	Metadata QueryMetadata  `json:"metadata"`
}

// RunQuery executes a query against a table.
func (c *Client) RunQuery(ctx context.Context, query QueryRequest, opts ...CallOption) (*QueryResponse, error) {
	req, err := c.newRequest(http.MethodPost, "/records/query", query.From, query, opts...)
	if err != nil {
		return nil, err
	}
	var out QueryResponse
	if err := c.do(ctx, req, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertRequest is the body of POST /records.
type UpsertRequest struct {
	To             string   `json:"to"`
	Data           []Record `json:"data"`
	MergeFieldID   int      `json:"mergeFieldId,omitempty"`
	FieldsToReturn []int    `json:"fieldsToReturn,omitempty"`
}

// UpsertMetadata reports the outcome of an upsert, including per-line
// validation failures keyed by input line number.
type UpsertMetadata struct {
	CreatedRecordIDs   []int               `json:"createdRecordIds"`
	UpdatedRecordIDs   []int               `json:"updatedRecordIds"`
	UnchangedRecordIDs []int               `json:"unchangedRecordIds"`
	TotalProcessed     int                 `json:"totalNumberOfRecordsProcessed"`
	LineErrors         map[string][]string `json:"lineErrors,omitempty"`
}

// UpsertResponse is the decoded body of POST /records.
type UpsertResponse struct {
	Data     []Record       `json:"data"`
	Metadata UpsertMetadata `json:"metadata"`
}

// UpsertRecords inserts or merges records into a table.
func (c *Client) UpsertRecords(ctx context.Context, upsert UpsertRequest, opts ...CallOption) (*UpsertResponse, error) {
	req, err := c.newRequest(http.MethodPost, "/records", upsert.To, upsert, opts...)
	if err != nil {
		return nil, err
	}
	var out UpsertResponse
	if err := c.do(ctx, req, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRequest is the body of DELETE /records.
type DeleteRequest struct {
	From  string `json:"from"`
	Where string `json:"where"`
}

// DeleteResponse is the decoded body of DELETE /records.
type DeleteResponse struct {
	NumberDeleted int `json:"numberDeleted"`
}

// DeleteRecords removes the records matching the request's where clause.
func (c *Client) DeleteRecords(ctx context.Context, del DeleteRequest, opts ...CallOption) (*DeleteResponse, error) {
	req, err := c.newRequest(http.MethodDelete, "/records", del.From, del, opts...)
	if err != nil {
		return nil, err
	}
	var out DeleteResponse
	if err := c.do(ctx, req, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
