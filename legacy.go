package quickbase

import (
	"context"
	"encoding/xml"
)

type doQueryPayload struct {
	XMLName xml.Name `xml:"qdbapi"`
	Query   string   `xml:"query,omitempty"`
	CList   string   `xml:"clist,omitempty"`
	SList   string   `xml:"slist,omitempty"`
	Options string   `xml:"options,omitempty"`
	Fmt     string   `xml:"fmt"`
}

// LegacyField is one cell of a legacy query result.
type LegacyField struct {
	ID    int    `xml:"id,attr"`
	Value string `xml:",chardata"`
}

// LegacyRecord is one row of a legacy query result.
type LegacyRecord struct {
	RecordID int           `xml:"rid,attr"`
	Fields   []LegacyField `xml:"f"`
}

// LegacyQueryResponse is the decoded body of an API_DoQuery call.
type LegacyQueryResponse struct {
	XMLName xml.Name       `xml:"qdbapi"`
	ErrCode int            `xml:"errcode"`
	Records []LegacyRecord `xml:"table>records>record"`
}

// DoQueryLegacy runs an API_DoQuery against the XML gateway. query uses the
// gateway's own filter syntax; clist and slist are dotted field-id lists and
// may be empty.
func (c *Client) DoQueryLegacy(ctx context.Context, dbid, query, clist, slist string, opts ...CallOption) (*LegacyQueryResponse, error) {
	payload, err := marshalLegacy(doQueryPayload{
		Query: query,
		CList: clist,
		SList: slist,
		Fmt:   "structured",
	})
	if err != nil {
		return nil, err
	}
	req := c.newLegacyRequest("API_DoQuery", dbid, payload, opts...)

	var out LegacyQueryResponse
	if err := c.do(ctx, req, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
