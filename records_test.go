package quickbase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestRunQueryRequestShape(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Clone()
		fmt.Fprint(w, `{
			"data":[{"3":{"value":1},"6":{"value":"Andre Harris"}}],
			"fields":[{"id":3,"label":"Record ID#","type":"numeric"}],
			"metadata":{"totalRecords":1,"numRecords":1,"numFields":2,"skip":0}
		}`)
	}))
	defer ts.Close()

	client := newTestClient(t, Config{Realm: "demo", UserToken: "tok"}, ts.URL)
	resp, err := client.RunQuery(context.Background(), QueryRequest{
		From:   "bqtable1",
		Select: []int{3, 6},
		Where:  "{3.GT.0}",
		SortBy: []SortField{{FieldID: 3, Order: "ASC"}},
	})
	if err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}

	if len(resp.Data) != 1 || resp.Metadata.TotalRecords != 1 {
		t.Errorf("Unexpected response decoded: %+v", resp)
	}
	if got := string(resp.Data[0]["6"].Value); got != `"Andre Harris"` {
		t.Errorf("Unexpected raw field value %q", got)
	}

	if got := gjson.GetBytes(gotBody, "from").String(); got != "bqtable1" {
		t.Errorf("Expected from in body, got %q", got)
	}
	if got := gjson.GetBytes(gotBody, "sortBy.0.order").String(); got != "ASC" {
		t.Errorf("Expected sortBy in body, got %q", got)
	}
	if got := gotHeader.Get("QB-Realm-Hostname"); got != "demo.quickbase.com" {
		t.Errorf("Expected realm hostname header, got %q", got)
	}
	if got := gotHeader.Get("Authorization"); got != "QB-USER-TOKEN tok" {
		t.Errorf("Expected user token authorization, got %q", got)
	}
	if ua := gotHeader.Get("User-Agent"); !strings.HasPrefix(ua, "quickbase-go/"+Version) {
		t.Errorf("Unexpected user agent %q", ua)
	}
}

func TestCallOptions(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Clone()
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"data":[],"fields":[],"metadata":{"totalRecords":0,"numRecords":0,"numFields":0,"skip":0}}`)
	}))
	defer ts.Close()

	client := newTestClient(t, Config{Realm: "demo", UserToken: "tok"}, ts.URL)
	_, err := client.RunQuery(context.Background(), QueryRequest{From: "bqtable1"},
		WithHeader("QB-Test-Run", "yes"),
		WithQueryParam("format", "default"),
		WithBodyPatch("options.top", 25),
	)
	if err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}

	if got := gotHeader.Get("QB-Test-Run"); got != "yes" {
		t.Errorf("Expected override header, got %q", got)
	}
	if gotQuery != "format=default" {
		t.Errorf("Expected override query, got %q", gotQuery)
	}
	if got := gjson.GetBytes(gotBody, "options.top").Int(); got != 25 {
		t.Errorf("Expected body patch applied, got %d", got)
	}
}

func TestUpsertRecords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if got := gjson.GetBytes(body, "to").String(); got != "bqtable1" {
			t.Errorf("Expected to in body, got %q", got)
		}
		fmt.Fprint(w, `{
			"data":[],
			"metadata":{
				"createdRecordIds":[11,12],
				"updatedRecordIds":[],
				"unchangedRecordIds":[],
				"totalNumberOfRecordsProcessed":2
			}
		}`)
	}))
	defer ts.Close()

	client := newTestClient(t, Config{Realm: "demo", UserToken: "tok"}, ts.URL)
	resp, err := client.UpsertRecords(context.Background(), UpsertRequest{
		To: "bqtable1",
		Data: []Record{
			{"6": FieldValue{Value: []byte(`"Andre Harris"`)}},
			{"6": FieldValue{Value: []byte(`"Erica Fields"`)}},
		},
	})
	if err != nil {
		t.Fatalf("UpsertRecords failed: %v", err)
	}
	if len(resp.Metadata.CreatedRecordIDs) != 2 || resp.Metadata.TotalProcessed != 2 {
		t.Errorf("Unexpected upsert metadata: %+v", resp.Metadata)
	}
}

func TestDeleteRecords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		fmt.Fprint(w, `{"numberDeleted":3}`)
	}))
	defer ts.Close()

	client := newTestClient(t, Config{Realm: "demo", UserToken: "tok"}, ts.URL)
	resp, err := client.DeleteRecords(context.Background(), DeleteRequest{From: "bqtable1", Where: "{3.GT.100}"})
	if err != nil {
		t.Fatalf("DeleteRecords failed: %v", err)
	}
	if resp.NumberDeleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", resp.NumberDeleted)
	}
}

func TestGetTablesQueryParam(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("appId"); got != "bpqe82s1" {
			t.Errorf("Expected appId param, got %q", got)
		}
		fmt.Fprint(w, `[{"id":"bqtable1","name":"Projects"},{"id":"bqtable2","name":"Tasks"}]`)
	}))
	defer ts.Close()

	client := newTestClient(t, Config{Realm: "demo", UserToken: "tok"}, ts.URL)
	tables, err := client.GetTables(context.Background(), "bpqe82s1")
	if err != nil {
		t.Fatalf("GetTables failed: %v", err)
	}
	if len(tables) != 2 || tables[1].Name != "Tasks" {
		t.Errorf("Unexpected tables: %+v", tables)
	}
}

func TestTempTokenScopedToTable(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"data":[],"fields":[],"metadata":{"totalRecords":0,"numRecords":0,"numFields":0,"skip":0}}`)
	}))
	defer ts.Close()

	client := newTestClient(t, Config{
		Realm:         "demo",
		UserToken:     "tok",
		TempToken:     "tmp",
		TempTokenDbid: "bqtable1",
	}, ts.URL)

	// Matching table: the temp token wins over the user token.
	if _, err := client.RunQuery(context.Background(), QueryRequest{From: "bqtable1"}); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}
	if gotAuth != "QB-TEMP-TOKEN tmp" {
		t.Errorf("Expected temp token for its bound table, got %q", gotAuth)
	}

	// Different table: never reuse a token scoped to another resource.
	if _, err := client.RunQuery(context.Background(), QueryRequest{From: "bqother"}); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}
	if gotAuth != "QB-USER-TOKEN tok" {
		t.Errorf("Expected fallback to user token across tables, got %q", gotAuth)
	}
}
