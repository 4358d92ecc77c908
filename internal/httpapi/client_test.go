package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counts struct {
	Hotspots       int64 `json:"hotspots"`
	HotspotsOnline int64 `json:"hotspots_online"`
}

type status struct {
	Online string `json:"online"`
}

type record struct {
	Name   string   `json:"name"`
	Lat    *float64 `json:"lat"`
	Status status   `json:"status"`
	Owner  string   `json:"owner,omitempty"`
}

type payload struct {
	Data struct {
		Counts  counts   `json:"counts"`
		Records []record `json:"records"`
	} `json:"data"`
	Cursor string `json:"cursor,omitempty"`
}

func TestDecode_Valid(t *testing.T) {
	body := `{"data":{"counts":{"hotspots":100,"hotspots_online":80},"records":[{"name":"a","lat":null,"status":{"online":"online"}}]}}`

	var p payload
	require.NoError(t, Decode("stats", []byte(body), &p))
	assert.Equal(t, int64(100), p.Data.Counts.Hotspots)
	assert.Nil(t, p.Data.Records[0].Lat)
	assert.Equal(t, "online", p.Data.Records[0].Status.Online)
}

func TestDecode_KeysMatchCaseInsensitively(t *testing.T) {
	body := `{"Data":{"Counts":{"HOTSPOTS":7,"hotspots_online":3},"records":[{"Name":"a","lat":2,"status":{"Online":"offline"}}]}}`

	var p payload
	require.NoError(t, Decode("stats", []byte(body), &p))
	assert.Equal(t, int64(7), p.Data.Counts.Hotspots)
	assert.Equal(t, "a", p.Data.Records[0].Name)
	assert.Equal(t, "offline", p.Data.Records[0].Status.Online)
}

func TestDecode_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing nested field", `{"data":{"counts":{"hotspots":1},"records":[]}}`, "data.counts.hotspots_online"},
		{"missing envelope", `{"cursor":"x"}`, "data"},
		{"missing field in list item", `{"data":{"counts":{"hotspots":1,"hotspots_online":1},"records":[{"name":"a","lat":1}]}}`, "data.records[0].status"},
		{"null struct", `{"data":{"counts":null,"records":[]}}`, "data.counts"},
		{"wrong type", `{"data":{"counts":{"hotspots":"many","hotspots_online":1},"records":[]}}`, "data.counts.hotspots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := Decode("stats", []byte(tt.body), &p)
			require.Error(t, err)

			var se *SchemaError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "stats", se.Endpoint)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	var p payload
	err := Decode("stats", []byte(`{"data":`), &p)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "malformed json")
}

func TestClient_SendsHeaders(t *testing.T) {
	var gotUA, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"data":{"counts":{"hotspots":1,"hotspots_online":1},"records":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{UserAgent: "test-agent"})
	var p payload
	require.NoError(t, c.GetJSON(context.Background(), "stats", srv.URL, &p))
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "application/json; charset=utf-8", gotCT)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{})
	var p payload
	err := c.GetJSON(context.Background(), "stats", srv.URL, &p)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
	assert.False(t, IsStatus(err, http.StatusNotFound))
}
