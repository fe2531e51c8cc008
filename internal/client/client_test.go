package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"perfdeck/internal/types"
)

func newTestClient(baseURL string, attempts int) *Client {
	c := New(Options{BaseURL: baseURL, Token: "token", Attempts: attempts, Timeout: 2 * time.Second})
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestListDimensionsSendsPagingAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v0/projects/demo/measures" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("per_page") != "8" || q.Get("search") != "lat" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"uuid":"m1","slug":"latency","name":"Latency","units":"ns"}]`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 1)
	records, err := c.ListDimensions(context.Background(), "demo", types.DimensionMeasure, types.ListParams{Page: 2, Search: " lat "})
	if err != nil {
		t.Fatalf("ListDimensions: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	measure, ok := records[0].(types.Measure)
	if !ok || measure.Units != "ns" || measure.Ref().Kind != types.DimensionMeasure {
		t.Fatalf("unexpected record: %#v", records[0])
	}
}

func TestListDimensionsRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	records, err := c.ListDimensions(context.Background(), "demo", types.DimensionBranch, types.ListParams{})
	if err != nil {
		t.Fatalf("ListDimensions: %v", err)
	}
	if len(records) != 0 || calls.Load() != 3 {
		t.Fatalf("unexpected result: %d records after %d calls", len(records), calls.Load())
	}
}

func TestListDimensionsDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"project not found"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.ListDimensions(context.Background(), "demo", types.DimensionBranch, types.ListParams{})
	apiErr := AsAPIError(err)
	if apiErr == nil || apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "project not found" {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", calls.Load())
	}
}

func TestGetDimensionReturnsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/projects/demo/branches/main" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"uuid":"a1","slug":"main","name":"main","start_point":null}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 1)
	resource, err := c.GetDimension(context.Background(), "demo", types.DimensionBranch, "main")
	if err != nil {
		t.Fatalf("GetDimension: %v", err)
	}
	if resource.UUID() != "a1" || resource.Slug() != "main" {
		t.Fatalf("unexpected resource: %#v", resource)
	}
	if _, err := c.GetDimension(context.Background(), "demo", types.DimensionBranch, " "); err == nil {
		t.Fatalf("expected error for blank slug")
	}
}

func TestDeleteIsNotRetriedAndUsesGivenToken(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer jwt" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	url := c.DimensionURL("demo", types.DimensionTestbed, "localhost")
	if url != server.URL+"/v0/projects/demo/testbeds/localhost" {
		t.Fatalf("unexpected dimension url %q", url)
	}
	err := c.Delete(context.Background(), url, "jwt")
	if apiErr := AsAPIError(err); apiErr == nil || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected delete to be sent once, got %d", calls.Load())
	}
}

func TestDeleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 1)
	if err := c.Delete(context.Background(), c.DimensionURL("demo", types.DimensionBenchmark, "fib"), "jwt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestListDimensionsValidatesArguments(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", 1)
	if _, err := c.ListDimensions(context.Background(), "", types.DimensionBranch, types.ListParams{}); err == nil {
		t.Fatalf("expected error for missing project")
	}
	if _, err := c.ListDimensions(context.Background(), "demo", types.DimensionKind("plot"), types.ListParams{}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if got := c.DimensionURL("demo", types.DimensionBranch, ""); got != "" {
		t.Fatalf("expected empty url for blank slug, got %q", got)
	}
}
