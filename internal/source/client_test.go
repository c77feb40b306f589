package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"peermap/internal/model"
)

func TestClient_Topology(t *testing.T) {
	t.Parallel()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/topology" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.Snapshot{
			SelfID: "self",
			Peers:  []model.Peer{{ID: "self"}, {ID: "b"}},
		})
	}))
	defer s.Close()

	c := NewClient(s.URL)
	snap, err := c.Topology(context.Background())
	if err != nil {
		t.Fatalf("Topology: %v", err)
	}
	if snap.SelfID != "self" {
		t.Fatalf("self_id=%q", snap.SelfID)
	}
	if len(snap.Peers) != 2 {
		t.Fatalf("peers=%d", len(snap.Peers))
	}
}

func TestClient_ErrorIncludesBody(t *testing.T) {
	t.Parallel()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer s.Close()

	c := NewClient(s.URL)
	_, err := c.Topology(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	got := err.Error()
	if !strings.Contains(got, "400") {
		t.Fatalf("error missing status: %q", got)
	}
	if !strings.Contains(got, `"error":"nope"`) {
		t.Fatalf("error missing body: %q", got)
	}
}

func TestClient_PingUsesHealthEndpoint(t *testing.T) {
	t.Parallel()

	var path string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	c := NewClient(s.URL + "/")
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if path != "/api/ping" {
		t.Fatalf("path=%q", path)
	}
}
