package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHTTPClient_GetCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/count" {
			t.Errorf("expected path /api/count, got %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if fb := r.URL.Query().Get("fallback"); fb != "1000" {
			t.Errorf("expected fallback '1000', got '%s'", fb)
		}
		if lang := r.Header.Get("Accept-Language"); lang != "de" {
			t.Errorf("expected Accept-Language 'de', got '%s'", lang)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CountResponse{Epoch: 1000})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithLanguage("de"))
	epoch, err := client.GetCount(1000)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if epoch != 1000 {
		t.Errorf("expected epoch 1000, got %d", epoch)
	}
}

func TestHTTPClient_ResetCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reset" {
			t.Errorf("expected path /api/reset, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req ResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if req.Epoch != 1090 {
			t.Errorf("expected epoch 1090, got %d", req.Epoch)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CountResponse{Epoch: req.Epoch})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	epoch, err := client.ResetCount(1090)
	if err != nil {
		t.Fatalf("ResetCount failed: %v", err)
	}
	if epoch != 1090 {
		t.Errorf("expected epoch 1090, got %d", epoch)
	}
}

func TestHTTPClient_GetStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("expected path /api/status, got %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ServerInfo{
			Status:  "online",
			Uptime:  "1h30m0s",
			Version: "1.0.0",
			Epoch:   1090,
			Elapsed: "0y 0mo 0d 1h 30m 0s",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	info, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}

	if info.Status != "online" {
		t.Errorf("expected status 'online', got '%s'", info.Status)
	}
	if info.Epoch != 1090 {
		t.Errorf("expected epoch 1090, got %d", info.Epoch)
	}
}

func TestHTTPClient_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "failed to persist reset"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.ResetCount(1090)
	if err == nil {
		t.Error("expected error for 500 response")
	}
	if err != nil && !strings.Contains(err.Error(), "500") {
		t.Errorf("expected status in error, got: %v", err)
	}
}

func TestHTTPClient_WatchResets(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ws" {
			t.Errorf("expected path /api/ws, got %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// One ignorable message, then the reset.
		conn.WriteJSON(map[string]any{"topic": "noise", "data": nil})
		conn.WriteJSON(map[string]any{"topic": "reset", "data": CountResponse{Epoch: 1090}})

		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan int64, 1)
	client := NewHTTPClient(server.URL)
	err := client.WatchResets(ctx, func(epoch int64) {
		select {
		case got <- epoch:
		default:
		}
		cancel()
	})
	if err != nil {
		t.Fatalf("WatchResets failed: %v", err)
	}

	select {
	case epoch := <-got:
		if epoch != 1090 {
			t.Errorf("expected epoch 1090, got %d", epoch)
		}
	default:
		t.Fatal("no reset received")
	}
}
