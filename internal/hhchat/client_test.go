package hhchat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestPostMessage(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New("token-1", zap.NewNop())
	client.APIURL = server.URL

	if err := client.PostMessage(context.Background(), "neg-42", "Привет!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/negotiations/neg-42/messages" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer token-1" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotBody["message"] != "Привет!" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestPostMessageBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := New("token-1", zap.NewNop())
	client.APIURL = server.URL

	if err := client.PostMessage(context.Background(), "neg-42", "hi"); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}
