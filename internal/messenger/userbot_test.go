package messenger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestUserbotClientSend(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"messageId": "m1", "chatId": "chat-42"})
	}))
	defer server.Close()

	client := NewUserbotClient(server.URL, "secret", zap.NewNop())
	session := &Session{Workspace: "ws-1"}

	result, err := client.SendByUsername(context.Background(), session, "ivan", "привет")
	if err != nil {
		t.Fatalf("send by username: %v", err)
	}
	if result.ChatID != "chat-42" || result.MessageID != "m1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotPath != "/workspaces/ws-1/messages" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotBody["username"] != "ivan" || gotBody["text"] != "привет" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestUserbotClientImportContact(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workspaces/ws-1/contacts/import" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"peerId": "peer-7"})
	}))
	defer server.Close()

	client := NewUserbotClient(server.URL, "secret", zap.NewNop())

	peer, err := client.ImportContact(context.Background(), &Session{Workspace: "ws-1"}, "+79990001122")
	if err != nil {
		t.Fatalf("import contact: %v", err)
	}
	if peer != "peer-7" {
		t.Fatalf("unexpected peer: %s", peer)
	}
}

func TestUserbotClientBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "flood wait", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewUserbotClient(server.URL, "secret", zap.NewNop())

	if _, err := client.SendByPeer(context.Background(), &Session{Workspace: "ws-1"}, "peer-1", "hi"); err == nil {
		t.Fatal("expected error on bad status")
	}
}
