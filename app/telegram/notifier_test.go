package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNotifySendsMessage(t *testing.T) {
	var path, chatID, text, parseMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
		path = r.URL.Path
		chatID = r.PostFormValue("chat_id")
		text = r.PostFormValue("text")
		parseMode = r.PostFormValue("parse_mode")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	notifier := NewNotifier(server.Client(), "bot-token", "chat-42")
	notifier.apiBase = server.URL

	err := notifier.Notify(context.Background(), "<b>📥 Added torrent</b>")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if path != "/botbot-token/sendMessage" {
		t.Errorf("Unexpected request path: %q", path)
	}
	if chatID != "chat-42" {
		t.Errorf("Expected chat_id 'chat-42', got %q", chatID)
	}
	if text != "<b>📥 Added torrent</b>" {
		t.Errorf("Unexpected text: %q", text)
	}
	if parseMode != "HTML" {
		t.Errorf("Expected parse_mode HTML, got %q", parseMode)
	}
}

func TestNotifyReportsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	notifier := NewNotifier(server.Client(), "bot-token", "chat-42")
	notifier.apiBase = server.URL

	if err := notifier.Notify(context.Background(), "hello"); err == nil {
		t.Error("Expected error for rejected notification")
	}
}

func TestDisabledNotifierDropsMessages(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	notifier := NewNotifier(server.Client(), "", "")
	notifier.apiBase = server.URL

	if notifier.Enabled() {
		t.Error("Expected notifier without credentials to be disabled")
	}
	if err := notifier.Notify(context.Background(), "hello"); err != nil {
		t.Errorf("Expected disabled notifier to be a no-op, got: %v", err)
	}
	if called {
		t.Error("Expected no HTTP call from a disabled notifier")
	}
}
