package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
)

func TestSend(t *testing.T) {
	var got sendMessageRequest
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	b := NewBot("123:abc", "-100")
	b.apiURL = ts.URL
	if err := b.Send(context.Background(), "Springboard+ closed"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if path != "/bot123:abc/sendMessage" {
		t.Errorf("path = %q", path)
	}
	if got.ChatID != "-100" || got.Text != "Springboard+ closed" {
		t.Errorf("request = %+v", got)
	}
}

func TestSend_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer ts.Close()

	b := NewBot("t", "c")
	b.apiURL = ts.URL
	if err := b.Send(context.Background(), "x"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSend_Disabled(t *testing.T) {
	b := NewBot("", "chat")
	if b.Enabled {
		t.Fatal("bot without a token should be disabled")
	}
	if err := b.Send(context.Background(), "x"); err != nil {
		t.Errorf("disabled bot should not fail: %v", err)
	}
}
