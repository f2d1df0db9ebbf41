package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordingNotifier struct {
	name     string
	messages []string
	err      error
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Send(ctx context.Context, text string) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, text)
	return nil
}

func TestMulti_FansOut(t *testing.T) {
	a := &recordingNotifier{name: "a"}
	b := &recordingNotifier{name: "b"}
	m := NewMulti(a, b)

	if err := m.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	for _, ch := range []*recordingNotifier{a, b} {
		if len(ch.messages) != 1 || ch.messages[0] != "hello" {
			t.Errorf("channel %s messages = %v, want [hello]", ch.name, ch.messages)
		}
	}
}

func TestMulti_BestEffort(t *testing.T) {
	failing := &recordingNotifier{name: "failing", err: errors.New("boom")}
	ok := &recordingNotifier{name: "ok"}
	m := NewMulti(failing, ok)

	// A failing channel must not block the others or surface an error.
	if err := m.Send(context.Background(), "msg"); err != nil {
		t.Errorf("Send() = %v, want nil", err)
	}
	if len(ok.messages) != 1 {
		t.Errorf("healthy channel received %d messages, want 1", len(ok.messages))
	}
}

func TestMulti_Empty(t *testing.T) {
	m := NewMulti()
	if err := m.Send(context.Background(), "discarded"); err != nil {
		t.Errorf("Send() on empty Multi = %v, want nil", err)
	}
	if m.Channels() != 0 {
		t.Errorf("Channels() = %d, want 0", m.Channels())
	}
}

func TestNewTelegram_DisabledWithoutCredentials(t *testing.T) {
	if tg := NewTelegram("", "chat"); tg != nil {
		t.Error("NewTelegram() without token should return nil")
	}
	if tg := NewTelegram("token", ""); tg != nil {
		t.Error("NewTelegram() without chat ID should return nil")
	}
}

func TestTelegram_Send(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("bot-token", "chat-42")
	tg.apiBase = srv.URL

	if err := tg.Send(context.Background(), "Power is now on DG."); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	if gotPath != "/botbot-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["chat_id"] != "chat-42" {
		t.Errorf("chat_id = %q, want chat-42", gotBody["chat_id"])
	}
	if gotBody["text"] != "Power is now on DG." {
		t.Errorf("text = %q", gotBody["text"])
	}
}

func TestTelegram_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tg := NewTelegram("bot-token", "chat-42")
	tg.apiBase = srv.URL

	if err := tg.Send(context.Background(), "msg"); err == nil {
		t.Error("Send() should fail on non-200 status")
	}
}

func TestNewMQTT_DisabledWithoutBroker(t *testing.T) {
	m, err := NewMQTT("", "topic")
	if err != nil {
		t.Fatalf("NewMQTT() with empty broker failed: %v", err)
	}
	if m != nil {
		t.Error("NewMQTT() with empty broker should return nil channel")
	}
}
