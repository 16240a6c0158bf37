package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsContent(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, srv.Client(), zerolog.Nop())
	err := d.Send(context.Background(), "it's your move")
	require.NoError(t, err)
	assert.Equal(t, "it's your move", gotBody["content"])
}

func TestSendReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, srv.Client(), zerolog.Nop())
	assert.Error(t, d.Send(context.Background(), "msg"))
}

func TestSendWithoutWebhook(t *testing.T) {
	d := NewDiscord("", nil, zerolog.Nop())
	assert.ErrorIs(t, d.Send(context.Background(), "msg"), ErrNoWebhook)
}

func TestSendAsyncReportsOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, srv.Client(), zerolog.Nop())

	done := make(chan error, 1)
	d.SendAsync("ping", func(err error) { done <- err })

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("async send never completed")
	}
}

func TestTurnMessage(t *testing.T) {
	msg := TurnMessage("Quinn", 3, "https://duel.example/play#tok")
	assert.Contains(t, msg, "Quinn")
	assert.Contains(t, msg, "round 3")
	assert.Contains(t, msg, "#tok")

	anon := TurnMessage("", 1, "url")
	assert.Contains(t, anon, "your opponent")
}
