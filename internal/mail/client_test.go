package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PostsMessage(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "re_test", Timeout: time.Second})
	msg := Message{From: "noreply@zug.ch", To: []string{"anna@example.com"}, BCC: []string{"audit@zug.ch"}, Subject: "Ihre Meldung", Text: "Danke"}

	require.NoError(t, c.Send(context.Background(), msg))
	assert.Equal(t, msg, got)
}

func TestSend_ClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusUnprocessableEntity, false},
		{http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"name":"error","message":"provider says no"}`))
			}))
			defer srv.Close()

			err := New(Config{BaseURL: srv.URL, Timeout: time.Second}).Send(context.Background(), Message{To: []string{"a@b.ch"}})
			require.Error(t, err)

			var sendErr *SendError
			require.True(t, errors.As(err, &sendErr))
			assert.Equal(t, tt.status, sendErr.StatusCode)
			assert.Equal(t, "provider says no", sendErr.Message)
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestSend_NetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(Config{BaseURL: url, Timeout: time.Second}).Send(context.Background(), Message{To: []string{"a@b.ch"}})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestSend_NoRecipientsIsPermanent(t *testing.T) {
	err := New(Config{BaseURL: "http://127.0.0.1:1"}).Send(context.Background(), Message{})
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}
