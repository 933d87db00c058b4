package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "from@example.com")
	assert.ErrorIs(t, err, errAPIKeyRequired)

	_, err = NewClient("key", "  ")
	assert.ErrorIs(t, err, errFromRequired)
}

func TestSend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id":"msg-123"}`))
	}))
	defer server.Close()

	client, err := NewClient("re_secret", "Store <orders@example.com>", WithBaseURL(server.URL))
	require.NoError(t, err)

	id, err := client.Send(context.Background(), Message{
		To:      []string{"buyer@example.com"},
		Subject: "Your books are ready",
		HTML:    "<p>Download links inside.</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "msg-123", id)
	assert.Equal(t, "Bearer re_secret", gotAuth)
	assert.Equal(t, "Store <orders@example.com>", gotBody["from"])
	assert.Equal(t, "Your books are ready", gotBody["subject"])
}

func TestSendNoRecipients(t *testing.T) {
	client, err := NewClient("key", "from@example.com")
	require.NoError(t, err)

	_, err = client.Send(context.Background(), Message{Subject: "empty"})
	require.Error(t, err)
}

func TestSendProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API key is invalid"}`))
	}))
	defer server.Close()

	client, err := NewClient("bad-key", "from@example.com", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Send(context.Background(), Message{To: []string{"a@b.co"}, Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is invalid")
}
