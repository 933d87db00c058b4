package telegram

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
	_, err := NewClient("", "chat")
	assert.ErrorIs(t, err, errBotTokenRequired)

	_, err = NewClient("token", "   ")
	assert.ErrorIs(t, err, errChatIDRequired)

	client, err := NewClient("token", "chat")
	require.NoError(t, err)
	assert.Equal(t, defaultBaseURL, client.baseURL)
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewClient("bot-token", "-100123", WithBaseURL(server.URL))
	require.NoError(t, err)

	keyboard := &InlineKeyboard{
		InlineKeyboard: [][]InlineButton{{
			{Text: "Approve", CallbackData: "approve:abc"},
			{Text: "Reject", CallbackData: "reject:abc"},
		}},
	}

	require.NoError(t, client.SendMessage(context.Background(), "<b>New order</b>", keyboard))

	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "-100123", gotBody["chat_id"])
	assert.Equal(t, "HTML", gotBody["parse_mode"])
	assert.Equal(t, "<b>New order</b>", gotBody["text"])

	markup, ok := gotBody["reply_markup"].(map[string]any)
	require.True(t, ok)
	rows, ok := markup["inline_keyboard"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
}

func TestSendPhoto(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botbot-token/sendPhoto", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewClient("bot-token", "chat", WithBaseURL(server.URL))
	require.NoError(t, err)

	err = client.SendPhoto(context.Background(), "https://example.com/slip.jpg", "caption", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/slip.jpg", gotBody["photo"])
	assert.Equal(t, "caption", gotBody["caption"])
	_, hasMarkup := gotBody["reply_markup"]
	assert.False(t, hasMarkup)
}

func TestSendMessageRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: wrong file identifier"}`))
	}))
	defer server.Close()

	client, err := NewClient("bot-token", "chat", WithBaseURL(server.URL))
	require.NoError(t, err)

	err = client.SendMessage(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong file identifier")
}

func TestAnswerCallbackQuery(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botbot-token/answerCallbackQuery", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewClient("bot-token", "chat", WithBaseURL(server.URL))
	require.NoError(t, err)

	require.NoError(t, client.AnswerCallbackQuery(context.Background(), "cb-1", "Order verified"))
	assert.Equal(t, "cb-1", gotBody["callback_query_id"])
	assert.Equal(t, "Order verified", gotBody["text"])
}
