package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResend(t *testing.T, handler http.HandlerFunc) *ResendClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewResendClient(ResendConfig{
		APIKey:        "re_test",
		From:          "School Chow <no-reply@schoolchow.com>",
		ReplyTo:       "support@schoolchow.com",
		MessageStream: "outbound",
		Endpoint:      srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestSendReturnsMessageID(t *testing.T) {
	client := newTestResend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		var body sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.com", body.To)
		assert.Equal(t, "Verify your email", body.Subject)
		assert.Equal(t, "auto-generated", body.Headers["Auto-Submitted"])
		assert.Equal(t, "outbound", body.MessageStream)

		_ = json.NewEncoder(w).Encode(sendResponse{ID: "msg_123"})
	})

	id, err := client.Send(context.Background(), Message{
		To:      "a@x.com",
		Subject: "Verify your email",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_123", id)
}

func TestSendSurfacesProviderErrors(t *testing.T) {
	client := newTestResend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"domain not verified"}`))
	})

	_, err := client.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "domain not verified")
}

func TestSendValidatesMessage(t *testing.T) {
	client := newTestResend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid message")
	})

	_, err := client.Send(context.Background(), Message{To: "a@x.com"})
	assert.Error(t, err)
}
