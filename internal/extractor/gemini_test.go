package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/synapse-edu/scholarflow-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := New(config.ExtractorConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash-exp",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	return client, server
}

func modelReply(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]interface{}{{"text": text}}}},
		},
	}
}

func TestClientExtract(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "system_instruction")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(modelReply(`{"professor_id":"12.345.678-k","rest_days":5}`))
	})

	fields, err := client.Extract(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "12.345.678-k", fields["professor_id"])
	assert.Equal(t, float64(5), fields["rest_days"])
}

func TestClientExtractToleratesCodeFences(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(modelReply("```json\n{\"issuer\":\"COMPIN\"}\n```"))
	})

	fields, err := client.Extract(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "COMPIN", fields["issuer"])
}

func TestClientExtractInvalidJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(modelReply("not json at all"))
	})

	_, err := client.Extract(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestClientExtractModelError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "API key not valid"},
		})
	})

	_, err := client.Extract(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}
