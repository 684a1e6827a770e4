package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-conseil/tenderflow/internal/common"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Provider: "openai"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMissingConfig))
}

func TestNewClientRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Provider: "carrier-pigeon", APIKey: "k"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidConfig))
}

func TestOpenAIExtractField(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotRequest map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  AO-2025-042\n"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	answer, err := client.ExtractField(context.Background(), "Référence", "Quel est le numéro de référence ?", "AVIS ...")
	require.NoError(t, err)
	assert.Equal(t, "AO-2025-042", answer)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o", gotRequest["model"])

	messages, ok := gotRequest["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system, ok := messages[0].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, system["content"], "Non spécifié")
	user, ok := messages[1].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, user["content"], "Référence")
	assert.Contains(t, user["content"], "AVIS ...")
}

func TestOpenAIExtractFieldRateLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limit"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ExtractField(context.Background(), "Référence", "prompt", "doc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRateLimit))
}

func TestOpenAIExtractFieldServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ExtractField(context.Background(), "Référence", "prompt", "doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestOpenAIExtractFieldNoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ExtractField(context.Background(), "Référence", "prompt", "doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion choices")
}
