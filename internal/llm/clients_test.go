package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestOllamaClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/generate":
			body := decodeBody(t, r)
			assert.Equal(t, "llama3", body["model"])
			assert.Equal(t, "hello", body["prompt"])
			assert.Equal(t, false, body["stream"])
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"model":"llama3","response":"{\"equation\":\"x\"}","done":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{Provider: ProviderOllama, BaseURL: server.URL + "/"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.Probe(ctx))

	reply, err := client.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"equation":"x"}`, reply)
}

func TestOllamaClient_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":""}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Provider: ProviderOllama, BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "hello")
	assert.ErrorContains(t, err, "no content")
}

func TestHuggingFaceClient(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "list form",
			response: `[{"generated_text":"answer"}]`,
			want:     "answer",
		},
		{
			name:     "object form",
			response: `{"generated_text":"answer"}`,
			want:     "answer",
		},
		{
			name:     "echoed prompt is cut",
			response: `[{"generated_text":"prompt\n{\"insight\":\"x\"}"}]`,
			want:     `{"insight":"x"}`,
		},
		{
			name:     "only the echo",
			response: `[{"generated_text":"prompt"}]`,
			wantErr:  true,
		},
		{
			name:     "empty list",
			response: `[]`,
			wantErr:  true,
		},
		{
			name:     "not json",
			response: `<html>`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/models/org/model-x", r.URL.Path)
				assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
				if r.Method == http.MethodPost {
					body := decodeBody(t, r)
					assert.Equal(t, "prompt", body["inputs"])
					assert.Equal(t, map[string]any{"return_full_text": false}, body["parameters"])
				}
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client, err := NewClient(Config{
				Provider: ProviderHuggingFace,
				BaseURL:  server.URL + "/models",
				Model:    "org/model-x",
				APIKey:   "hf-key",
			})
			require.NoError(t, err)

			require.NoError(t, client.Probe(context.Background()))

			got, err := client.Generate(context.Background(), "prompt")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCohereClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer co-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/v1/generate":
			body := decodeBody(t, r)
			assert.Equal(t, "command-r", body["model"])
			assert.Equal(t, "prompt", body["prompt"])
			assert.InDelta(t, 800, body["max_tokens"], 0.001)
			assert.InDelta(t, 0.5, body["temperature"], 0.001)
			_, _ = w.Write([]byte(`{"id":"1","generations":[{"id":"g1","text":"generated"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Provider:    ProviderCohere,
		BaseURL:     server.URL + "/v1",
		Model:       "command-r",
		APIKey:      "co-key",
		MaxTokens:   800,
		Temperature: 0.5,
	})
	require.NoError(t, err)

	require.NoError(t, client.Probe(context.Background()))

	got, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "generated", got)
}

func TestClients_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("model loading"))
	}))
	defer server.Close()

	configs := []Config{
		{Provider: ProviderOllama, BaseURL: server.URL},
		{Provider: ProviderHuggingFace, BaseURL: server.URL, APIKey: "k"},
		{Provider: ProviderCohere, BaseURL: server.URL, APIKey: "k"},
	}

	for _, cfg := range configs {
		t.Run(cfg.Provider, func(t *testing.T) {
			client, err := NewClient(cfg)
			require.NoError(t, err)

			err = client.Probe(context.Background())
			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
			assert.Equal(t, "model loading", statusErr.Body)

			_, err = client.Generate(context.Background(), "prompt")
			require.ErrorAs(t, err, &statusErr)
		})
	}
}

func TestClients_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"`))
		_, _ = w.Write(bytes.Repeat([]byte("a"), maxResponseBody))
		_, _ = w.Write([]byte(`"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Provider: ProviderOllama, BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestClients_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Provider: ProviderOllama, BaseURL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = client.Probe(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
