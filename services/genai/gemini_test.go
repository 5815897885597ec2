package genai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantText      string
		wantErr       string
		wantRetryable *bool
	}{
		{
			name:     "ok",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"there"}]}}]}`,
			wantText: "Hello there",
		},
		{
			name:    "no candidates",
			status:  http.StatusOK,
			body:    `{"candidates":[]}`,
			wantErr: "gemini returned no text",
		},
		{
			name:          "invalid model",
			status:        http.StatusNotFound,
			body:          `{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`,
			wantErr:       "gemini API error: model not found (code: 404, status: NOT_FOUND)",
			wantRetryable: boolPtr(false),
		},
		{
			name:          "quota",
			status:        http.StatusTooManyRequests,
			body:          `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
			wantErr:       "gemini API error: quota exceeded (code: 429, status: RESOURCE_EXHAUSTED)",
			wantRetryable: boolPtr(true),
		},
		{
			name:          "bad gateway without body",
			status:        http.StatusBadGateway,
			body:          `<html>oops</html>`,
			wantErr:       "gemini API error: Bad Gateway (code: 502, status: )",
			wantRetryable: boolPtr(true),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotPrompt, gotKey, gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotKey = r.URL.Query().Get("key")
				data, _ := io.ReadAll(r.Body)
				var req generateRequest
				_ = sonic.Unmarshal(data, &req)
				if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
					gotPrompt = req.Contents[0].Parts[0].Text
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(ClientOptions{BaseURL: srv.URL + "/", APIKey: "k3y", Model: "gemini-test"})
			text, err := client.Generate(context.Background(), "what is DSA?")

			assert.Equal(t, "/models/gemini-test:generateContent", gotPath)
			assert.Equal(t, "k3y", gotKey)
			assert.Equal(t, "what is DSA?", gotPrompt)

			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				if tc.wantRetryable != nil {
					apiErr, ok := err.(*APIError)
					require.True(t, ok)
					assert.Equal(t, *tc.wantRetryable, apiErr.Retryable())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantText, text)
		})
	}
}

func TestClient_GenerateCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(ClientOptions{BaseURL: srv.URL}).Generate(ctx, "hi")
	assert.Error(t, err)
}

func boolPtr(b bool) *bool { return &b }
