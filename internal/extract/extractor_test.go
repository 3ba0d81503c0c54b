package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docgate-io/docgate/internal/config"
)

func TestMarkdownExtractorPassesTextThrough(t *testing.T) {
	e, err := New(config.ExtractorConfig{Type: "markdown"})
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), strings.NewReader("# Title\n\nbody"), "text/markdown; charset=utf-8")
	require.NoError(t, err)
	require.Equal(t, "# Title\n\nbody", result.Text)
	require.Equal(t, 1.0, result.Confidence)
}

func TestMarkdownExtractorRejectsBinary(t *testing.T) {
	e, err := New(config.ExtractorConfig{Type: "markdown"})
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), strings.NewReader("%PDF-1.4"), "application/pdf")
	require.Error(t, err)
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(config.ExtractorConfig{Type: "clay-tablet"})
	require.Error(t, err)
}

func TestRemoteExtractorRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/extract", r.URL.Path)
		require.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"extracted body","confidence":0.93}`))
	}))
	defer srv.Close()

	e, err := New(config.ExtractorConfig{Type: "remote", Data: map[string]interface{}{
		"endpoint": srv.URL,
		"api_key":  "sekrit",
	}})
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), strings.NewReader("raw bytes"), "application/pdf")
	require.NoError(t, err)
	require.Equal(t, "extracted body", result.Text)
	require.InDelta(t, 0.93, result.Confidence, 0.001)
}

func TestRemoteExtractorEmptyTextIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"   ","confidence":0.1}`))
	}))
	defer srv.Close()

	e, err := New(config.ExtractorConfig{Type: "remote", Data: map[string]interface{}{"endpoint": srv.URL}})
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), strings.NewReader("raw"), "application/pdf")
	require.Error(t, err)
}
