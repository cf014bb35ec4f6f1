package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibreTranslator_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req libreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hola", req.Q)
		assert.Equal(t, "es", req.Source)
		assert.Equal(t, "en", req.Target)
		assert.Equal(t, "secret", req.APIKey)

		_ = json.NewEncoder(w).Encode(libreResponse{TranslatedText: "hello"})
	}))
	defer srv.Close()

	tr := NewLibreTranslator(srv.URL+"/", "secret", time.Second)
	out, err := tr.Translate(context.Background(), "hola", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestLibreTranslator_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(libreResponse{TranslatedText: "hello"})
	}))
	defer srv.Close()

	tr := NewLibreTranslator(srv.URL, "", time.Second, WithRetry(3, time.Millisecond))
	out, err := tr.Translate(context.Background(), "hola", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, int32(3), hits.Load())
}

func TestLibreTranslator_GivesUpAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewLibreTranslator(srv.URL, "", time.Second, WithRetry(2, time.Millisecond))
	_, err := tr.Translate(context.Background(), "hola", "es", "en")
	assert.ErrorIs(t, err, ErrTranslateFailed)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(2), hits.Load())
}

func TestLibreTranslator_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(libreResponse{Error: "xx is not supported"})
	}))
	defer srv.Close()

	tr := NewLibreTranslator(srv.URL, "", time.Second, WithRetry(3, time.Millisecond))
	_, err := tr.Translate(context.Background(), "hola", "xx", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xx is not supported")
	assert.Equal(t, int32(1), hits.Load())
}

func TestLibreTranslator_EmptyTranslation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(libreResponse{TranslatedText: "  "})
	}))
	defer srv.Close()

	tr := NewLibreTranslator(srv.URL, "", time.Second)
	_, err := tr.Translate(context.Background(), "hola", "es", "en")
	assert.ErrorIs(t, err, ErrEmptyTranslation)
}

func TestLibreTranslator_HealthCheck(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/languages", r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tr := NewLibreTranslator(srv.URL, "", time.Second)
	assert.True(t, tr.HealthCheck(context.Background()))

	healthy.Store(false)
	assert.False(t, tr.HealthCheck(context.Background()))
}
