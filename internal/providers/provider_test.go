package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value": 42}`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	get := func(t *testing.T, ctx context.Context, path string) (int, error) {
		t.Helper()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+path, nil)
		require.NoError(t, err)
		var body struct {
			Value int `json:"value"`
		}
		err = GetJSON(server.Client(), "test", req, &body)
		return body.Value, err
	}

	t.Run("Decodes body", func(t *testing.T) {
		v, err := get(t, context.Background(), "/ok")
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	cases := []struct {
		path string
		kind Kind
	}{
		{"/missing", KindNotFound},
		{"/broken", KindUnavailable},
		{"/garbage", KindDecode},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			_, err := get(t, context.Background(), tc.path)
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}

	t.Run("Deadline becomes timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := get(t, ctx, "/slow")
		assert.Equal(t, KindTimeout, KindOf(err))
	})
}

func TestFetchError(t *testing.T) {
	inner := errors.New("dial failed")
	err := NewError("tmdb", KindUnavailable, inner)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "tmdb: unavailable: dial failed", err.Error())
	assert.Equal(t, Kind(""), KindOf(inner))
	assert.True(t, IsNotFound(NewError("tmdb", KindNotFound, nil)))
}
