package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.Handler) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(&apiclient.Config{BaseURL: srv.URL}, nil, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := apiclient.New(&apiclient.Config{}, nil, zerolog.Nop())
	require.Error(t, err)

	_, err = apiclient.New(&apiclient.Config{BaseURL: "not-a-url"}, nil, zerolog.Nop())
	require.Error(t, err)
}

func TestClient_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("Get decodes the response", func(t *testing.T) {
		// Arrange
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/widgets/7", r.URL.Path)
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.NotEmpty(t, r.Header.Get(apiclient.RequestIDHeader))
			_ = json.NewEncoder(w).Encode(widget{ID: 7, Name: "stand"})
		}))

		// Act
		got, err := apiclient.Get[widget](ctx, c, "/api/widgets/7", map[string][]string{"page": {"2"}})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, widget{ID: 7, Name: "stand"}, got)
	})

	t.Run("Post sends a JSON body", func(t *testing.T) {
		// Arrange
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in widget
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			in.ID = 99
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(in)
		}))

		// Act
		got, err := apiclient.Post[widget](ctx, c, "/api/widgets", widget{Name: "plate"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 99, got.ID)
		assert.Equal(t, "plate", got.Name)
	})

	t.Run("No content is not an error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		_, err := apiclient.Delete[struct{}](ctx, c, "/api/widgets/1")
		require.NoError(t, err)
	})
}

func TestClient_SessionCookieIsReplayed(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		case "/api/me":
			cookie, err := r.Cookie("session")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(widget{Name: cookie.Value})
		}
	}))

	// Act
	_, err := apiclient.Post[struct{}](ctx, c, "/api/login", nil)
	require.NoError(t, err)
	me, err := apiclient.Get[widget](ctx, c, "/api/me", nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "abc", me.Name)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("HTTP error carries status and detail", func(t *testing.T) {
		// Arrange
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"detail":"在庫が不足しています"}`))
		}))

		// Act
		_, err := apiclient.Post[widget](ctx, c, "/api/orders", widget{})

		// Assert
		require.Error(t, err)
		assert.Equal(t, apiclient.KindHTTP, apiclient.KindOf(err))
		assert.True(t, apiclient.IsStatus(err, http.StatusConflict))
		var apiErr *apiclient.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "在庫が不足しています", apiErr.Message)
		assert.False(t, apiErr.Retryable())
	})

	t.Run("Validation detail list is joined", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":[{"msg":"field required"},{"msg":"invalid postal code"}]}`))
		}))

		_, err := apiclient.Get[widget](ctx, c, "/api/addresses", nil)

		var apiErr *apiclient.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "field required; invalid postal code", apiErr.Message)
	})

	t.Run("Empty error body falls back to status text", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		_, err := apiclient.Get[widget](ctx, c, "/api/products", nil)

		var apiErr *apiclient.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Service Unavailable", apiErr.Message)
		assert.True(t, apiclient.IsRetryable(err))
	})

	t.Run("Network failure", func(t *testing.T) {
		// Arrange: a server that is already gone.
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := apiclient.New(&apiclient.Config{BaseURL: srv.URL}, nil, zerolog.Nop())
		require.NoError(t, err)

		// Act
		_, err = apiclient.Get[widget](ctx, c, "/api/products", nil)

		// Assert
		assert.Equal(t, apiclient.KindNetwork, apiclient.KindOf(err))
		assert.True(t, apiclient.IsRetryable(err))
	})

	t.Run("Undecodable body", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id": "not-a-number"}`))
		}))

		_, err := apiclient.Get[widget](ctx, c, "/api/widgets/1", nil)

		assert.Equal(t, apiclient.KindDecode, apiclient.KindOf(err))
	})

	t.Run("Foreign errors are unknown", func(t *testing.T) {
		assert.Equal(t, apiclient.KindUnknown, apiclient.KindOf(errors.New("boom")))
		assert.Equal(t, 0, apiclient.StatusOf(errors.New("boom")))
	})
}

func TestClient_PostMultipart(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "design", r.FormValue("upload_type"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "logo.ai", hdr.Filename)
		assert.Equal(t, "application/postscript", hdr.Header.Get("Content-Type"))
		_ = json.NewEncoder(w).Encode(widget{ID: len(body), Name: hdr.Filename})
	}))

	// Act
	var got widget
	err := c.PostMultipart(ctx, "/api/uploads", map[string]string{"upload_type": "design"}, apiclient.FilePart{
		FileName:    "logo.ai",
		ContentType: "application/postscript",
		Content:     strings.NewReader("vector-data"),
	}, &got)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, len("vector-data"), got.ID)

	err = c.PostMultipart(ctx, "/api/uploads", nil, apiclient.FilePart{FileName: "x"}, nil)
	assert.Equal(t, apiclient.KindValidation, apiclient.KindOf(err))
}

func TestClient_SetCookies(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("access_token")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(widget{Name: cookie.Value})
	}))

	// Act
	_, errBefore := apiclient.Get[widget](ctx, c, "/api/me", nil)
	c.SetCookies([]*http.Cookie{{Name: "access_token", Value: "jwt"}})
	me, err := apiclient.Get[widget](ctx, c, "/api/me", nil)

	// Assert
	assert.True(t, apiclient.IsStatus(errBefore, http.StatusUnauthorized))
	require.NoError(t, err)
	assert.Equal(t, "jwt", me.Name)
}
