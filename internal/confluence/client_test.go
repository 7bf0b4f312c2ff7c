package confluence

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAttachments_SendsTokenAndDecodes(t *testing.T) {
	var gotAuth, gotPath, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		_, _ = io.WriteString(w, `{"results":[{"id":"att1","title":"photo.png",
			"metadata":{"mediaType":"image/png"},"extensions":{"fileSize":2048},
			"_links":{"download":"/download/attachments/42/photo.png"}}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", " secret ", WithPageLimit(25))
	got, err := client.GetAttachments(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "/rest/api/content/42/child/attachment", gotPath)
	assert.Equal(t, "25", gotLimit)
	require.Len(t, got, 1)
	assert.Equal(t, "att1", got[0].ID)
	assert.Equal(t, "image/png", got[0].Metadata.MediaType)
	assert.EqualValues(t, 2048, got[0].Extensions.FileSize)
	assert.Equal(t, "/download/attachments/42/photo.png", got[0].Links.Download)
}

func TestGetAttachments_FollowsNextLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("start") {
		case "0":
			_, _ = io.WriteString(w, `{"results":[{"id":"a","title":"a.png"}],
				"_links":{"next":"/rest/api/content/7/child/attachment?limit=1&start=1"}}`)
		case "1":
			_, _ = io.WriteString(w, `{"results":[{"id":"b","title":"b.png"}],"_links":{}}`)
		default:
			t.Errorf("unexpected start %q", r.URL.Query().Get("start"))
		}
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "t", WithPageLimit(1)).GetAttachments(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestGetAttachments_MissingResultsIsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"empty body":     "",
		"no results key": `{"size":0}`,
		"null results":   `{"results":null}`,
		"empty results":  `{"results":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			got, err := NewClient(srv.URL, "t").GetAttachments(context.Background(), "1")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestGetAttachments_Failures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "bad").GetAttachments(context.Background(), "1")
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	})

	t.Run("html body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html>login</html>")
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "t").GetAttachments(context.Background(), "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})
}

func TestOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "payload")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")

	body, err := client.Open(context.Background(), srv.URL+"/file.png")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "payload", string(data))

	_, err = client.Open(context.Background(), srv.URL+"/missing")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "/missing")

	_, err = NewClient(srv.URL, "other").Open(context.Background(), srv.URL+"/file.png")
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

// slowBody streams chunks of 1 KiB, flushing one every delay.
func slowBody(chunks int, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for i := 0; i < chunks; i++ {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
			_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
			flusher.Flush()
		}
	}
}

func TestOpen_StreamOutlivesTimeout(t *testing.T) {
	srv := httptest.NewServer(slowBody(10, 50*time.Millisecond))
	defer srv.Close()

	body, err := NewClient(srv.URL, "t", WithTimeout(200*time.Millisecond)).
		Open(context.Background(), srv.URL+"/big.png")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Len(t, data, 10*1024)
}

func TestOpen_ContextCancelsStream(t *testing.T) {
	srv := httptest.NewServer(slowBody(20, 50*time.Millisecond))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	body, err := NewClient(srv.URL, "t").Open(ctx, srv.URL+"/big.png")
	require.NoError(t, err)
	defer body.Close()

	_, err = io.ReadAll(body)
	require.Error(t, err)
}

func TestTimeoutBoundsHeadersAndListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t", WithTimeout(100*time.Millisecond))

	start := time.Now()
	_, err := client.Open(context.Background(), srv.URL+"/stalled.png")
	require.Error(t, err)

	_, err = client.GetAttachments(context.Background(), "1")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
