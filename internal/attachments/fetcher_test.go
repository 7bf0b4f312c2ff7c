package attachments

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confattach/internal/confluence"
	"confattach/internal/models"
)

func newFetcher(src *fakeSource, opts ...FetcherOption) *Fetcher {
	return NewFetcher(NewCatalog(src), src, opts...)
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestDownloadOne_WritesFileAndCreatesParents(t *testing.T) {
	content := strings.Repeat("x", 5000)
	src := &fakeSource{bodies: map[string]string{downloadURL("big.png"): content}}
	target := filepath.Join(t.TempDir(), "a", "b", "big.png")

	result, err := newFetcher(src, WithChunkSize(1024)).DownloadOne(context.Background(), "att9", downloadURL("big.png"), target)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, "att9", result.AttachmentID)
	assert.Equal(t, target, result.OutputPath)
	require.NotNil(t, result.FileSize)
	assert.EqualValues(t, len(content), *result.FileSize)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestDownloadOne_StatusFailureWritesNothing(t *testing.T) {
	url := downloadURL("gone.png")
	src := &fakeSource{openErr: map[string]error{url: &confluence.StatusError{StatusCode: 404, Status: "404 Not Found", URL: url}}}
	dir := filepath.Join(t.TempDir(), "never")

	_, err := newFetcher(src).DownloadOne(context.Background(), "1", url, filepath.Join(dir, "gone.png"))

	var statusErr *confluence.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.NoDirExists(t, dir)
}

type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

type readerOpener struct{ body io.Reader }

func (o readerOpener) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(o.body), nil
}

func TestDownloadOne_RemovesPartialFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "broken.png")
	fetcher := NewFetcher(NewCatalog(&fakeSource{}), readerOpener{body: &failingReader{}})

	_, err := fetcher.DownloadOne(context.Background(), "1", "ignored", target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoFileExists(t, target)
}

func TestDownloadFiltered_ImagesAndDiagrams(t *testing.T) {
	src := &fakeSource{
		raw: []confluence.RawAttachment{
			rawAttachment("1", "diagram1", models.DiagramMediaType),
			rawAttachment("2", "photo.png", "image/png"),
			rawAttachment("3", "~tmp", ""),
		},
		bodies: map[string]string{
			downloadURL("diagram1"):  "<mxfile/>",
			downloadURL("photo.png"): "PNG",
		},
	}
	out := t.TempDir()

	results, err := newFetcher(src).DownloadFiltered(context.Background(), "100", out, DefaultFilterOptions())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].AttachmentID)
	assert.Equal(t, "diagram1", results[0].Title)
	assert.Equal(t, models.StatusSuccess, results[0].Status)
	assert.Equal(t, filepath.Join(out, "diagrams", "diagram1.drawio"), results[0].OutputPath)
	assert.Equal(t, "2", results[1].AttachmentID)
	assert.Equal(t, models.StatusSuccess, results[1].Status)
	assert.Equal(t, filepath.Join(out, "photo.png"), results[1].OutputPath)

	data, err := os.ReadFile(filepath.Join(out, "diagrams", "diagram1.drawio"))
	require.NoError(t, err)
	assert.Equal(t, "<mxfile/>", string(data))
	assert.FileExists(t, filepath.Join(out, "photo.png"))
}

func TestDownloadFiltered_EverythingFilteredWritesNoFiles(t *testing.T) {
	src := &fakeSource{raw: []confluence.RawAttachment{
		rawAttachment("1", "a.png", "image/png"),
		rawAttachment("2", "flow", models.DiagramMediaType),
		rawAttachment("3", "b.jpg", "image/jpeg"),
	}}
	out := t.TempDir()

	results, err := newFetcher(src).DownloadFiltered(context.Background(), "100", out, FilterOptions{})
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, models.StatusSkipped, r.Status)
	}
	assert.Equal(t, string(ReasonImagesFiltered), results[0].Reason)
	assert.Equal(t, string(ReasonDiagramsFiltered), results[1].Reason)
	assert.Empty(t, src.opened)
	assert.Equal(t, 0, countFiles(t, out))
	assert.NoDirExists(t, filepath.Join(out, "diagrams"))
}

func TestDownloadFiltered_ContinuesAfterFailure(t *testing.T) {
	src := &fakeSource{
		raw: []confluence.RawAttachment{
			rawAttachment("1", "one.png", "image/png"),
			rawAttachment("2", "two.png", "image/png"),
			rawAttachment("3", "three.png", "image/png"),
		},
		bodies: map[string]string{
			downloadURL("one.png"):   "1",
			downloadURL("three.png"): "3",
		},
		openErr: map[string]error{downloadURL("two.png"): errors.New("dial tcp: connection refused")},
	}

	results, err := newFetcher(src).DownloadFiltered(context.Background(), "100", t.TempDir(), DefaultFilterOptions())
	require.NoError(t, err)

	require.Len(t, results, 3)
	summary := models.Summarize(results)
	assert.Equal(t, 2, summary.Downloaded)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, models.StatusError, results[1].Status)
	assert.Equal(t, "2", results[1].AttachmentID)
	assert.Equal(t, "two.png", results[1].Title)
	assert.Contains(t, results[1].Error, "connection refused")
}

func TestDownloadFiltered_SkipsUnsupportedAndKeepsOrder(t *testing.T) {
	src := &fakeSource{
		raw: []confluence.RawAttachment{
			rawAttachment("1", "manual.pdf", "application/pdf"),
			rawAttachment("2", "pic.gif", "image/gif"),
			rawAttachment("3", "flow.drawio", models.DiagramMediaType),
		},
		bodies: map[string]string{downloadURL("pic.gif"): "GIF"},
	}
	out := t.TempDir()

	results, err := newFetcher(src).DownloadFiltered(context.Background(), "100", out, FilterOptions{Images: true})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, models.StatusSkipped, results[0].Status)
	assert.Equal(t, string(ReasonUnsupportedType), results[0].Reason)
	assert.Equal(t, models.StatusSuccess, results[1].Status)
	assert.Equal(t, models.StatusSkipped, results[2].Status)
	assert.Equal(t, string(ReasonDiagramsFiltered), results[2].Reason)
}

func TestDownloadFiltered_CreatesDiagramsDirEagerly(t *testing.T) {
	src := &fakeSource{
		raw:    []confluence.RawAttachment{rawAttachment("1", "p.png", "image/png")},
		bodies: map[string]string{downloadURL("p.png"): "P"},
	}
	out := filepath.Join(t.TempDir(), "fresh")

	_, err := newFetcher(src).DownloadFiltered(context.Background(), "100", out, DefaultFilterOptions())
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(out, "diagrams"))
}

func TestDownloadFiltered_EmptyCatalog(t *testing.T) {
	out := filepath.Join(t.TempDir(), "untouched")

	results, err := newFetcher(&fakeSource{}).DownloadFiltered(context.Background(), "100", out, DefaultFilterOptions())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoDirExists(t, out)
}

func TestDownloadFiltered_SetupFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	src := &fakeSource{raw: []confluence.RawAttachment{rawAttachment("1", "p.png", "image/png")}}

	_, err := newFetcher(src).DownloadFiltered(context.Background(), "100", filepath.Join(blocker, "out"), DefaultFilterOptions())

	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)
}

func TestDownloadFiltered_ListingFailure(t *testing.T) {
	src := &fakeSource{listErr: errors.New("401 Unauthorized")}

	_, err := newFetcher(src).DownloadFiltered(context.Background(), "100", t.TempDir(), DefaultFilterOptions())

	var listErr *ListError
	require.ErrorAs(t, err, &listErr)
}

func TestDownloadOne_SlowStreamFinishesPastClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 10; i++ {
			_, _ = w.Write([]byte(strings.Repeat("d", 1024)))
			flusher.Flush()
			time.Sleep(50 * time.Millisecond)
		}
	}))
	defer srv.Close()

	client := confluence.NewClient(srv.URL, "t", confluence.WithTimeout(200*time.Millisecond))
	fetcher := NewFetcher(NewCatalog(client), client)
	target := filepath.Join(t.TempDir(), "large.png")

	result, err := fetcher.DownloadOne(context.Background(), "9", srv.URL+"/download/large.png", target)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, result.Status)
	require.NotNil(t, result.FileSize)
	assert.EqualValues(t, 10*1024, *result.FileSize)
}
