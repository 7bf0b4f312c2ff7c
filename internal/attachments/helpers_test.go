package attachments

import (
	"context"
	"errors"
	"io"
	"strings"

	"confattach/internal/confluence"
)

const testBaseURL = "https://wiki.example.com"

type fakeSource struct {
	raw     []confluence.RawAttachment
	listErr error
	bodies  map[string]string
	openErr map[string]error
	opened  []string
}

func (f *fakeSource) GetAttachments(_ context.Context, _ string) ([]confluence.RawAttachment, error) {
	return f.raw, f.listErr
}

func (f *fakeSource) BaseURL() string { return testBaseURL }

func (f *fakeSource) Open(_ context.Context, downloadURL string) (io.ReadCloser, error) {
	f.opened = append(f.opened, downloadURL)
	if err := f.openErr[downloadURL]; err != nil {
		return nil, err
	}
	body, ok := f.bodies[downloadURL]
	if !ok {
		return nil, errors.New("unexpected url " + downloadURL)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func rawAttachment(id, title, mediaType string) confluence.RawAttachment {
	var r confluence.RawAttachment
	r.ID = id
	r.Title = title
	r.Metadata.MediaType = mediaType
	r.Links.Download = "/download/attachments/100/" + title
	return r
}

func downloadURL(title string) string {
	return testBaseURL + "/download/attachments/100/" + title
}
