package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	defaultPageLimit   = 50
)

// Client talks to the Confluence REST API with a personal access token. The
// same session is used for metadata listing and binary downloads.
//
// The timeout bounds connecting, waiting for response headers and each
// listing request as a whole. Download bodies are streamed without a
// deadline of their own; the caller's context governs them.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
	pageLimit int
	timeout   time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithPageLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.pageLimit = limit
		}
	}
}

// NewClient creates a client for the instance at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		authToken: strings.TrimSpace(token),
		pageLimit: defaultPageLimit,
		timeout:   defaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Transport == nil {
		c.http.Transport = newTransport(c.timeout)
	}
	return c
}

func newTransport(timeout time.Duration) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.ResponseHeaderTimeout = timeout
	return t
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAttachments returns the raw attachment listing of a page, following
// pagination links. A body without a results collection ends the listing.
func (c *Client) GetAttachments(ctx context.Context, pageID string) ([]RawAttachment, error) {
	query := url.Values{}
	query.Set("start", "0")
	query.Set("limit", strconv.Itoa(c.pageLimit))
	next := "/rest/api/content/" + url.PathEscape(pageID) + "/child/attachment?" + query.Encode()

	var all []RawAttachment
	for next != "" {
		page, err := c.getPage(ctx, c.baseURL+next)
		if err != nil {
			return nil, err
		}
		if page == nil || page.Results == nil || len(*page.Results) == 0 {
			break
		}
		all = append(all, *page.Results...)
		next = page.Links.Next
	}
	return all, nil
}

func (c *Client) getPage(ctx context.Context, endpoint string) (*attachmentsPage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: endpoint}
	}

	var page attachmentsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode attachment listing: %w", err)
	}
	return &page, nil
}

// Open performs an authenticated GET and returns the response body for
// streaming. The caller must close it.
func (c *Client) Open(ctx context.Context, downloadURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", downloadURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: downloadURL}
	}
	return resp.Body, nil
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}
