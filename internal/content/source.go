// Package content fetches the DayEntry document once at startup.
package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// MaxDocumentSize bounds how much of a content document is read
const MaxDocumentSize = 4 << 20

// Source yields the raw content document
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// NewSource picks an HTTP source for http(s) URLs and a file source otherwise
func NewSource(location string, client *http.Client) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &HTTPSource{URL: location, Client: client}
	}
	return FileSource(location)
}

// FileSource reads the document from disk
type FileSource string

// Fetch reads the file
func (f FileSource) Fetch(ctx context.Context) ([]byte, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, MaxDocumentSize))
}

func (f FileSource) String() string {
	return string(f)
}

// HTTPSource fetches the document with a GET request
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Fetch performs the request; any non-2xx status is an error
func (h *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize))
}

func (h *HTTPSource) String() string {
	return h.URL
}
