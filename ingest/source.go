package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ByteSource yields UTF-8 text from an ingestion input: a file, an inline
// string, or a remote URL. It is the "opaque byte source" external
// collaborator of spec §1/§4.1.
type ByteSource interface {
	Load(ctx context.Context) (string, error)
}

// InlineSource wraps a literal string (the -ip flag's value).
type InlineSource string

func (s InlineSource) Load(context.Context) (string, error) { return string(s), nil }

// FileSource reads a file path (the -f flag).
type FileSource string

func (s FileSource) Load(context.Context) (string, error) {
	b, err := os.ReadFile(string(s))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", string(s), err)
	}
	return string(b), nil
}

// URLSource fetches a remote byte source (-ipurl/-urlist) over HTTP, with
// bounded exponential-backoff retries on transient fetch failures.
//
// Grounded on doublezerod's internal/probing.DefaultListenFuncWithRetry,
// which wraps a fallible start-up operation in backoff.Retry with a
// context-bound exponential backoff. Retries apply only to this
// config-time fetch, never to individual probes (spec §7).
type URLSource struct {
	URL    string
	Client *http.Client
}

func (s URLSource) Load(ctx context.Context) (string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 3 * time.Second
	b.MaxElapsedTime = 20 * time.Second
	bo := backoff.WithContext(b, ctx)

	var body string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err // transient: retry
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("fetch %s: HTTP %d", s.URL, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("fetch %s: HTTP %d", s.URL, resp.StatusCode))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = string(data)
		return nil
	}

	if err := backoff.Retry(op, bo); err != nil {
		return "", fmt.Errorf("load byte source %s: %w", s.URL, err)
	}
	return body, nil
}
