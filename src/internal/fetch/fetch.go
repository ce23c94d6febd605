package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DownloadError reports a failed HTTP download. Status is zero when the
// failure happened below the HTTP layer, Attempts is zero when no retrying
// was involved.
type DownloadError struct {
	URL      string
	Status   int
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	switch {
	case e.Attempts > 0:
		return fmt.Sprintf("download %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
	case e.Status > 0:
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("download %s: %v", e.URL, e.Err)
	}
}

func (e *DownloadError) Unwrap() error { return e.Err }

// EnsureLocal guarantees a local copy of url at dest. An existing regular
// file at dest is a cache hit and skips the network entirely, which keeps
// re-runs after a partial failure cheap. No retrying: the convert pipeline
// treats a failed download as fatal.
func EnsureLocal(ctx context.Context, client *http.Client, url, dest string) error {
	if fileExists(dest) {
		return nil
	}
	return download(ctx, client, url, dest)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// download streams the response body straight to dest. A partial file is
// removed on failure so the cache check never sees a truncated download.
func download(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DownloadError{URL: url, Status: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written == 0 {
		err = fmt.Errorf("empty response body")
	}
	if err != nil {
		os.Remove(dest)
		return &DownloadError{URL: url, Err: err}
	}
	return nil
}
