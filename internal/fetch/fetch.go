// Package fetch is a one-shot network file downloader.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"
)

const chunkSize = 4096

// DefaultTimeout bounds the whole download request.
const DefaultTimeout = 10 * time.Second

// filenameRegex extracts the filename from a Content-Disposition header,
// used for hosts that do not carry the name in the URL path.
var filenameRegex = regexp.MustCompile(`filename="(.*?)"`)

// Progress reports download progress. total is -1 when the server does not
// advertise a length.
type Progress func(written, total int64)

// Download fetches url into dir and returns the destination path.
//
// The filename comes from the Content-Disposition header when present,
// otherwise from the unescaped last URL path segment. When the destination
// already exists with the advertised size the download is skipped.
func Download(ctx context.Context, rawURL, dir string, progress Progress) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	client := &http.Client{Timeout: DefaultTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	filename, err := resolveFilename(rawURL, resp.Header.Get("Content-Disposition"))
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, filename)

	total := resp.ContentLength
	if total > 0 {
		if stat, err := os.Stat(dest); err == nil && stat.Size() == total {
			// Already downloaded.
			return dest, nil
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer out.Close()

	var written int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return "", fmt.Errorf("download: %w", werr)
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", fmt.Errorf("download: %w", rerr)
		}
	}
	return dest, nil
}

// resolveFilename picks the destination filename for a download.
func resolveFilename(rawURL, disposition string) (string, error) {
	if m := filenameRegex.FindStringSubmatch(disposition); m != nil {
		return m[1], nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	name, err := url.PathUnescape(path.Base(u.Path))
	if err != nil || name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("download %s: cannot determine filename", rawURL)
	}
	return name, nil
}
