package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"runtime"

	apperrors "segunda/internal/errors"
)

// ErrTruncated means the body ended before Content-Length bytes arrived.
var ErrTruncated = fmt.Errorf("download truncated")

// Progress reports how much of a download has been written.
type Progress struct {
	Percent int
	Written int64
	Total   int64
}

// ProgressFunc receives progress updates. It is only called when the
// server announces a Content-Length; Percent never decreases and the final
// call of a complete download reports 100.
type ProgressFunc func(Progress)

// Downloader streams release assets to temporary files.
type Downloader struct {
	httpClient *http.Client
	tempDir    string
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadClient sets the HTTP client used for downloads.
func WithDownloadClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithTempDir places downloads in dir instead of the system temp directory.
func WithTempDir(dir string) DownloaderOption {
	return func(d *Downloader) {
		d.tempDir = dir
	}
}

// NewDownloader creates a Downloader. Downloads have no overall timeout;
// cancel the context instead.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download streams rawURL into a uniquely named temp file and returns its
// path. On any failure the partial file is removed and the path is empty.
func (d *Downloader) Download(ctx context.Context, rawURL string, progress ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", apperrors.New(apperrors.CodeDownloadFailed, "invalid download URL", err)
	}
	req.Header.Set("User-Agent", userAgent(""))
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", d.wrapErr(ctx, fmt.Errorf("%w: %v", ErrNetworkFailure, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.New(apperrors.CodeDownloadFailed,
			fmt.Sprintf("download failed with status %d", resp.StatusCode), ErrNetworkFailure)
	}

	f, err := os.CreateTemp(d.tempDir, "segunda-update-*"+assetExt(rawURL))
	if err != nil {
		return "", apperrors.New(apperrors.CodePermissionDenied, "cannot create temporary file", err)
	}
	tmpPath := f.Name()
	success := false
	defer func() {
		if !success {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	reader := &progressReader{
		r:        resp.Body,
		total:    resp.ContentLength,
		progress: progress,
		last:     -1,
	}
	written, err := io.Copy(f, reader)
	if err != nil {
		return "", d.wrapErr(ctx, err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return "", apperrors.New(apperrors.CodeDownloadFailed,
			fmt.Sprintf("download truncated at %d of %d bytes", written, resp.ContentLength), ErrTruncated)
	}
	if err := f.Close(); err != nil {
		return "", apperrors.New(apperrors.CodeDownloadFailed, "cannot finish writing download", err)
	}

	if runtime.GOOS != "windows" {
		//nolint:gosec // G302: the download is an executable
		if err := os.Chmod(tmpPath, 0755); err != nil {
			return "", apperrors.New(apperrors.CodePermissionDenied, "cannot mark download executable", err)
		}
	}

	success = true
	return tmpPath, nil
}

func (d *Downloader) wrapErr(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return apperrors.New(apperrors.CodeCancelled, "download cancelled", err)
	}
	return apperrors.New(apperrors.CodeDownloadFailed, "", err)
}

// assetExt keeps ".exe" style extensions so Windows can launch the file.
func assetExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := path.Ext(u.Path)
	if len(ext) > 5 {
		return ""
	}
	return ext
}

type progressReader struct {
	r        io.Reader
	total    int64
	written  int64
	last     int
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.progress == nil || p.total <= 0 {
		return
	}
	written := p.written
	if written > p.total {
		written = p.total
	}
	percent := int(written * 100 / p.total)
	if percent == p.last {
		return
	}
	p.last = percent
	p.progress(Progress{Percent: percent, Written: p.written, Total: p.total})
}
