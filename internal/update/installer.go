package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"segunda/internal/debug"
	apperrors "segunda/internal/errors"
)

// ErrAssetNotFound means the release has no asset for this platform.
var ErrAssetNotFound = fmt.Errorf("update file not found")

const maxCompanionBytes = 1 << 16

// Installer downloads an UpdateAvailable release and verifies it.
type Installer struct {
	downloader *Downloader
	httpClient *http.Client
	publicKey  string
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithDownloader replaces the default Downloader.
func WithDownloader(d *Downloader) InstallerOption {
	return func(i *Installer) {
		if d != nil {
			i.downloader = d
		}
	}
}

// WithPublicKey requires a minisign signature made with key.
func WithPublicKey(key string) InstallerOption {
	return func(i *Installer) {
		i.publicKey = key
	}
}

// WithCompanionClient sets the client used to fetch checksum and signature files.
func WithCompanionClient(client *http.Client) InstallerOption {
	return func(i *Installer) {
		if client != nil {
			i.httpClient = client
		}
	}
}

// NewInstaller creates an Installer.
func NewInstaller(opts ...InstallerOption) *Installer {
	i := &Installer{
		downloader: NewDownloader(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Prepare downloads the release asset and verifies it against any published
// checksum and, when a public key is configured, its minisign signature.
// It returns the path of a verified file ready to replace the executable.
func (i *Installer) Prepare(ctx context.Context, u UpdateAvailable, progress ProgressFunc) (string, error) {
	if u.DownloadURL == "" {
		return "", apperrors.New(apperrors.CodeAssetNotFound, "Update file not found.", ErrAssetNotFound)
	}

	path, err := i.downloader.Download(ctx, u.DownloadURL, progress)
	if err != nil {
		return "", err
	}
	if err := i.verify(ctx, path, u); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func (i *Installer) verify(ctx context.Context, path string, u UpdateAvailable) error {
	if u.ChecksumURL != "" {
		manifest, err := i.fetchCompanion(ctx, u.ChecksumURL)
		if err != nil {
			return apperrors.New(apperrors.CodeVerificationFailed, "", fmt.Errorf("fetch checksums: %w", err))
		}
		expected, err := ExtractChecksum(manifest, u.AssetName)
		if err != nil {
			return apperrors.New(apperrors.CodeVerificationFailed, "", err)
		}
		if err := VerifyChecksum(path, expected); err != nil {
			return err
		}
		debug.Logf("update: checksum verified for %s", u.AssetName)
	}

	if i.publicKey == "" {
		return nil
	}
	if u.SignatureURL == "" {
		return apperrors.New(apperrors.CodeVerificationFailed,
			fmt.Sprintf("release %s has no signature for %s", u.Latest, u.AssetName), nil)
	}
	sig, err := i.fetchCompanion(ctx, u.SignatureURL)
	if err != nil {
		return apperrors.New(apperrors.CodeVerificationFailed, "", fmt.Errorf("fetch signature: %w", err))
	}
	//nolint:gosec // G304: path is a download this process created
	content, err := os.ReadFile(path)
	if err != nil {
		return apperrors.New(apperrors.CodeVerificationFailed, "", fmt.Errorf("read download: %w", err))
	}
	if err := VerifySignature(content, string(sig), i.publicKey); err != nil {
		return err
	}
	debug.Logf("update: signature verified for %s", u.AssetName)
	return nil
}

func (i *Installer) fetchCompanion(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent(""))
	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrNetworkFailure, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCompanionBytes))
}
