package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	apperrors "segunda/internal/errors"
)

// Default configuration values.
const (
	DefaultFeedURL = "https://api.github.com/repos/JacoboBN/SegundaApp/releases/latest"
	DefaultTimeout = 10 * time.Second

	// ChecksumAssetName is the conventional sha256 manifest attached to a release.
	ChecksumAssetName = "checksums.txt"
	// SignatureSuffix is appended to an asset name to find its minisign signature.
	SignatureSuffix = ".minisig"

	maxFeedBytes = 1 << 20
)

// Error variables for specific error conditions.
var (
	ErrNetworkFailure = fmt.Errorf("network request failed")
	ErrRateLimited    = fmt.Errorf("rate limited by release server")
	ErrInvalidVersion = fmt.Errorf("invalid version format")
	ErrInvalidFeed    = fmt.Errorf("invalid release feed")
)

// Checker compares the running version against the release feed.
type Checker struct {
	current     string
	feedURL     string
	assetSuffix string
	timeout     time.Duration
	httpClient  *http.Client
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithFeedURL points the checker at a different release feed.
func WithFeedURL(url string) CheckerOption {
	return func(c *Checker) {
		if strings.TrimSpace(url) != "" {
			c.feedURL = url
		}
	}
}

// WithHTTPClient sets a custom HTTP client for the checker.
func WithHTTPClient(client *http.Client) CheckerOption {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each feed request.
func WithTimeout(timeout time.Duration) CheckerOption {
	return func(c *Checker) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithAssetSuffix overrides the platform executable suffix used to pick an asset.
func WithAssetSuffix(suffix string) CheckerOption {
	return func(c *Checker) {
		if suffix != "" {
			c.assetSuffix = suffix
		}
	}
}

// NewChecker creates a checker for the given running version.
func NewChecker(currentVersion string, opts ...CheckerOption) *Checker {
	c := &Checker{
		current:     strings.TrimSpace(currentVersion),
		feedURL:     DefaultFeedURL,
		assetSuffix: DefaultAssetSuffix(runtime.GOOS, runtime.GOARCH),
		timeout:     DefaultTimeout,
		httpClient:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AssetSuffix returns the suffix the checker matches asset names against.
func (c *Checker) AssetSuffix() string {
	return c.assetSuffix
}

// DefaultAssetSuffix returns the executable suffix published for a platform:
// ".exe" on Windows and "_<goos>_<goarch>" elsewhere.
func DefaultAssetSuffix(goos, goarch string) string {
	if goos == "windows" {
		return ".exe"
	}
	return "_" + goos + "_" + goarch
}

// Check queries the release feed. It never returns an error: every failure
// is reported as CheckFailed with a non-empty reason.
func (c *Checker) Check(ctx context.Context) Result {
	current, err := ParseVersion(c.current)
	if err != nil {
		return CheckFailed{
			Reason: fmt.Sprintf("Development build (%s): update checks are disabled.", displayVersion(c.current)),
			Err:    apperrors.New(apperrors.CodeInvalidVersion, "", err),
		}
	}

	release, err := c.fetchLatestRelease(ctx)
	if err != nil {
		return failure(err)
	}

	tag := strings.TrimSpace(release.TagName)
	latest, err := ParseVersion(tag)
	if err != nil {
		return CheckFailed{
			Reason: fmt.Sprintf("Release tag %q is not a valid version.", tag),
			Err:    apperrors.New(apperrors.CodeInvalidVersion, "", err),
		}
	}

	if !latest.GreaterThan(current) {
		return NoUpdate{Current: current.String(), Latest: latest.String()}
	}

	notes := strings.TrimSpace(release.Body)
	if notes == "" {
		notes = DefaultReleaseNotes
	}
	available := UpdateAvailable{
		Current:      current.String(),
		Latest:       latest.String(),
		ReleaseNotes: notes,
		ReleaseURL:   release.HTMLURL,
	}
	if asset, ok := release.FindAsset(c.assetSuffix); ok {
		available.DownloadURL = asset.BrowserDownloadURL
		available.AssetName = asset.Name
		available.Size = asset.Size
		if sum, ok := release.findNamed(ChecksumAssetName); ok {
			available.ChecksumURL = sum.BrowserDownloadURL
		}
		if sig, ok := release.findNamed(asset.Name + SignatureSuffix); ok {
			available.SignatureURL = sig.BrowserDownloadURL
		}
	}
	return available
}

func (c *Checker) fetchLatestRelease(ctx context.Context) (*Release, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent(c.current))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrNetworkFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetworkFailure, err)
	}
	return DecodeRelease(body)
}

func failure(err error) CheckFailed {
	switch {
	case errors.Is(err, ErrRateLimited):
		return CheckFailed{
			Reason: "The update server rate limit was reached. Try again later.",
			Err:    apperrors.New(apperrors.CodeRateLimited, "", err),
		}
	case errors.Is(err, ErrInvalidFeed):
		return CheckFailed{
			Reason: "The update server returned an invalid response: " + err.Error(),
			Err:    apperrors.New(apperrors.CodeInvalidFeed, "", err),
		}
	default:
		return CheckFailed{
			Reason: "Could not check for updates: " + err.Error(),
			Err:    apperrors.New(apperrors.CodeNetworkFailure, "", err),
		}
	}
}

func displayVersion(v string) string {
	if v == "" {
		return "no version"
	}
	return v
}

func userAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return "segunda/" + version + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
}
