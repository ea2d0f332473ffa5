package update

// DefaultReleaseNotes is shown when a release carries no body.
const DefaultReleaseNotes = "No release notes."

// Result is the outcome of a single check. It is one of NoUpdate,
// UpdateAvailable or CheckFailed.
type Result interface {
	isResult()
}

// NoUpdate means the running version is current.
type NoUpdate struct {
	Current string
	Latest  string
}

// UpdateAvailable describes a newer release. DownloadURL is empty when no
// asset matched the platform suffix.
type UpdateAvailable struct {
	Current      string
	Latest       string
	DownloadURL  string
	AssetName    string
	Size         int64
	ReleaseNotes string
	ReleaseURL   string
	ChecksumURL  string
	SignatureURL string
}

// CheckFailed carries a user-facing reason and the underlying error.
type CheckFailed struct {
	Reason string
	Err    error
}

func (NoUpdate) isResult()        {}
func (UpdateAvailable) isResult() {}
func (CheckFailed) isResult()     {}

// Error implements error so a CheckFailed can be logged or wrapped directly.
func (f CheckFailed) Error() string {
	return f.Reason
}

// Unwrap returns the underlying error.
func (f CheckFailed) Unwrap() error {
	return f.Err
}

// ReleaseInfo is a flattened view of a Result.
type ReleaseInfo struct {
	Available    bool
	Version      string
	DownloadURL  string
	ReleaseNotes string
	Error        string
}

// Summarize flattens r into a ReleaseInfo.
func Summarize(r Result) ReleaseInfo {
	switch v := r.(type) {
	case UpdateAvailable:
		return ReleaseInfo{
			Available:    true,
			Version:      v.Latest,
			DownloadURL:  v.DownloadURL,
			ReleaseNotes: v.ReleaseNotes,
		}
	case NoUpdate:
		return ReleaseInfo{Version: v.Latest}
	case CheckFailed:
		return ReleaseInfo{Error: v.Reason}
	default:
		return ReleaseInfo{Error: "unknown check result"}
	}
}
