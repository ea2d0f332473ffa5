package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StartupLogPath returns the plain-text startup log that sits next to the
// executable: "<dir>/<name without .exe>.log".
func StartupLogPath(exePath string) string {
	base := strings.TrimSuffix(filepath.Base(exePath), ".exe")
	return filepath.Join(filepath.Dir(exePath), base+".log")
}

// RecordStartup appends one "timestamp pid" line to the startup log next to
// exePath. The log is append-only and never rotated.
func RecordStartup(exePath string, now time.Time, pid int) error {
	path := StartupLogPath(exePath)
	//nolint:gosec // G304: path is derived from the running executable
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open startup log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintf(f, "%s started pid=%d\n", now.Format(time.RFC3339), pid); err != nil {
		return fmt.Errorf("write startup log: %w", err)
	}
	return nil
}
