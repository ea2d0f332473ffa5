// Package update checks the release feed and fetches new builds.
//
// This package handles:
//   - Querying the release feed for the latest published build
//   - Comparing dot-separated integer versions after zero-padding
//   - Picking the asset that matches the platform executable suffix
//   - Streaming the asset to a temporary file with progress reporting
//   - Verifying the download against checksums and minisign signatures
//
// The package is isolated from UI concerns. Check returns a Result
// (NoUpdate, UpdateAvailable or CheckFailed) that the UI can present
// however it wants; replacing the running binary is left to the relaunch
// package.
//
// Example usage:
//
//	checker := update.NewChecker(currentVersion)
//	switch r := checker.Check(ctx).(type) {
//	case update.UpdateAvailable:
//	    path, err := update.NewInstaller().Prepare(ctx, r, nil)
//	    // hand path to a relaunch helper
//	case update.CheckFailed:
//	    // show r.Reason
//	}
package update
