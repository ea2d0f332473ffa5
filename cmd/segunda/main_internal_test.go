package main

import (
	"flag"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"segunda/internal/config"
)

var configInitOnce sync.Once

func ensureTestConfig(t *testing.T) {
	t.Helper()
	configInitOnce.Do(func() {
		dir := t.TempDir()
		if err := config.Initialize(
			config.WithProjectConfig(filepath.Join(dir, "project.yaml")),
			config.WithUserConfig(filepath.Join(dir, "user.yaml")),
			config.WithWorkingDir(dir),
		); err != nil {
			t.Fatalf("init config: %v", err)
		}
	})
	overrides := map[string]any{
		config.KeyFeedURL:         config.DefaultFeedURL,
		config.KeySkipUpdateCheck: false,
		config.KeyDebug:           false,
		config.KeyTheme:           "dracula",
		config.KeyUpdateTimeout:   config.DefaultUpdateTimeout,
		config.KeyWaitAttempts:    config.DefaultWaitAttempts,
		config.KeyMoveAttempts:    config.DefaultMoveAttempts,
		config.KeyPublicKey:       "",
	}
	if err := config.ApplyOverrides(overrides); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
}

func buildRuntimeOptionsForArgs(t *testing.T, args []string, overrides ...map[string]any) runtimeOptions {
	t.Helper()
	ensureTestConfig(t)
	if len(overrides) > 0 && len(overrides[0]) > 0 {
		if err := config.ApplyOverrides(overrides[0]); err != nil {
			t.Fatalf("apply custom overrides: %v", err)
		}
	}

	fs := flag.NewFlagSet("segunda-test", flag.ContinueOnError)
	debugFlag := fs.Bool("debug", config.GetBool(config.KeyDebug), "debug")
	skipFlag := fs.Bool("skip-update-check", config.GetBool(config.KeySkipUpdateCheck), "skip")
	feedFlag := fs.String("feed-url", config.GetString(config.KeyFeedURL), "feed")
	themeFlag := fs.String("theme", config.GetString(config.KeyTheme), "theme")
	historyFlag := fs.Bool("history", false, "history")

	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	visited := map[string]struct{}{}
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = struct{}{}
	})

	return computeRuntimeOptions(runtimeFlags{
		debug:           debugFlag,
		skipUpdateCheck: skipFlag,
		feedURL:         feedFlag,
		theme:           themeFlag,
		showHistory:     historyFlag,
	}, visited)
}

func TestComputeRuntimeOptions_Defaults(t *testing.T) {
	opts := buildRuntimeOptionsForArgs(t, nil)
	if opts.feedURL != config.DefaultFeedURL {
		t.Fatalf("feed URL = %q", opts.feedURL)
	}
	if opts.skipUpdateCheck || opts.debug || opts.showHistory {
		t.Fatalf("expected boolean options off, got %+v", opts)
	}
	if opts.updateTimeout != config.DefaultUpdateTimeout {
		t.Fatalf("timeout = %v", opts.updateTimeout)
	}
	if opts.waitAttempts != config.DefaultWaitAttempts || opts.moveAttempts != config.DefaultMoveAttempts {
		t.Fatalf("attempts = %d/%d", opts.waitAttempts, opts.moveAttempts)
	}
}

func TestComputeRuntimeOptions_FlagOverridesConfig(t *testing.T) {
	opts := buildRuntimeOptionsForArgs(t,
		[]string{"--feed-url", " http://localhost:9999/feed.json ", "--skip-update-check", "--theme=nord"},
		map[string]any{config.KeyFeedURL: "http://config.example/feed"},
	)
	if opts.feedURL != "http://localhost:9999/feed.json" {
		t.Fatalf("expected trimmed flag feed URL, got %q", opts.feedURL)
	}
	if !opts.skipUpdateCheck {
		t.Fatalf("expected skip flag to be honored")
	}
	if opts.theme != "nord" {
		t.Fatalf("theme = %q", opts.theme)
	}
}

func TestComputeRuntimeOptions_ConfigUsedWithoutFlags(t *testing.T) {
	opts := buildRuntimeOptionsForArgs(t, nil, map[string]any{
		config.KeyFeedURL:         "http://config.example/feed",
		config.KeySkipUpdateCheck: true,
		config.KeyUpdateTimeout:   "3s",
		config.KeyPublicKey:       " RWQkey ",
	})
	if opts.feedURL != "http://config.example/feed" {
		t.Fatalf("feed URL = %q", opts.feedURL)
	}
	if !opts.skipUpdateCheck {
		t.Fatalf("expected config skip to apply")
	}
	if opts.updateTimeout != 3*time.Second {
		t.Fatalf("timeout = %v", opts.updateTimeout)
	}
	if opts.publicKey != "RWQkey" {
		t.Fatalf("public key = %q", opts.publicKey)
	}
}

func TestComputeRuntimeOptions_InvalidValuesFallBack(t *testing.T) {
	opts := buildRuntimeOptionsForArgs(t, []string{"--feed-url", "  "}, map[string]any{
		config.KeyUpdateTimeout: "-1s",
		config.KeyWaitAttempts:  0,
		config.KeyMoveAttempts:  -3,
	})
	if opts.feedURL != config.DefaultFeedURL {
		t.Fatalf("expected default feed for blank flag, got %q", opts.feedURL)
	}
	if opts.updateTimeout != config.DefaultUpdateTimeout {
		t.Fatalf("timeout = %v", opts.updateTimeout)
	}
	if opts.waitAttempts != config.DefaultWaitAttempts || opts.moveAttempts != config.DefaultMoveAttempts {
		t.Fatalf("attempts = %d/%d", opts.waitAttempts, opts.moveAttempts)
	}
}

func TestComputeRuntimeOptions_HistoryFlag(t *testing.T) {
	opts := buildRuntimeOptionsForArgs(t, []string{"--history"})
	if !opts.showHistory {
		t.Fatalf("expected history mode")
	}
}
