package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"segunda/internal/history"
	"segunda/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

type noopProgram struct{}

func (noopProgram) Run() (tea.Model, error) {
	return nil, nil
}

type failingProgram struct{}

func (failingProgram) Run() (tea.Model, error) {
	return nil, errors.New("no tty")
}

func TestRunProgramReturnsApp(t *testing.T) {
	var built ui.Config
	app, err := runProgram(ui.Config{Version: "1.0.3"}, func(cfg ui.Config) *ui.App {
		built = cfg
		return ui.NewApp(cfg)
	}, func(*ui.App) programRunner {
		return noopProgram{}
	})
	if err != nil {
		t.Fatalf("runProgram returned error: %v", err)
	}
	if app == nil {
		t.Fatal("expected app")
	}
	if built.Version != "1.0.3" {
		t.Fatalf("builder got version %q", built.Version)
	}
	if app.PendingRelaunch() != nil {
		t.Fatal("expected no pending relaunch")
	}
}

func TestRunProgramErrors(t *testing.T) {
	tests := []struct {
		name    string
		factory programFactory
		want    string
	}{
		{name: "nil factory", factory: nil, want: "program factory is nil"},
		{name: "nil program", factory: func(*ui.App) programRunner { return nil }, want: "program is nil"},
		{name: "run failure", factory: func(*ui.App) programRunner { return failingProgram{} }, want: "run UI: no tty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runProgram(ui.Config{}, ui.NewApp, tt.factory)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

type fakeHelper struct {
	err             error
	newPath, target string
	calls           int
}

func (f *fakeHelper) RelaunchAfterReplace(newPath, currentPath string) error {
	f.calls++
	f.newPath, f.target = newPath, currentPath
	return f.err
}

type fakeRecorder struct {
	outcomes []string
}

func (f *fakeRecorder) RecordInstall(_ context.Context, version, _ string, outcome string) error {
	f.outcomes = append(f.outcomes, version+":"+outcome)
	return nil
}

func TestHandOffSuccess(t *testing.T) {
	req := &ui.RelaunchRequest{NewPath: "/tmp/segunda-update-1", Version: "2.0.0"}
	helper := &fakeHelper{}
	rec := &fakeRecorder{}
	var out bytes.Buffer

	if code := handOff(&out, req, helper, "/opt/segunda/segunda", rec); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if helper.newPath != req.NewPath || helper.target != "/opt/segunda/segunda" {
		t.Fatalf("helper got %q -> %q", helper.newPath, helper.target)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
	if want := []string{"2.0.0:" + history.InstallRelaunched}; !equalStrings(rec.outcomes, want) {
		t.Fatalf("outcomes = %v, want %v", rec.outcomes, want)
	}
}

func TestHandOffFailurePrintsManualSteps(t *testing.T) {
	req := &ui.RelaunchRequest{NewPath: "/tmp/segunda-update-1", Version: "2.0.0"}
	helper := &fakeHelper{err: errors.New("permission denied")}
	rec := &fakeRecorder{}
	var out bytes.Buffer

	if code := handOff(&out, req, helper, "/opt/segunda/segunda", rec); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"could not restart", "/tmp/segunda-update-1", "/opt/segunda/segunda", "permission denied", "Version 2.0.0"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	want := []string{"2.0.0:" + history.InstallRelaunched, "2.0.0:" + history.InstallFailed}
	if !equalStrings(rec.outcomes, want) {
		t.Fatalf("outcomes = %v, want %v", rec.outcomes, want)
	}
}

func TestHandOffWithoutExecutablePath(t *testing.T) {
	req := &ui.RelaunchRequest{NewPath: "/tmp/segunda-update-1", Version: "2.0.0"}
	helper := &fakeHelper{}
	var out bytes.Buffer

	if code := handOff(&out, req, helper, "", nil); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if helper.calls != 0 {
		t.Fatal("helper should not run without a target path")
	}
	if !strings.Contains(out.String(), "the segunda executable") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
