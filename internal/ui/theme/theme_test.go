package theme

import (
	"reflect"
	"testing"
)

func TestAllThemesRegistered(t *testing.T) {
	want := []string{"dracula", "gruvbox", "nord", "solarized", "tokyonight"}
	if got := Available(); !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestDefaultThemeIsFirstRegistered(t *testing.T) {
	// init registers dracula first.
	t.Cleanup(func() { SetTheme("dracula") })
	SetTheme("dracula")
	if CurrentName() != "dracula" {
		t.Errorf("CurrentName() = %q", CurrentName())
	}
	if Current() == nil {
		t.Fatal("Current() should not be nil")
	}
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("dracula") })

	if !SetTheme("nord") {
		t.Fatal("SetTheme(nord) returned false")
	}
	if CurrentName() != "nord" {
		t.Errorf("CurrentName() = %q, want nord", CurrentName())
	}
	if Current().Primary() != Nord.PrimaryColor {
		t.Error("Current() did not switch palettes")
	}
	if SetTheme("missing") {
		t.Error("SetTheme(missing) should return false")
	}
	if CurrentName() != "nord" {
		t.Error("failed SetTheme should keep the current theme")
	}
}

func TestCycleThemeWraps(t *testing.T) {
	t.Cleanup(func() { SetTheme("dracula") })

	SetTheme("tokyonight")
	if got := CycleTheme(); got != "dracula" {
		t.Errorf("CycleTheme() from last = %q, want dracula", got)
	}
	if got := CycleTheme(); got != "gruvbox" {
		t.Errorf("CycleTheme() = %q, want gruvbox", got)
	}
}

func TestPalettesDefineEveryColor(t *testing.T) {
	for _, name := range Available() {
		SetTheme(name)
		th := Current()
		colors := []struct {
			label string
			light string
			dark  string
		}{
			{"Primary", th.Primary().Light, th.Primary().Dark},
			{"Secondary", th.Secondary().Light, th.Secondary().Dark},
			{"Accent", th.Accent().Light, th.Accent().Dark},
			{"Error", th.Error().Light, th.Error().Dark},
			{"Warning", th.Warning().Light, th.Warning().Dark},
			{"Success", th.Success().Light, th.Success().Dark},
			{"Text", th.Text().Light, th.Text().Dark},
			{"TextMuted", th.TextMuted().Light, th.TextMuted().Dark},
			{"Background", th.Background().Light, th.Background().Dark},
			{"BackgroundSecondary", th.BackgroundSecondary().Light, th.BackgroundSecondary().Dark},
			{"BorderNormal", th.BorderNormal().Light, th.BorderNormal().Dark},
			{"BorderFocused", th.BorderFocused().Light, th.BorderFocused().Dark},
		}
		for _, col := range colors {
			if col.light == "" || col.dark == "" {
				t.Errorf("theme %s: %s has empty light/dark value", name, col.label)
			}
		}
	}
	SetTheme("dracula")
}
