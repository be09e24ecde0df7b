package services

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultProfiles(t *testing.T) {
	profiles := DefaultProfiles()

	if got := profiles.Names(); !reflect.DeepEqual(got, []string{"general", "religious-tr-kk"}) {
		t.Errorf("Names() = %v", got)
	}

	for name, p := range profiles {
		if p.Temperature != DefaultTemperature || p.TopP != DefaultTopP || p.MaxTokens != DefaultMaxTokens {
			t.Errorf("%s: decoding defaults not applied: %+v", name, p)
		}
		if !strings.Contains(p.SystemPrompt(), "<b>") {
			t.Errorf("%s: system prompt lacks formatting rules", name)
		}
	}

	if _, ok := profiles.Get(" general "); !ok {
		t.Error("Get should trim the name")
	}
	if _, ok := profiles.Get("missing"); ok {
		t.Error("Get(missing) should fail")
	}
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := `profiles:
  - name: legal
    persona: You translate contracts.
    formatting: Keep clause numbers.
    model: gpt-4o-mini
    temperature: 0.1
  - name: general
    persona: Replaced persona.
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	profiles, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}

	legal, ok := profiles.Get("legal")
	if !ok {
		t.Fatal("legal profile not loaded")
	}
	if legal.Model != "gpt-4o-mini" || legal.Temperature != 0.1 || legal.MaxTokens != DefaultMaxTokens {
		t.Errorf("legal = %+v", legal)
	}

	general, _ := profiles.Get("general")
	if general.SystemPrompt() != "Replaced persona." {
		t.Errorf("general not overridden: %q", general.SystemPrompt())
	}

	if _, ok := profiles.Get("religious-tr-kk"); !ok {
		t.Error("built-in profile lost")
	}
}

func TestLoadProfiles_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "profiles:\n  - persona: x\n"},
		{"missing persona", "profiles:\n  - name: x\n"},
		{"invalid yaml", "profiles: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadProfiles(path); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := LoadProfiles(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadProfiles_NoPath(t *testing.T) {
	profiles, err := LoadProfiles("")
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != len(DefaultProfiles()) {
		t.Errorf("got %d profiles, want built-ins only", len(profiles))
	}
}

func TestProfiles_WithModel(t *testing.T) {
	profiles := DefaultProfiles().WithModel(DefaultGeminiModel)
	for name, p := range profiles {
		if p.Model != DefaultGeminiModel {
			t.Errorf("%s: model = %q", name, p.Model)
		}
	}
	if DefaultProfiles()["general"].Model == DefaultGeminiModel {
		t.Error("WithModel modified the original profiles")
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"en", "English"},
		{"tr", "Turkish"},
		{"kk", "Kazakh"},
		{" de ", "German"},
		{"@@", "@@"},
	}

	for _, tt := range tests {
		if got := LanguageName(tt.code); got != tt.expected {
			t.Errorf("LanguageName(%q) = %q, want %q", tt.code, got, tt.expected)
		}
	}
}
