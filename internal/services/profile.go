package services

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"
)

// Decoding defaults keep translations faithful rather than creative.
const (
	DefaultTemperature = 0.2
	DefaultTopP        = 0.95
	DefaultMaxTokens   = 2000
	DefaultProfileName = "general"
)

// TranslationProfile is the configuration of one translator persona: the
// system instruction, the formatting directives and the decoding settings.
type TranslationProfile struct {
	Name        string  `yaml:"name"`
	Persona     string  `yaml:"persona"`
	Formatting  string  `yaml:"formatting"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	TopP        float32 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// SystemPrompt combines the persona and the formatting directives.
func (p TranslationProfile) SystemPrompt() string {
	if p.Formatting == "" {
		return p.Persona
	}
	return p.Persona + "\n\n" + p.Formatting
}

// withDefaults fills zero decoding settings.
func (p TranslationProfile) withDefaults() TranslationProfile {
	if p.Model == "" {
		p.Model = openai.GPT4o
	}
	if p.Temperature == 0 {
		p.Temperature = DefaultTemperature
	}
	if p.TopP == 0 {
		p.TopP = DefaultTopP
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	return p
}

const formattingRules = `Formatting rules:
- Preserve every blank line and paragraph break exactly as in the source.
- Render bold text as <b>...</b> and italic text as <i>...</i>.
- Render headings as <h1>, <h2> or <h3> tags matching their level.
- Do not add commentary, notes, quotation marks or explanations.`

// Profiles is a set of translation profiles keyed by name.
type Profiles map[string]TranslationProfile

// DefaultProfiles returns the built-in profiles.
func DefaultProfiles() Profiles {
	return Profiles{
		"general": TranslationProfile{
			Name: "general",
			Persona: "You are an expert translator with deep understanding of both source and target languages, " +
				"including cultural nuances, idioms, and context. Provide accurate and natural-sounding translations " +
				"while preserving the original meaning and tone.",
			Formatting: formattingRules,
		}.withDefaults(),
		"religious-tr-kk": TranslationProfile{
			Name: "religious-tr-kk",
			Persona: "You are a professional translator of Islamic religious literature from Turkish into Kazakh. " +
				"Use the established Kazakh religious terminology, keep Arabic names, Quranic references and " +
				"honorifics in their accepted Kazakh forms, and keep a respectful, scholarly register.",
			Formatting: formattingRules + "\n- Keep verse and hadith references (for example 2:255) unchanged.",
		}.withDefaults(),
	}
}

// Get returns the profile with the given name.
func (p Profiles) Get(name string) (TranslationProfile, bool) {
	profile, ok := p[strings.TrimSpace(name)]
	return profile, ok
}

// Names returns the profile names in sorted order.
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithModel returns a copy in which every profile uses model.
func (p Profiles) WithModel(model string) Profiles {
	out := make(Profiles, len(p))
	for name, profile := range p {
		profile.Model = model
		out[name] = profile
	}
	return out
}

type profileFile struct {
	Profiles []TranslationProfile `yaml:"profiles"`
}

// LoadProfiles reads profiles from a YAML file and merges them over the
// built-in ones. Profiles with the same name replace the built-in profile.
func LoadProfiles(path string) (Profiles, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}

	for i, profile := range file.Profiles {
		profile.Name = strings.TrimSpace(profile.Name)
		if profile.Name == "" {
			return nil, fmt.Errorf("profile %d in %s has no name", i, path)
		}
		if strings.TrimSpace(profile.Persona) == "" {
			return nil, fmt.Errorf("profile %q in %s has no persona", profile.Name, path)
		}
		profiles[profile.Name] = profile.withDefaults()
	}
	return profiles, nil
}
