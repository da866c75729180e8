// Package localization serves the short reply texts used by the phone channels
// (USSD menus, SMS acknowledgements, staff notifications) in English and Kinyarwanda.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// DefaultLanguage is used when a key is missing from the requested language.
const DefaultLanguage = "en"

//go:embed locales/*.json
var bundled embed.FS

// Localizer holds one translation table per language code.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// New loads the bundles compiled into the binary.
func New() (*Localizer, error) {
	return NewFromFS(bundled, "locales")
}

// NewFromFS loads every <lang>.json file found in dir of fsys.
func NewFromFS(fsys fs.FS, dir string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", entry.Name(), err)
		}

		var table map[string]string
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", entry.Name(), err)
		}

		l.translations[strings.TrimSuffix(entry.Name(), ".json")] = table
	}

	if _, ok := l.translations[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("missing %s localization bundle", DefaultLanguage)
	}

	return l, nil
}

// GetString returns the text for key in lang, falling back to English and then to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if table, ok := l.translations[lang]; ok {
		if value, ok := table[key]; ok {
			return value
		}
	}

	if lang != DefaultLanguage {
		if value, ok := l.translations[DefaultLanguage][key]; ok {
			return value
		}
	}

	return key
}

// Format looks up key and applies fmt.Sprintf with args.
func (l *Localizer) Format(lang, key string, args ...any) string {
	return fmt.Sprintf(l.GetString(lang, key), args...)
}

// Supports reports whether a bundle exists for lang.
func (l *Localizer) Supports(lang string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.translations[lang]
	return ok
}
