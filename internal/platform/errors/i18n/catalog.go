// Package i18n renders localized user messages for error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"github.com/louisbranch/warlord/internal/platform/i18n/catalog"
)

// Catalog maps error codes to message templates for one locale.
type Catalog struct {
	locale    string
	templates map[string]*template.Template
	raw       map[string]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// GetCatalog returns the catalog for locale, built from the "errors"
// namespace of the embedded bundle. Unknown locales get the base locale.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = catalog.BaseLocale
	}
	if c, ok := lookup(requested); ok {
		return c
	}
	resolved, messages := catalog.Default().NamespaceMessagesWithFallback(requested, "errors")
	if c, ok := lookup(resolved); ok {
		return c
	}
	return store(resolved, NewCatalog(resolved, messages))
}

// NewCatalog parses message templates keyed by error code. Templates that
// fail to parse are rendered verbatim.
func NewCatalog(locale string, messages map[string]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		templates: make(map[string]*template.Template, len(messages)),
		raw:       make(map[string]string, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		if tmpl, err := template.New(code).Option("missingkey=zero").Parse(text); err == nil {
			c.templates[code] = tmpl
		}
	}
	return c
}

// Locale returns the locale the catalog renders.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata as template data. An
// unknown code renders as itself.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return code
	}
	tmpl, ok := c.templates[code]
	if !ok {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return text
	}
	return buf.String()
}

// RegisterCatalog overrides the catalog used for locale.
func RegisterCatalog(locale string, c *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = c
}

func lookup(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	c, ok := catalogs[locale]
	return c, ok
}

func store(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}
