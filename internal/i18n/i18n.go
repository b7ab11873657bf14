// Package i18n provides the localized string table, plural selection and the
// locale number symbols consumed by the formatting packages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/jwulff/glucose-go/internal/numfmt"
)

// BaseLocale is the locale every catalog must define.
const BaseLocale = "en"

// Localizer maps a message key plus arguments to a localized string.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// Catalog holds the messages and number symbols of every supported locale.
// It is read-only after Load and safe for concurrent use.
type Catalog struct {
	builder  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	symbols  map[language.Tag]numfmt.Symbols
	messages map[language.Tag]map[string]string
}

// Load reads the locale files embedded in the binary.
func Load() (*Catalog, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS reads locales/*.yaml from fsys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	c := &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(language.Make(BaseLocale))),
		symbols:  map[language.Tag]numfmt.Symbols{},
		messages: map[language.Tag]map[string]string{},
	}

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", p, err)
		}
		if err := c.add(p, data); err != nil {
			return nil, err
		}
	}

	base := language.Make(BaseLocale)
	if _, ok := c.messages[base]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}

	// The matcher prefers the first tag, so the base locale goes first.
	sort.SliceStable(c.tags, func(i, j int) bool { return c.tags[i] == base && c.tags[j] != base })
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func (c *Catalog) add(p string, data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse locale %s: %w", p, err)
	}

	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("locale %s: locale is required", p)
	}
	if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); locale != want {
		return fmt.Errorf("locale %s: locale %q must match file name %q", p, locale, want)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("locale %s: parse tag %q: %w", p, locale, err)
	}
	if _, exists := c.messages[tag]; exists {
		return fmt.Errorf("locale %s: %q defined twice", p, locale)
	}

	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("locale %s: message key cannot be blank", p)
		}
		if err := c.builder.SetString(tag, key, value); err != nil {
			return fmt.Errorf("locale %s: set %q: %w", p, key, err)
		}
		messages[key] = value
	}

	c.tags = append(c.tags, tag)
	c.messages[tag] = messages
	c.symbols[tag] = deriveSymbols(tag)
	return nil
}

// Tags returns the supported locales, base locale first.
func (c *Catalog) Tags() []language.Tag {
	out := make([]language.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Match returns the supported locale closest to tag.
func (c *Catalog) Match(tag language.Tag) language.Tag {
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.tags[0]
	}
	return c.tags[idx]
}

// Localizer returns a printer for the supported locale closest to tag.
func (c *Catalog) Localizer(tag language.Tag) *message.Printer {
	return message.NewPrinter(c.Match(tag), message.Catalog(c.builder))
}

// Symbols returns the number symbols of the supported locale closest to tag.
func (c *Catalog) Symbols(tag language.Tag) numfmt.Symbols {
	return c.symbols[c.Match(tag)]
}

// lookup returns the raw catalog entry for key, falling back to the base locale.
func (c *Catalog) lookup(tag language.Tag, key string) (string, bool) {
	if v, ok := c.messages[c.Match(tag)][key]; ok {
		return v, true
	}
	v, ok := c.messages[language.Make(BaseLocale)][key]
	return v, ok
}

// MatchTag parses a locale string, falling back to the base locale.
func MatchTag(s string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return language.Make(BaseLocale)
	}
	return tag
}
