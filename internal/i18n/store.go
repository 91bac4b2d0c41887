// Package i18n holds the active UI language and resolves dotted translation
// keys against loaded bundles.
package i18n

import (
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"golang.org/x/text/language"

	"Storefront/internal/observable"
	"Storefront/internal/storage"
)

const DefaultLanguage = "en"

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Supported lists the languages the storefront ships, default first.
var Supported = []string{"en", "fr", "es"}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.French,
	language.Spanish,
})

type Store struct {
	mu      sync.RWMutex
	storage *storage.Adapter
	bundles map[string]map[string]any
	current *observable.Subject[string]
}

// NewStore starts in the persisted preferred language, or English.
func NewStore(st *storage.Adapter) *Store {
	lang := DefaultLanguage
	var saved string
	if st.Read(storage.KeyPreferredLanguage, &saved) && IsSupported(saved) {
		lang = saved
	}
	return &Store{
		storage: st,
		bundles: make(map[string]map[string]any),
		current: observable.NewSubject(lang),
	}
}

func IsSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// MatchLanguage picks the best supported language for an Accept-Language
// style preference list such as "fr-CA,fr;q=0.9,en;q=0.8".
func MatchLanguage(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return Supported[idx]
}

// Use switches the active language and remembers it.
func (s *Store) Use(lang string) error {
	if !IsSupported(lang) {
		return errors.Wrapf(ErrUnsupportedLanguage, "%q", lang)
	}
	s.current.Next(lang)
	if err := s.storage.Write(storage.KeyPreferredLanguage, lang); err != nil {
		return errors.Wrap(err, "persist language")
	}
	return nil
}

func (s *Store) Current() string { return s.current.Value() }

// Load installs the translation tree for lang, replacing any earlier one.
func (s *Store) Load(lang string, bundle map[string]any) error {
	if !IsSupported(lang) {
		return errors.Wrapf(ErrUnsupportedLanguage, "%q", lang)
	}
	s.mu.Lock()
	s.bundles[lang] = bundle
	s.mu.Unlock()

	// let subscribers re-render with the new strings
	s.current.Update(func(cur string) string { return cur })
	return nil
}

// Get resolves key in the active language.
func (s *Store) Get(key string) string {
	return s.GetIn(s.Current(), key)
}

// GetIn resolves a dotted key such as "cart.checkout" in lang. The key
// itself is returned when nothing non-empty is found.
func (s *Store) GetIn(lang, key string) string {
	s.mu.RLock()
	var node any = s.bundles[lang]
	s.mu.RUnlock()

	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return key
		}
		node = m[part]
	}

	if v, ok := node.(string); ok && v != "" {
		return v
	}
	return key
}

// Subscribe calls fn with the active language and after every change.
func (s *Store) Subscribe(fn func(lang string)) (unsubscribe func()) {
	return s.current.Subscribe(fn)
}
