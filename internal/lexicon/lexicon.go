// Package lexicon loads the static word/lemma gloss table used for tooltip
// resolution. The lexicon is read once at startup and never mutated.
package lexicon

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Entry is one lexicon record. A record may carry a surface form, a lemma, or
// both; either key resolves to the same glosses.
type Entry struct {
	Form    string   `json:"form,omitempty"`
	Lemma   string   `json:"lemma,omitempty"`
	Root    string   `json:"root,omitempty"`
	Glosses []string `json:"glosses,omitempty"`
}

// Lexicon is an immutable lookup table indexed by both form and lemma.
type Lexicon struct {
	index map[string]Entry
}

// New builds a lexicon from entries. Both the form and the lemma of each
// entry are indexed into a single map; a duplicate key is overwritten by the
// later entry (last-loaded wins).
func New(entries []Entry) *Lexicon {
	index := make(map[string]Entry, len(entries)*2)
	for _, e := range entries {
		if e.Form != "" {
			index[e.Form] = e
		}
		if e.Lemma != "" {
			index[e.Lemma] = e
		}
	}
	return &Lexicon{index: index}
}

// Load reads a lexicon JSON file: either a bare array of entries or an
// object wrapper {"entries": [...]}. A missing or unreadable file yields an
// empty lexicon rather than an error; tooltip resolution then falls through
// to the cache and translation.
func Load(path string) *Lexicon {
	if path == "" {
		return New(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Lexicon not loaded, continuing with empty lexicon")
		return New(nil)
	}

	entries, err := Parse(data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Lexicon unparsable, continuing with empty lexicon")
		return New(nil)
	}

	log.Info().Str("path", path).Int("entries", len(entries)).Msg("Lexicon loaded")
	return New(entries)
}

// Parse decodes lexicon JSON from raw bytes.
func Parse(data []byte) ([]Entry, error) {
	var wrapper struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Entries) > 0 {
		return wrapper.Entries, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Lookup returns the entry indexed under key, by form or lemma.
func (l *Lexicon) Lookup(key string) (Entry, bool) {
	e, ok := l.index[key]
	return e, ok
}

// Gloss returns the comma-joined gloss list for key.
func (l *Lexicon) Gloss(key string) (string, bool) {
	e, ok := l.index[key]
	if !ok || len(e.Glosses) == 0 {
		return "", false
	}
	return strings.Join(e.Glosses, ", "), true
}

// Len returns the number of indexed keys.
func (l *Lexicon) Len() int {
	return len(l.index)
}
