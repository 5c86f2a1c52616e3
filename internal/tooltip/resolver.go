// Package tooltip resolves the text shown for a hovered word: lexicon gloss
// first, then the shared recency cache, then a translation call, falling back
// to the word itself.
package tooltip

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/qirtas-app/qirtas/internal/arabic"
	"github.com/qirtas-app/qirtas/internal/cache"
	"github.com/qirtas-app/qirtas/internal/lexicon"
	"github.com/qirtas-app/qirtas/internal/translate"
)

// Source identifies where a tooltip value came from.
type Source string

const (
	SourceLexicon     Source = "lexicon"
	SourceCache       Source = "cache"
	SourceTranslation Source = "translation"
	SourceFallback    Source = "fallback"
)

// Resolver resolves tooltip text for words. All collaborators are injected;
// the cache and lexicon are shared process-wide instances owned by the
// caller.
type Resolver struct {
	lexicon    *lexicon.Lexicon
	cache      *cache.LRU
	translator translate.Client
	sourceLang string
	targetLang string
}

// NewResolver wires a resolver. translator may be nil, in which case
// unresolved words fall back to themselves.
func NewResolver(lex *lexicon.Lexicon, c *cache.LRU, translator translate.Client, sourceLang, targetLang string) *Resolver {
	return &Resolver{
		lexicon:    lex,
		cache:      c,
		translator: translator,
		sourceLang: sourceLang,
		targetLang: targetLang,
	}
}

// candidates builds the lexicon lookup keys for a word, in fixed order: the
// raw word, diacritic-stripped, letter-normalized, and stripped-then-
// normalized.
func candidates(word string) []string {
	stripped := arabic.StripDiacritics(word)
	normalized := arabic.NormalizeLetters(word)
	both := arabic.NormalizeLetters(stripped)

	out := make([]string, 0, 4)
	seen := make(map[string]bool, 4)
	for _, c := range []string{word, stripped, normalized, both} {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Resolve returns the tooltip text for word. It never fails: a translation
// error yields the raw word.
func (r *Resolver) Resolve(ctx context.Context, word string) string {
	text, _ := r.ResolveWithSource(ctx, word)
	return text
}

// ResolveWithSource resolves word and reports which step produced the value.
// Concurrent resolution of the same uncached word may issue duplicate
// translation calls; in-flight calls are not de-duplicated since cache
// population only benefits later lookups.
func (r *Resolver) ResolveWithSource(ctx context.Context, word string) (string, Source) {
	if word == "" {
		return "", SourceFallback
	}

	for _, key := range candidates(word) {
		if gloss, ok := r.lexicon.Gloss(key); ok {
			return gloss, SourceLexicon
		}
	}

	// The cache is keyed by the raw word only; normalized forms never leak
	// into cache keys.
	if cached, ok := r.cache.Get(word); ok {
		return cached, SourceCache
	}

	if r.translator == nil {
		return word, SourceFallback
	}

	translated, err := r.translator.Translate(ctx, word, r.sourceLang, r.targetLang)
	if err != nil || translated == "" {
		if err != nil {
			log.Debug().Err(err).Str("word", word).Msg("Tooltip translation failed, falling back to raw word")
		}
		return word, SourceFallback
	}

	r.cache.Set(word, translated)
	return translated, SourceTranslation
}
