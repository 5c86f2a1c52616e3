package tooltip

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qirtas-app/qirtas/internal/cache"
	"github.com/qirtas-app/qirtas/internal/lexicon"
)

type fakeTranslator struct {
	result string
	err    error
	calls  int
}

func (f *fakeTranslator) Name() string { return "fake" }

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	f.calls++
	return f.result, f.err
}

func newResolver(lex *lexicon.Lexicon, tr *fakeTranslator) *Resolver {
	return NewResolver(lex, cache.NewLRU(16), tr, "ar", "en")
}

func TestResolveLexiconHit(t *testing.T) {
	lex := lexicon.New([]lexicon.Entry{
		{Form: "كتاب", Glosses: []string{"book", "letter"}},
	})
	tr := &fakeTranslator{result: "should not be used"}
	r := newResolver(lex, tr)

	text, source := r.ResolveWithSource(context.Background(), "كتاب")
	assert.Equal(t, "book, letter", text)
	assert.Equal(t, SourceLexicon, source)
	assert.Equal(t, 0, tr.calls, "lexicon hit must not call translation")
}

func TestResolveLexiconHitAfterStripping(t *testing.T) {
	lex := lexicon.New([]lexicon.Entry{
		{Form: "كتاب", Glosses: []string{"book"}},
	})
	r := newResolver(lex, &fakeTranslator{})

	// The vocalized form hits after diacritic stripping.
	text, source := r.ResolveWithSource(context.Background(), "كِتَاب")
	assert.Equal(t, "book", text)
	assert.Equal(t, SourceLexicon, source)
}

func TestResolveLexiconHitByLemma(t *testing.T) {
	lex := lexicon.New([]lexicon.Entry{
		{Lemma: "مدرسه", Glosses: []string{"school"}},
	})
	r := newResolver(lex, &fakeTranslator{})

	// The display form with ta marbuta matches the lemma after letter
	// normalization.
	text, source := r.ResolveWithSource(context.Background(), "مدرسة")
	assert.Equal(t, "school", text)
	assert.Equal(t, SourceLexicon, source)
}

func TestResolveTranslationThenCache(t *testing.T) {
	lex := lexicon.New(nil)
	tr := &fakeTranslator{result: "read"}
	r := newResolver(lex, tr)

	text, source := r.ResolveWithSource(context.Background(), "قرأ")
	assert.Equal(t, "read", text)
	assert.Equal(t, SourceTranslation, source)
	assert.Equal(t, 1, tr.calls)

	// Second resolution hits the cache, not the service.
	text, source = r.ResolveWithSource(context.Background(), "قرأ")
	assert.Equal(t, "read", text)
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, 1, tr.calls)
}

func TestResolveTranslationFailureFallsBack(t *testing.T) {
	tr := &fakeTranslator{err: errors.New("service down")}
	r := newResolver(lexicon.New(nil), tr)

	text, source := r.ResolveWithSource(context.Background(), "قلم")
	assert.Equal(t, "قلم", text, "failure falls back to the raw word")
	assert.Equal(t, SourceFallback, source)

	// Failures are not cached; the next hover retries.
	r.ResolveWithSource(context.Background(), "قلم")
	assert.Equal(t, 2, tr.calls)
}

func TestResolveEmptyTranslationFallsBack(t *testing.T) {
	tr := &fakeTranslator{result: ""}
	r := newResolver(lexicon.New(nil), tr)

	text, source := r.ResolveWithSource(context.Background(), "قلم")
	assert.Equal(t, "قلم", text)
	assert.Equal(t, SourceFallback, source)
}

func TestResolveNilTranslator(t *testing.T) {
	r := NewResolver(lexicon.New(nil), cache.NewLRU(4), nil, "ar", "en")
	text, source := r.ResolveWithSource(context.Background(), "باب")
	assert.Equal(t, "باب", text)
	assert.Equal(t, SourceFallback, source)
}

func TestResolveEmptyWord(t *testing.T) {
	r := newResolver(lexicon.New(nil), &fakeTranslator{})
	assert.Equal(t, "", r.Resolve(context.Background(), ""))
}

func TestCandidatesOrder(t *testing.T) {
	got := candidates("كِتَاب")
	require.NotEmpty(t, got)
	assert.Equal(t, "كِتَاب", got[0], "raw word comes first")
	assert.Contains(t, got, "كتاب")
}

func TestHoverSessionStaleness(t *testing.T) {
	s := NewHoverSession()

	// Hover word A, then move to word B before A resolves.
	genA := s.Begin()
	genB := s.Begin()

	assert.False(t, s.StillCurrent(genA), "A's late result must be dropped")
	assert.True(t, s.StillCurrent(genB), "B remains the active hover")

	// A third hover invalidates B as well.
	s.Begin()
	assert.False(t, s.StillCurrent(genB))
}
