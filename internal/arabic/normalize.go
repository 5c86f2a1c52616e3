// Package arabic provides pure text normalization helpers for Arabic script:
// script classification, diacritic stripping, and letter-form canonicalization
// for lexicon lookups. All functions are total and idempotent.
package arabic

import (
	"strings"
	"unicode"
)

// scriptRatioThreshold is the minimum fraction of Arabic code points for a
// string to classify as Arabic text.
const scriptRatioThreshold = 0.6

// arabicRanges are the fixed code-point ranges used by the fallback
// classifier. They cover the base block, supplements, extended-A, and the
// presentation forms, matching what full Unicode script matching reports for
// common Arabic input.
var arabicRanges = [][2]rune{
	{0x0600, 0x06FF},
	{0x0750, 0x077F},
	{0x08A0, 0x08FF},
	{0xFB50, 0xFDFF},
	{0xFE70, 0xFEFF},
}

// inArabicRange reports whether r falls inside one of the fixed Arabic
// code-point ranges.
func inArabicRange(r rune) bool {
	for _, rg := range arabicRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// IsMostlyArabic reports whether at least 60% of the non-space characters in s
// are Arabic. Empty input classifies as false.
func IsMostlyArabic(s string) bool {
	return isMostly(s, func(r rune) bool { return unicode.Is(unicode.Arabic, r) })
}

// IsMostlyArabicRanges is the fallback classification path for environments
// without full Unicode property tables. It uses fixed code-point ranges and
// agrees with IsMostlyArabic on ASCII and common Arabic input.
func IsMostlyArabicRanges(s string) bool {
	return isMostly(s, inArabicRange)
}

func isMostly(s string, classify func(rune) bool) bool {
	total := 0
	arabic := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if classify(r) {
			arabic++
		}
	}
	if total == 0 {
		return false
	}
	return float64(arabic)/float64(total) >= scriptRatioThreshold
}

// isDiacritic reports whether r is an Arabic combining mark: the honorific
// and Quranic annotation signs (U+0610..U+061A), the harakat and tanween
// range (U+064B..U+065F), dagger alif (U+0670), and the Quranic marks
// (U+06D6..U+06ED).
func isDiacritic(r rune) bool {
	switch {
	case r >= 0x0610 && r <= 0x061A:
		return true
	case r >= 0x064B && r <= 0x065F:
		return true
	case r == 0x0670:
		return true
	case r >= 0x06D6 && r <= 0x06ED:
		return true
	}
	return false
}

// StripDiacritics removes Arabic combining marks from s, preserving all other
// characters and their order.
func StripDiacritics(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isDiacritic(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeLetters canonicalizes Arabic letter forms for lookup-key matching:
// alef variants become bare alef, alef maksura becomes yaa, ta marbuta
// becomes haa, hamza carriers become bare hamza, and tatweel is removed.
// Characters outside the Arabic block (other than whitespace) are dropped.
// The result is lossy and intended only for lexicon key matching, never for
// display.
func NormalizeLetters(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'آ', 'أ', 'إ', 'ٱ':
			b.WriteRune('ا')
		case 'ى':
			b.WriteRune('ي')
		case 'ة':
			b.WriteRune('ه')
		case 'ؤ', 'ئ':
			b.WriteRune('ء')
		case 'ـ': // tatweel
		default:
			if inArabicRange(r) || unicode.IsSpace(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
