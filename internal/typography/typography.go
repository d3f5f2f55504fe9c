// Package typography computes hanging-indent geometry for a paragraph's
// leading marker (bullet, numbering, lettering) so the façade's
// HangingIndent verb can set a paragraph's indent to exactly the marker's
// rendered width. The ordered, most-specific-first pattern dispatch is
// modeled on the teacher's render/control.go DetectControlStructure, which
// tries a fixed list of keyword patterns in order and returns the first
// match; here the list is marker glyphs instead of template keywords.
package typography

import (
	"regexp"
	"unicode/utf8"
)

// MarkerKind identifies the recognized leading-marker shape.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerBullet
	MarkerDash
	MarkerDecimal
	MarkerKoreanSyllable
	MarkerRomanNumeral
	MarkerParenNumber
	MarkerParenKorean
	MarkerCircledNumber
	MarkerLatinLetter
)

// markerPattern pairs a regexp with the kind it identifies. Order matters:
// more specific patterns (parenthesized forms) must be tried before the
// more general bare forms they'd otherwise be swallowed by.
type markerPattern struct {
	kind MarkerKind
	re   *regexp.Regexp
}

var markerPatterns = []markerPattern{
	{MarkerParenNumber, regexp.MustCompile(`^\(([0-9]+)\)`)},
	{MarkerParenKorean, regexp.MustCompile(`^\(([가-힣])\)`)},
	{MarkerCircledNumber, regexp.MustCompile(`^([①②③④⑤⑥⑦⑧⑨⑩])`)},
	{MarkerBullet, regexp.MustCompile(`^([•◦▪‣])`)},
	{MarkerDash, regexp.MustCompile(`^(-|–|—)\s`)},
	{MarkerRomanNumeral, regexp.MustCompile(`^([IVXLCDM]+)\.`)},
	{MarkerDecimal, regexp.MustCompile(`^([0-9]+)\.`)},
	{MarkerKoreanSyllable, regexp.MustCompile(`^([가-힣])\.`)},
	{MarkerLatinLetter, regexp.MustCompile(`^([A-Za-z])\.`)},
}

// Marker is the result of recognizing a leading marker in a paragraph's
// text.
type Marker struct {
	Kind            MarkerKind
	Text            string // the marker glyph(s) as they appear in the source
	LeadingSpaces   int    // count of leading whitespace runes before the marker
	TrailingSpace   bool   // whether a space immediately follows the marker
}

// Recognize scans text for a leading marker, trying markerPatterns in
// order and returning the first match. ok is false if text carries no
// recognized marker.
func Recognize(text string) (Marker, bool) {
	leading := 0
	rest := text
	for len(rest) > 0 {
		r, size := utf8.DecodeRuneInString(rest)
		if r != ' ' && r != '\t' {
			break
		}
		leading++
		rest = rest[size:]
	}

	for _, mp := range markerPatterns {
		loc := mp.re.FindStringSubmatchIndex(rest)
		if loc == nil {
			continue
		}
		markerText := rest[loc[0]:loc[1]]
		afterMarker := rest[loc[1]:]
		trailing := len(afterMarker) > 0 && afterMarker[0] == ' '
		return Marker{
			Kind:          mp.kind,
			Text:          markerText,
			LeadingSpaces: leading,
			TrailingSpace: trailing,
		}, true
	}
	return Marker{}, false
}

// emWidths is the fixed per-character em-width table: ASCII digits and
// common punctuation are narrower than the full-width Korean syllable
// block, which this table treats uniformly at 1.0 em (spec §4.8's "fixed
// table covering ASCII digits/punctuation, Korean syllables, circled
// numerals, arrows, bullets, Roman letters").
var emWidths = map[rune]float64{
	'0': 0.5, '1': 0.5, '2': 0.5, '3': 0.5, '4': 0.5,
	'5': 0.5, '6': 0.5, '7': 0.5, '8': 0.5, '9': 0.5,
	'.': 0.25, ',': 0.25, '-': 0.4, '–': 0.5, '—': 0.8,
	'(': 0.35, ')': 0.35,
	' ': 0.25, '\t': 1.0,
	'•': 0.6, '◦': 0.6, '▪': 0.6, '‣': 0.6,
	'①': 1.0, '②': 1.0, '③': 1.0, '④': 1.0, '⑤': 1.0,
	'⑥': 1.0, '⑦': 1.0, '⑧': 1.0, '⑨': 1.0, '⑩': 1.0,
	'→': 1.0, '←': 1.0,
	'I': 0.4, 'V': 0.7, 'X': 0.7, 'L': 0.6, 'C': 0.8, 'D': 0.8, 'M': 1.0,
}

const defaultLatinEmWidth = 0.55
const koreanEmWidth = 1.0
const koreanFontCorrection = 1.3

// isKoreanSyllable reports whether r is in the Hangul syllable block.
func isKoreanSyllable(r rune) bool { return r >= 0xAC00 && r <= 0xD7A3 }

// emWidth returns the per-character em width for r, falling back to the
// default Latin-letter width for anything not in the fixed table and not
// recognized as a Korean syllable.
func emWidth(r rune) float64 {
	if w, ok := emWidths[r]; ok {
		return w
	}
	if isKoreanSyllable(r) {
		return koreanEmWidth
	}
	if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
		return defaultLatinEmWidth
	}
	return defaultLatinEmWidth
}

// hwpUnitPerPoint is the fixed conversion factor from points to the
// editor's internal length unit (spec GLOSSARY: "1 point = 100 HWPUNIT").
const hwpUnitPerPoint = 100.0

// WidthHWPUnit computes the marker's rendered width in HWPUNIT: the sum of
// each character's em width (including leading whitespace and the marker
// glyph itself, plus its trailing space if present), multiplied by the
// font size in points, multiplied by the fixed Korean-font correction
// factor, multiplied by the point→HWPUnit conversion factor.
func (m Marker) WidthHWPUnit(fontSizePt float64) int {
	var emSum float64
	for i := 0; i < m.LeadingSpaces; i++ {
		emSum += emWidths[' ']
	}
	for _, r := range m.Text {
		emSum += emWidth(r)
	}
	if m.TrailingSpace {
		emSum += emWidths[' ']
	}
	return int(emSum * fontSizePt * koreanFontCorrection * hwpUnitPerPoint)
}
