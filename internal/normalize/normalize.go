// Package normalize provides the string canonicalization used by validation
// and identity matching: diacritic folding, phone digits, and best-effort
// formatters for Swiss AHV numbers, phone numbers, postal codes and email.
//
// All functions are pure and never panic. Formatters return ok=false when the
// input cannot be normalized with confidence; callers keep the raw value then.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AHVPrefix is the country prefix of every Swiss social insurance number.
const AHVPrefix = "756"

// StripDiacritics decomposes s (NFD), removes combining marks and lowercases
// the result. "Müller" and "MULLER" both become "muller".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// CountDiacritics returns how many combining marks s carries once decomposed.
// Used as a richness score when picking the canonical spelling of a name.
func CountDiacritics(s string) int {
	decomposed := norm.NFD.String(s)
	n := 0
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			n++
		}
	}
	return n
}

// Fold is the comparison form of a free-text value: trimmed, diacritics
// stripped, lowercased, inner whitespace collapsed.
func Fold(s string) string {
	return strings.Join(strings.Fields(StripDiacritics(strings.TrimSpace(s))), " ")
}

// PhoneDigits keeps only the ASCII digits of s.
func PhoneDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneKey returns a comparison key for a Swiss phone number so that
// "+41 79 123 45 67", "0041791234567" and "079 123 45 67" compare equal.
// Returns "" when s holds no digits.
func PhoneKey(s string) string {
	d := PhoneDigits(s)
	if d == "" {
		return ""
	}
	d = strings.TrimPrefix(d, "00")
	if strings.HasPrefix(d, "41") && len(d) == 11 {
		return "0" + d[2:]
	}
	return d
}

// AHVKey returns the digits of an AHV number when it has the expected
// 13-digit shape with the 756 prefix, otherwise "".
func AHVKey(s string) string {
	d := PhoneDigits(s)
	if len(d) != 13 || !strings.HasPrefix(d, AHVPrefix) {
		return ""
	}
	return d
}

// FormatAHV renders an AHV number as 756.NNNN.NNNN.NN.
func FormatAHV(s string) (string, bool) {
	d := AHVKey(s)
	if d == "" {
		return "", false
	}
	return d[0:3] + "." + d[3:7] + "." + d[7:11] + "." + d[11:13], true
}

// FormatPhone renders a Swiss number as "+41 79 123 45 67". Numbers that are
// not recognizably Swiss but carry an international prefix are returned as
// "+" followed by their digits.
func FormatPhone(s string) (string, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return "", false
	}
	d := PhoneDigits(raw)
	switch {
	case strings.HasPrefix(raw, "+"):
	case strings.HasPrefix(d, "00"):
		d = d[2:]
	case strings.HasPrefix(d, "0") && len(d) == 10:
		d = "41" + d[1:]
	default:
		return "", false
	}
	if len(d) < 7 || len(d) > 15 {
		return "", false
	}
	if strings.HasPrefix(d, "41") && len(d) == 11 {
		n := d[2:]
		return "+41 " + n[0:2] + " " + n[2:5] + " " + n[5:7] + " " + n[7:9], true
	}
	return "+" + d, true
}

// FormatPLZ trims a postal code and strips a leading country marker such as
// "CH-" or "CH ". The result must be 4 or 5 digits.
func FormatPLZ(s string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, p := range []string{"CH-", "CH ", "D-", "FL-", "FL "} {
		v = strings.TrimPrefix(v, p)
	}
	v = strings.TrimSpace(v)
	if len(v) < 4 || len(v) > 5 {
		return "", false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return v, true
}

// FormatEmail trims and lowercases an address, removing a "mailto:" prefix
// and stray angle brackets. The result must have the x@x.x shape.
func FormatEmail(s string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "mailto:")
	v = strings.Trim(v, "<> ")
	if !IsEmail(v) {
		return "", false
	}
	return v, true
}

// IsEmail reports whether s has a minimal x@x.x shape.
func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

var genderTokens = map[string]string{
	"m":         "M",
	"mannlich":  "M",
	"maennlich": "M",
	"male":      "M",
	"man":       "M",
	"mann":      "M",
	"knabe":     "M",
	"h":         "M",
	"homme":     "M",
	"w":         "W",
	"weiblich":  "W",
	"f":         "W",
	"female":    "W",
	"frau":      "W",
	"madchen":   "W",
	"femme":     "W",
	"d":         "D",
	"divers":    "D",
	"x":         "D",
	"diverse":   "D",
}

// FormatGender maps the localized gender tokens found in LehrerOffice exports
// to M, W or D.
func FormatGender(s string) (string, bool) {
	g, ok := genderTokens[Fold(s)]
	return g, ok
}

// NameKey is the comparison key of a person name: folded surname and first
// name joined by a separator that cannot occur in folded text. Returns ""
// unless both parts are present.
func NameKey(surname, firstname string) string {
	s, f := Fold(surname), Fold(firstname)
	if s == "" || f == "" {
		return ""
	}
	return s + "\x1f" + f
}
