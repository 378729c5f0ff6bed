// Package cleaner holds the lead normalization and deduplication rules shared
// by the import pipeline and manual entry.
package cleaner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

// NormalizeName lowercases the input and capitalizes the first rune of each
// space-separated token. Interior runs of spaces are preserved as-is; only
// leading and trailing whitespace is trimmed.
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}

	words := strings.Split(strings.ToLower(raw), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + word[size:]
	}

	return strings.TrimSpace(strings.Join(words, " "))
}

// NormalizePhone strips every character that is not a decimal digit. No
// length validation or country-code handling happens here; the digit string
// is stored verbatim.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	digits.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// IsDuplicate reports whether the candidate shares a non-empty email or a
// non-empty phone with any existing lead. Empty fields never match, so two
// all-empty leads do not collapse together. Comparison is exact string
// equality on the already-normalized values.
func IsDuplicate(candidate entity.Lead, existing []entity.Lead) bool {
	for _, lead := range existing {
		if candidate.Email != "" && lead.Email == candidate.Email {
			return true
		}
		if candidate.Phone != "" && lead.Phone == candidate.Phone {
			return true
		}
	}
	return false
}

// DuplicateIndex answers the same question as IsDuplicate but in constant
// time per lookup. Import batches build it once over the existing lead set
// and add each accepted row, so a batch stays O(n+m) instead of rescanning
// the store per row.
type DuplicateIndex struct {
	emails map[string]struct{}
	phones map[string]struct{}
}

// NewDuplicateIndex indexes the email and phone of every existing lead.
func NewDuplicateIndex(existing []entity.Lead) *DuplicateIndex {
	ix := &DuplicateIndex{
		emails: make(map[string]struct{}, len(existing)),
		phones: make(map[string]struct{}, len(existing)),
	}
	for _, lead := range existing {
		ix.Add(lead.Email, lead.Phone)
	}
	return ix
}

// Seen reports whether a non-empty email or phone is already indexed.
func (ix *DuplicateIndex) Seen(email, phone string) bool {
	if email != "" {
		if _, ok := ix.emails[email]; ok {
			return true
		}
	}
	if phone != "" {
		if _, ok := ix.phones[phone]; ok {
			return true
		}
	}
	return false
}

// Add records the contact keys of an accepted lead. Empty values are skipped.
func (ix *DuplicateIndex) Add(email, phone string) {
	if email != "" {
		ix.emails[email] = struct{}{}
	}
	if phone != "" {
		ix.phones[phone] = struct{}{}
	}
}
