// Package contacts classifies a conversation partner into a social
// bucket using a deterministic string-matching heuristic over the
// contact's display name and organization. No I/O, no AI calls.
package contacts

import (
	"strings"
	"unicode"
)

// Category is the social bucket a contact falls into.
type Category int

const (
	FormalNeutral Category = iota
	Partner
	CloseFamily
	Professional
	CasualPeer
)

func (c Category) String() string {
	switch c {
	case Partner:
		return "partner"
	case CloseFamily:
		return "close_family"
	case Professional:
		return "professional"
	case CasualPeer:
		return "casual_peer"
	default:
		return "formal_neutral"
	}
}

// WritingMode returns the suggested tone for messages to this category.
func (c Category) WritingMode() string {
	switch c {
	case Partner:
		return "intimate"
	case CloseFamily:
		return "warm"
	case Professional:
		return "professional"
	case CasualPeer:
		return "casual"
	default:
		return "neutral"
	}
}

// Contact is the classifier input: display name plus organization as
// the platform address book reports them.
type Contact struct {
	Name         string
	Organization string
}

// Classifier buckets contacts by keyword heuristics.
type Classifier struct{}

// NewClassifier returns a ready classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

var (
	professionalTitles = []string{"dr", "prof", "atty", "rev"}

	partnerKeywords = []string{
		"bae", "babe", "baby", "honey", "sweetheart", "darling",
		"my love", "love of my life", "wifey", "hubby", "boo",
	}

	familyKeywords = []string{
		"mom", "mum", "mommy", "mother", "dad", "daddy", "father",
		"grandma", "grandpa", "granny", "nana", "papa",
		"sister", "brother", "sis", "bro", "aunt", "auntie", "uncle",
	}

	casualKeywords = []string{"lol", "lmao", "dude", "bestie", "homie", "gym"}

	partnerEmoji = []rune{'❤', '💕', '💖', '💗', '💘', '😘', '🥰'}
	casualEmoji  = []rune{'🍺', '🍻', '🎉', '🔥', '💀', '😂', '🤙'}
)

// Classify buckets the contact. Priority order, highest first: an
// organization or professional title always wins, then partner
// signals, then family, then casual markers. Anything else is formal.
func (cl *Classifier) Classify(c Contact) Category {
	name := strings.TrimSpace(c.Name)
	lower := strings.ToLower(name)

	// "ICE Dad" style emergency-contact prefixes wrap a family name.
	lower = strings.TrimPrefix(lower, "ice ")

	if strings.TrimSpace(c.Organization) != "" {
		return Professional
	}
	words := splitWords(lower)
	if len(words) > 0 && containsWord(professionalTitles, words[0]) {
		return Professional
	}

	if matchesKeyword(lower, words, partnerKeywords) || containsAnyRune(name, partnerEmoji) {
		return Partner
	}

	if matchesKeyword(lower, words, familyKeywords) {
		return CloseFamily
	}

	if matchesKeyword(lower, words, casualKeywords) ||
		containsAnyRune(name, casualEmoji) ||
		strings.Contains(lower, " from ") ||
		isAllLower(name) {
		return CasualPeer
	}

	return FormalNeutral
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// matchesKeyword matches multi-word keywords as substrings and single
// words exactly, so "Madonna" never matches "mom".
func matchesKeyword(lower string, words, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		if containsWord(words, kw) {
			return true
		}
	}
	return false
}

func containsWord(haystack []string, needle string) bool {
	for _, w := range haystack {
		if w == needle {
			return true
		}
	}
	return false
}

func containsAnyRune(s string, set []rune) bool {
	for _, r := range s {
		for _, want := range set {
			if r == want {
				return true
			}
		}
	}
	return false
}

// isAllLower reports whether the name contains letters and none of
// them are uppercase, a strong informality signal ("dave", "alex lol").
func isAllLower(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
