// Package spam classifies contact form submissions with cheap, explainable
// heuristics. It never calls external services.
package spam

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/waitlist/backend/internal/validate"
)

// Rejection codes carried in validate.ValidationError.Code.
const (
	CodeHoneypot  = "honeypot"
	CodeLinks     = "excessive_links"
	CodeGibberish = "gibberish"
	CodeRepeats   = "repeated_characters"
	CodeKeywords  = "spam_keywords"
)

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// Submission is the free text the engine inspects.
type Submission struct {
	Name     string
	Subject  string
	Message  string
	Honeypot string
}

// Engine holds the keyword patterns and thresholds.
type Engine struct {
	patterns []Pattern

	// MaxLinks is the most URLs a message body may contain.
	MaxLinks int
	// KeywordThreshold is how many distinct patterns must fire to reject.
	KeywordThreshold int
	// MinGibberishLength is the shortest text the gibberish check looks at.
	MinGibberishLength int
	// MinVowelRatio is the lowest acceptable vowel-to-consonant ratio.
	MinVowelRatio float64
	// MaxSymbolRatio is the highest acceptable share of characters that are
	// neither alphanumeric, punctuation nor whitespace.
	MaxSymbolRatio float64
	// MaxRepeat is the longest allowed run of one character.
	MaxRepeat int
}

// New returns an Engine using the given patterns and default thresholds.
func New(patterns []Pattern) *Engine {
	return &Engine{
		patterns:           patterns,
		MaxLinks:           2,
		KeywordThreshold:   2,
		MinGibberishLength: 10,
		MinVowelRatio:      0.1,
		MaxSymbolRatio:     0.3,
		MaxRepeat:          9,
	}
}

// Default returns an Engine using DefaultPatterns.
func Default() *Engine {
	return New(DefaultPatterns)
}

// Check runs every rule. The honeypot short-circuits; field rules reject on
// their own; keyword hits only reject once KeywordThreshold distinct
// patterns fire across name, subject and message.
func (e *Engine) Check(s Submission) error {
	if err := e.CheckHoneypot(s.Honeypot); err != nil {
		return err
	}
	if err := e.CheckGibberish("subject", s.Subject); err != nil {
		return err
	}
	if err := e.CheckGibberish("message", s.Message); err != nil {
		return err
	}
	if err := e.CheckLinks(s.Message); err != nil {
		return err
	}

	combined := s.Name + " " + s.Subject + " " + s.Message
	if err := e.CheckRepeats(combined); err != nil {
		return err
	}
	if hits := e.KeywordHits(combined); len(hits) >= e.KeywordThreshold {
		return validate.Errorf("message", CodeKeywords, "message looks like spam (matched: %s)", strings.Join(hits, ", "))
	}
	return nil
}

// CheckHoneypot rejects any value in the hidden field, whitespace included.
func (e *Engine) CheckHoneypot(value string) error {
	if value != "" {
		return validate.Errorf("website", CodeHoneypot, "submission rejected")
	}
	return nil
}

// CheckLinks rejects a message body with more than MaxLinks URLs.
func (e *Engine) CheckLinks(message string) error {
	if n := len(urlPattern.FindAllStringIndex(message, -1)); n > e.MaxLinks {
		return validate.Errorf("message", CodeLinks, "message contains too many links (%d, at most %d allowed)", n, e.MaxLinks)
	}
	return nil
}

// CheckGibberish rejects keyboard mashing: text with almost no vowels, or
// text dominated by symbols.
func (e *Engine) CheckGibberish(field, text string) error {
	text = strings.TrimSpace(text)
	total := utf8.RuneCountInString(text)
	if total < e.MinGibberishLength {
		return nil
	}

	var vowels, consonants, symbols int
	for _, r := range text {
		switch {
		case isASCIILetter(r):
			if strings.ContainsRune("aeiouAEIOU", r) {
				vowels++
			} else {
				consonants++
			}
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSpace(r):
		default:
			symbols++
		}
	}

	if consonants > 0 && float64(vowels)/float64(consonants) < e.MinVowelRatio {
		return validate.Errorf(field, CodeGibberish, "%s doesn't look like real text", field)
	}
	if float64(symbols)/float64(total) > e.MaxSymbolRatio {
		return validate.Errorf(field, CodeGibberish, "%s contains too many special characters", field)
	}
	return nil
}

// CheckRepeats rejects runs of more than MaxRepeat identical characters.
func (e *Engine) CheckRepeats(text string) error {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > e.MaxRepeat {
			return validate.Errorf("message", CodeRepeats, "text contains %d or more repeated characters", e.MaxRepeat+1)
		}
	}
	return nil
}

// KeywordHits returns the names of the distinct patterns that match text.
func (e *Engine) KeywordHits(text string) []string {
	var hits []string
	for _, p := range e.patterns {
		if p.Expr.MatchString(text) {
			hits = append(hits, p.Name)
		}
	}
	return hits
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
