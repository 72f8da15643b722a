package validate

import (
	"net/mail"
	"net/netip"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxPersonNameLength  = 50
	maxSourceLength      = 100
	maxEmailLength       = 320
	maxEmailLocalLength  = 64
	minContactNameLength = 2
	maxContactNameLength = 100
	minSubjectLength     = 5
	maxSubjectLength     = 200
	allCapsSubjectLength = 10
	minMessageLength     = 20
	maxMessageLength     = 5000
	maxIPLength          = 45
	maxUserAgentLength   = 500
)

// PersonName trims, collapses inner whitespace and title-cases a first or
// last name. Letters, spaces, hyphens and apostrophes are allowed.
func PersonName(field, raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", Errorf(field, "required", "%s is required", humanize(field))
	}
	if utf8.RuneCountInString(name) > maxPersonNameLength {
		return "", Errorf(field, "too_long", "%s must be at most %d characters", humanize(field), maxPersonNameLength)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return "", Errorf(field, "invalid_characters", "%s may only contain letters, spaces, hyphens and apostrophes", humanize(field))
		}
	}
	// A Caser is stateful, so each call gets its own.
	return cases.Title(language.Und).String(name), nil
}

// Email checks that raw is a bare RFC 5322 address with a dotted domain and
// returns it trimmed, with its original case.
func Email(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return "", Errorf("email", "required", "email is required")
	}
	if len(addr) > maxEmailLength {
		return "", Errorf("email", "too_long", "email must be at most %d characters", maxEmailLength)
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return "", Errorf("email", "invalid_email", "%q is not a valid email address", addr)
	}
	at := strings.LastIndexByte(addr, '@')
	local, domain := addr[:at], addr[at+1:]
	if len(local) > maxEmailLocalLength {
		return "", Errorf("email", "invalid_email", "%q is not a valid email address", addr)
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", Errorf("email", "invalid_email", "%q is not a valid email address", addr)
	}
	return addr, nil
}

// NormalizeEmail lowercases and trims an e-mail string.
// It normalizes only and does not validate format.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Source validates the optional signup source tag. Blank becomes nil.
func Source(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(s) > maxSourceLength {
		return nil, Errorf("source", "too_long", "source must be at most %d characters", maxSourceLength)
	}
	return &s, nil
}

// ContactName validates the contact form sender name.
func ContactName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(name)
	if n < minContactNameLength {
		return "", Errorf("name", "too_short", "name must be at least %d characters", minContactNameLength)
	}
	if n > maxContactNameLength {
		return "", Errorf("name", "too_long", "name must be at most %d characters", maxContactNameLength)
	}
	if !hasLetter(name) {
		return "", Errorf("name", "no_letters", "name must contain at least one letter")
	}
	return name, nil
}

// Subject validates the contact form subject. Subjects longer than ten
// characters must not be written entirely in capitals.
func Subject(raw string) (string, error) {
	subject := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(subject)
	if n < minSubjectLength {
		return "", Errorf("subject", "too_short", "subject must be at least %d characters", minSubjectLength)
	}
	if n > maxSubjectLength {
		return "", Errorf("subject", "too_long", "subject must be at most %d characters", maxSubjectLength)
	}
	if n > allCapsSubjectLength && hasLetter(subject) && subject == strings.ToUpper(subject) {
		return "", Errorf("subject", "all_caps", "please don't write the subject in all capital letters")
	}
	return subject, nil
}

// Message validates the contact form body.
func Message(raw string) (string, error) {
	msg := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(msg)
	if n < minMessageLength {
		return "", Errorf("message", "too_short", "message must be at least %d characters", minMessageLength)
	}
	if n > maxMessageLength {
		return "", Errorf("message", "too_long", "message must be at most %d characters", maxMessageLength)
	}
	return msg, nil
}

// IPAddress returns the address when it parses as IPv4 or IPv6, otherwise nil.
// The client IP is optional metadata, so bad values are dropped rather than rejected.
func IPAddress(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > maxIPLength {
		return nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return nil
	}
	out := addr.String()
	return &out
}

// UserAgent trims and truncates the user agent to 500 characters. Blank becomes nil.
func UserAgent(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if utf8.RuneCountInString(s) > maxUserAgentLength {
		s = string([]rune(s)[:maxUserAgentLength])
	}
	return &s
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
