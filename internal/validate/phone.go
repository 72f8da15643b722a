package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// PhonePlan describes a fixed-length national numbering plan: a country
// calling code, the local trunk prefix and the digits a mobile number may
// start with after the country code.
type PhonePlan struct {
	CountryCode      string
	TrunkPrefix      string
	ValidFirstDigits string

	pattern *regexp.Regexp
}

// DefaultPhonePlan is the Nigerian mobile plan: +234 [789][01] XXXXXXXX.
var DefaultPhonePlan = mustPhonePlan("234", "0", "789")

var phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "")

// NewPhonePlan compiles a plan. countryCode and validFirstDigits must be digits only.
func NewPhonePlan(countryCode, trunkPrefix, validFirstDigits string) (*PhonePlan, error) {
	if !isDigits(countryCode) {
		return nil, fmt.Errorf("phone plan: invalid country code %q", countryCode)
	}
	if !isDigits(validFirstDigits) {
		return nil, fmt.Errorf("phone plan: invalid first digits %q", validFirstDigits)
	}
	if trunkPrefix != "" && !isDigits(trunkPrefix) {
		return nil, fmt.Errorf("phone plan: invalid trunk prefix %q", trunkPrefix)
	}
	pattern, err := regexp.Compile(`^\+` + countryCode + `[` + validFirstDigits + `][01]\d{8}$`)
	if err != nil {
		return nil, fmt.Errorf("phone plan: %w", err)
	}
	return &PhonePlan{
		CountryCode:      countryCode,
		TrunkPrefix:      trunkPrefix,
		ValidFirstDigits: validFirstDigits,
		pattern:          pattern,
	}, nil
}

func mustPhonePlan(countryCode, trunkPrefix, validFirstDigits string) *PhonePlan {
	p, err := NewPhonePlan(countryCode, trunkPrefix, validFirstDigits)
	if err != nil {
		panic(err)
	}
	return p
}

// Normalize converts raw into the canonical +<cc>XXXXXXXXXX form and
// validates it. Numbers that still don't fit the plan are rejected, never
// coerced.
func (p *PhonePlan) Normalize(raw string) (string, error) {
	cleaned := phoneStripper.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", Errorf("phone", "required", "phone number is required")
	}

	prefix := "+" + p.CountryCode
	switch {
	case strings.HasPrefix(cleaned, prefix):
	case p.TrunkPrefix != "" && strings.HasPrefix(cleaned, p.TrunkPrefix):
		cleaned = prefix + strings.TrimPrefix(cleaned, p.TrunkPrefix)
	case strings.HasPrefix(cleaned, p.CountryCode):
		cleaned = "+" + cleaned
	default:
		cleaned = prefix + cleaned
	}

	if !p.pattern.MatchString(cleaned) {
		return "", Errorf("phone", "invalid_phone",
			"%q is not a valid mobile number; expected %s followed by 10 digits starting with one of [%s]",
			raw, prefix, p.ValidFirstDigits)
	}
	return cleaned, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
