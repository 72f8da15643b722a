package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr.Code
}

func TestPersonName(t *testing.T) {
	is := is.New(t)

	got, err := PersonName("first_name", "  aDA   lovelace ")
	is.NoErr(err)
	is.Equal(got, "Ada Lovelace")

	_, err = PersonName("first_name", "   ")
	is.Equal(codeOf(t, err), "required")

	_, err = PersonName("last_name", strings.Repeat("a", 51))
	is.Equal(codeOf(t, err), "too_long")

	_, err = PersonName("last_name", "R2D2")
	is.Equal(codeOf(t, err), "invalid_characters")
}

func TestEmail(t *testing.T) {
	is := is.New(t)

	got, err := Email("  Jane.Doe@Example.com ")
	is.NoErr(err)
	is.Equal(got, "Jane.Doe@Example.com") // original case kept
	is.Equal(NormalizeEmail(got), "jane.doe@example.com")

	for _, bad := range []string{"", "plainaddress", "a@b", "Jane <jane@example.com>", "a@.com", "a@example.", "a b@example.com"} {
		_, err := Email(bad)
		is.True(err != nil) // bad address rejected
	}
}

func TestSource(t *testing.T) {
	is := is.New(t)

	got, err := Source(nil)
	is.NoErr(err)
	is.True(got == nil)

	blank := "   "
	got, err = Source(&blank)
	is.NoErr(err)
	is.True(got == nil)

	tag := " twitter "
	got, err = Source(&tag)
	is.NoErr(err)
	is.Equal(*got, "twitter")

	long := strings.Repeat("s", 101)
	_, err = Source(&long)
	is.Equal(codeOf(t, err), "too_long")
}

func TestContactName(t *testing.T) {
	is := is.New(t)

	got, err := ContactName("  Jo ")
	is.NoErr(err)
	is.Equal(got, "Jo")

	_, err = ContactName("J")
	is.Equal(codeOf(t, err), "too_short")

	_, err = ContactName("12345")
	is.Equal(codeOf(t, err), "no_letters")
}

func TestSubject(t *testing.T) {
	is := is.New(t)

	_, err := Subject("Hi")
	is.Equal(codeOf(t, err), "too_short")

	_, err = Subject(strings.Repeat("x", 201))
	is.Equal(codeOf(t, err), "too_long")

	_, err = Subject("PLEASE READ THIS NOW")
	is.Equal(codeOf(t, err), "all_caps")

	got, err := Subject("URGENT ASK") // ten characters is allowed
	is.NoErr(err)
	is.Equal(got, "URGENT ASK")

	_, err = Subject("Question about the launch date")
	is.NoErr(err)
}

func TestMessage(t *testing.T) {
	is := is.New(t)

	_, err := Message("   too short   ")
	is.Equal(codeOf(t, err), "too_short")

	_, err = Message(strings.Repeat("a", 5001))
	is.Equal(codeOf(t, err), "too_long")

	got, err := Message("  Hello, I would like to know more.  ")
	is.NoErr(err)
	is.Equal(got, "Hello, I would like to know more.")
}

func TestIPAddress(t *testing.T) {
	is := is.New(t)

	is.Equal(*IPAddress(" 203.0.113.7 "), "203.0.113.7")
	is.Equal(*IPAddress("2001:db8::1"), "2001:db8::1")
	is.True(IPAddress("") == nil)
	is.True(IPAddress("not-an-ip") == nil)
}

func TestUserAgent(t *testing.T) {
	is := is.New(t)

	is.True(UserAgent("  ") == nil)
	is.Equal(*UserAgent("curl/8.0"), "curl/8.0")

	long := UserAgent(strings.Repeat("u", 600))
	is.Equal(len(*long), 500)
}
