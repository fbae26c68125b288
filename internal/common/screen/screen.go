// Package screen validates free-text form input before it reaches the store.
//
// Every field goes through two layers: a structural rule specific to the
// field, then a shared denylist of SQL-looking sequences and keywords. The
// store itself only ever sees parameterized queries; the denylist is defense
// in depth, not the primary injection defense. The keyword check is
// token-bounded (full match, word at the start or end, or a word surrounded
// by single spaces), so "Union" inside a longer surname passes while a
// trailing bare keyword does not.
package screen

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"contactdesk/internal/common"
)

const (
	msgName        = "Only letters, spaces, apostrophes, and hyphens allowed."
	msgEmail       = "Please provide a valid email."
	msgUsername    = "Usernames may contain letters, numbers, @, dashes, underscores, and dots."
	msgPasswordLen = "Passwords must be between 8 and 128 characters."
	msgTooLong     = "Value is too long."
	msgInjection   = "Input contains characters that look like an injection attempt."
	msgUsernameLen = "Usernames must be between 3 and 80 characters."
)

var forbiddenSequences = []string{"--", ";", "/*", "*/"}

var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "UNION"}

var (
	namePattern     = regexp.MustCompile(`^[A-Za-z' -]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@-]+$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Errors collects per-field validation messages, keyed by form field name.
// It satisfies error so services can return it directly.
type Errors map[string]string

func (e Errors) Error() string { return "validation failed" }

func (e Errors) Unwrap() error { return common.ErrValidation }

// rejectInjection applies the shared denylist: literal sequences anywhere
// (case-sensitive), then token-bounded SQL keywords on the uppercased value.
func rejectInjection(value string) bool {
	for _, seq := range forbiddenSequences {
		if strings.Contains(value, seq) {
			return true
		}
	}
	upper := strings.ToUpper(value)
	for _, kw := range sqlKeywords {
		if upper == kw ||
			strings.HasPrefix(upper, kw+" ") ||
			strings.HasSuffix(upper, " "+kw) ||
			strings.Contains(upper, " "+kw+" ") {
			return true
		}
	}
	return false
}

// Name screens a person-name field: non-empty, at most 100 characters,
// letters/spaces/apostrophes/hyphens only, and no denylisted content.
func Name(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return label + " is required."
	}
	if utf8.RuneCountInString(value) > 100 {
		return msgTooLong
	}
	if !namePattern.MatchString(value) {
		return msgName
	}
	if rejectInjection(value) {
		return msgInjection
	}
	return ""
}

// Email screens an email field: non-empty, at most 200 characters, a
// plausible address shape, and no denylisted content.
func Email(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Email is required."
	}
	// Length bounds count characters, not bytes; the address shape admits
	// multibyte runes.
	if utf8.RuneCountInString(value) > 200 {
		return msgTooLong
	}
	if !emailPattern.MatchString(value) {
		return msgEmail
	}
	if rejectInjection(value) {
		return msgInjection
	}
	return ""
}

// Username screens a login name: 3-80 characters from the allowed set.
func Username(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Username is required."
	}
	if n := utf8.RuneCountInString(value); n < 3 || n > 80 {
		return msgUsernameLen
	}
	if !usernamePattern.MatchString(value) {
		return msgUsername
	}
	return ""
}

// Password screens a password for length only. Passwords are hashed, never
// stored or echoed, so the denylist does not apply.
func Password(value string) string {
	if value == "" {
		return "Password is required."
	}
	if n := utf8.RuneCountInString(value); n < 8 || n > 128 {
		return msgPasswordLen
	}
	return ""
}

// Contact screens all three contact fields together. Returns nil when every
// field passes; otherwise a map of field name to message. Callers must apply
// either all fields or none.
func Contact(firstName, lastName, email string) Errors {
	errs := Errors{}
	if msg := Name("First name", firstName); msg != "" {
		errs["first_name"] = msg
	}
	if msg := Name("Last name", lastName); msg != "" {
		errs["last_name"] = msg
	}
	if msg := Email(email); msg != "" {
		errs["email"] = msg
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Credentials screens the login form fields.
func Credentials(username, password string) Errors {
	errs := Errors{}
	if msg := Username(username); msg != "" {
		errs["username"] = msg
	}
	if msg := Password(password); msg != "" {
		errs["password"] = msg
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
