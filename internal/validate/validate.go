package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Username allows 3-50 chars of letters, digits, underscore, dot, dash.
func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Password enforces a minimum length only; complexity is the caller's
// business.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 72 // bcrypt input cap
}

func Rating(n int) bool { return n >= 1 && n <= 5 }

// Feedback trims and enforces the 1000-char cap; empty is allowed.
func Feedback(s *string) (*string, bool) {
	if s == nil {
		return nil, true
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil, true
	}
	if len(t) > 1000 {
		return nil, false
	}
	return &t, true
}

func Quantity(n int) bool { return n >= 1 }

// ProductName requires a non-empty displayable name.
func ProductName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 200 {
		return "", false
	}
	return s, true
}
