package model

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func StripEmail(email string) string {
	stripped := strings.ReplaceAll(email, " ", "")
	return strings.ToLower(stripped)
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
