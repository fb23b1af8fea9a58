package services

import (
	"strings"
	"unicode/utf16"
)

const PasswordSymbols = "@$!%*?&#"

const minPasswordLen = 8

// PasswordCheck is the per-rule breakdown shown next to the password field.
type PasswordCheck struct {
	Length  bool `json:"length"`
	Upper   bool `json:"hasUpper"`
	Lower   bool `json:"hasLower"`
	Number  bool `json:"hasNumber"`
	Special bool `json:"hasSpecial"`
}

func (c PasswordCheck) OK() bool {
	return c.Length && c.Upper && c.Lower && c.Number && c.Special
}

// CheckPassword evaluates each rule. Letters and digits are ASCII only.
// Length is counted in UTF-16 code units, so a character outside the Basic
// Multilingual Plane such as an emoji counts twice.
func CheckPassword(p string) PasswordCheck {
	c := PasswordCheck{Length: len(utf16.Encode([]rune(p))) >= minPasswordLen}
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			c.Upper = true
		case r >= 'a' && r <= 'z':
			c.Lower = true
		case r >= '0' && r <= '9':
			c.Number = true
		case strings.ContainsRune(PasswordSymbols, r):
			c.Special = true
		}
	}
	return c
}

func IsPasswordValid(p string) bool { return CheckPassword(p).OK() }
