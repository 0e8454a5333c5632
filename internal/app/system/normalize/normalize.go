// Package normalize canonicalizes user input before it is compared or
// stored.
package normalize

import "strings"

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Email trims and lowercases an email address.
func Email(s string) string { return lower(s) }

// Name trims a display name. Case is kept.
func Name(s string) string { return strings.TrimSpace(s) }

func AuthMethod(s string) string { return lower(s) }

// Status is used for user statuses and invitation responses alike.
func Status(s string) string { return lower(s) }

// Role is a collaborator role: viewer or editor.
func Role(s string) string { return lower(s) }

// Currency is an ISO 4217 code, so it is uppercased.
func Currency(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Tags lowercases and trims each tag, dropping blanks and repeats. The
// first occurrence keeps its position. The result is never nil.
func Tags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = lower(t)
		if t == "" || contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
