// Package htmlsanitize cleans user-supplied HTML before it is stored or
// served. Sanitize keeps safe formatting (rendered post bodies); StripTags
// removes all markup (chat messages, titles, notes).
package htmlsanitize

import (
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce   sync.Once
	ugc       *bluemonday.Policy
	strictOne sync.Once
	strict    *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	ugcOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
		ugc = p
	})
	return ugc
}

func strictPolicy() *bluemonday.Policy {
	strictOne.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// Sanitize returns s with unsafe elements and attributes removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugcPolicy().Sanitize(s)
}

// StripTags removes every tag from s and returns plain text. Entities are
// decoded so "A & B" stays "A & B"; decoding can surface new markup
// ("&lt;b&gt;"), so it strips again until a pass removes nothing.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	for range maxStripPasses {
		plain := html.UnescapeString(s)
		clean := strictPolicy().Sanitize(plain)
		if html.UnescapeString(clean) == plain {
			return plain
		}
		s = clean
	}
	return strictPolicy().Sanitize(s)
}

const maxStripPasses = 8
