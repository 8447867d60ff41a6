package textfilter

import (
	"strings"
)

// blockedFragments are never allowed anywhere in a character name. Names have
// no spaces, so matching is by substring and the list is kept to strings that
// do not occur inside ordinary names.
var blockedFragments = []string{
	"fuck", "shit", "cunt", "bitch", "whore", "slut",
	"nigger", "nigga", "faggot", "retard", "kike", "chink",
	"motherf", "asshole", "dickhead", "bullshit", "wank",
}

// leet folds common digit substitutions back to letters before matching.
var leet = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"8", "b",
	"9", "g",
)

// NameFilter rejects character names containing profanity or slurs.
type NameFilter struct {
	fragments []string
}

// NewNameFilter creates a filter using the built-in block list plus any extra
// fragments given.
func NewNameFilter(extra ...string) *NameFilter {
	f := &NameFilter{fragments: make([]string, 0, len(blockedFragments)+len(extra))}
	f.fragments = append(f.fragments, blockedFragments...)
	for _, e := range extra {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			f.fragments = append(f.fragments, e)
		}
	}
	return f
}

// Allowed reports whether name is free of blocked fragments, both as written
// and with digits read as letters.
func (f *NameFilter) Allowed(name string) bool {
	lower := strings.ToLower(name)
	folded := leet.Replace(lower)
	for _, frag := range f.fragments {
		if strings.Contains(lower, frag) || strings.Contains(folded, frag) {
			return false
		}
	}
	return true
}
