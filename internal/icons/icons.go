// Package icons maps file names and tags to a representative emoji using an
// ordered keyword rule list.
package icons

import (
	"strings"

	"github.com/spf13/cast"
)

// Fallback is returned when no rule matches.
const Fallback = "📦"

// Rule pairs a lowercase keyword with the emoji shown when it matches.
type Rule struct {
	Keyword string `json:"keyword"`
	Emoji   string `json:"emoji"`
}

// Rules is an ordered rule list. The first matching rule wins.
type Rules []Rule

// Resolve returns the emoji of the first rule whose keyword occurs in the
// lowercased name and space-joined tags, or Fallback.
func (rs Rules) Resolve(name string, tags []string) string {
	text := strings.ToLower(name + " " + strings.Join(tags, " "))
	for _, r := range rs {
		if r.Keyword == "" {
			continue
		}
		if strings.Contains(text, r.Keyword) {
			return r.Emoji
		}
	}
	return Fallback
}

// Normalize converts decoded JSON rule records into Rules. Keywords are
// lowercased; missing or falsy keywords become empty and are never matched;
// missing or falsy emoji become Fallback. Non-object entries are kept as
// empty rules so the list length follows the source.
func Normalize(raw []any) Rules {
	out := make(Rules, 0, len(raw))
	for _, item := range raw {
		m, _ := item.(map[string]any)
		out = append(out, Rule{
			Keyword: strings.ToLower(Text(m["keyword"], "")),
			Emoji:   Text(m["emoji"], Fallback),
		})
	}
	return out
}

// Text coerces a decoded JSON scalar to a string. Falsy values (nil, false,
// zero, empty string) yield def, as do objects and arrays, which have no
// useful text form.
func Text(v any, def string) string {
	switch x := v.(type) {
	case nil:
		return def
	case bool:
		if !x {
			return def
		}
	case float64:
		if x == 0 {
			return def
		}
	case string:
		if x == "" {
			return def
		}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}
