// Package matching scores, filters and orders candidate peers and shapes
// storage rows into the view models the client renders.
package matching

import "strings"

// synonyms maps known variants to the canonical tag
var synonyms = map[string]string{
	"anxious":             "anxiety",
	"anxiety disorder":    "anxiety",
	"panic attacks":       "anxiety",
	"depressed":           "depression",
	"low mood":            "depression",
	"stressed":            "stress",
	"lonely":              "loneliness",
	"isolation":           "loneliness",
	"grieving":            "grief",
	"bereavement":         "grief",
	"loss":                "grief",
	"ptsd":                "trauma",
	"insomnia":            "sleep",
	"self esteem":         "self-esteem",
	"self-worth":          "self-esteem",
	"relationship":        "relationships",
	"relationship issues": "relationships",
}

// NormalizeTag lower-cases, trims and collapses whitespace, then maps known
// synonyms to their canonical form.
func NormalizeTag(tag string) string {
	t := strings.Join(strings.Fields(strings.ToLower(tag)), " ")
	if canon, ok := synonyms[t]; ok {
		return canon
	}
	return t
}

// NormalizePreferences canonicalizes every tag, dropping empties and
// duplicates. The first occurrence wins.
func NormalizePreferences(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := NormalizeTag(tag)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitPreferences expands elements that hold a comma-joined list, as older
// rows stored them.
func SplitPreferences(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if !strings.Contains(r, ",") {
			out = append(out, r)
			continue
		}
		out = append(out, strings.Split(r, ",")...)
	}
	return out
}
