// Package pageref turns page links and ids pasted by users into page ids.
package pageref

import (
	"net/url"
	"regexp"
	"strings"
)

// idPattern matches a page id with or without dashes.
var idPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{12}`)

// ExtractPageIDs returns every page id in text in canonical form.
// Returns a deduplicated list preserving the order of first occurrence.
func ExtractPageIDs(text string) []string {
	matches := idPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		id := canonical(m)
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// Normalize resolves a page reference to a page id. A link resolves to the
// page it opens: the peeked page (?p=) when present, otherwise the id at
// the end of the path. Anything without an id is returned trimmed.
func Normalize(ref string) string {
	ref = strings.TrimSpace(ref)

	if u, err := url.Parse(ref); err == nil && u.Host != "" {
		if p := u.Query().Get("p"); p != "" {
			if ids := ExtractPageIDs(p); len(ids) > 0 {
				return ids[0]
			}
		}
		if ids := ExtractPageIDs(u.Path); len(ids) > 0 {
			return ids[len(ids)-1]
		}
		return ref
	}

	if ids := ExtractPageIDs(ref); len(ids) == 1 && len(stripDashes(ref)) == 32 {
		return ids[0]
	}
	return ref
}

// URL returns the notion.so link for a page reference, or "" when ref holds
// no page id. Links are returned unchanged.
func URL(ref string) string {
	ref = strings.TrimSpace(ref)
	if u, err := url.Parse(ref); err == nil && u.Host != "" {
		return ref
	}
	id := Normalize(ref)
	if !idPattern.MatchString(id) || len(id) != 36 {
		return ""
	}
	return "https://www.notion.so/" + stripDashes(id)
}

// canonical lowercases an id and lays it out as 8-4-4-4-12.
func canonical(id string) string {
	h := strings.ToLower(stripDashes(id))
	return h[0:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:32]
}

func stripDashes(s string) string {
	return strings.ReplaceAll(s, "-", "")
}
