// Package learning tracks knowledge gaps per analysis cycle and turns
// approved drafts into permanent, traceable articles.
package learning

import (
	"regexp"
	"strings"
)

// PlaceholderTitle is used when a draft carries no Title: marker.
const PlaceholderTitle = "Untitled Learned Article"

// Draft marker syntax: a "Title: ..." line names the article; everything
// after a "Body: " marker is the body. Both markers are case-insensitive.
var (
	titleMarker = regexp.MustCompile(`(?im)^\s*title:[ \t]*(.*)$`)
	bodyMarker  = regexp.MustCompile(`(?is)body:[ \t]*`)
)

// ParseDraft extracts a title and body from free-form draft text. A missing
// title marker yields the placeholder title; a missing body marker makes the
// entire draft text the body, verbatim.
func ParseDraft(draft string) (title, body string) {
	title = PlaceholderTitle
	if m := titleMarker.FindStringSubmatch(draft); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			title = t
		}
	}

	if loc := bodyMarker.FindStringIndex(draft); loc != nil {
		body = strings.TrimSpace(draft[loc[1]:])
	} else {
		body = draft
	}
	return title, body
}
