// Package card builds the display record for one catalog file.
package card

import (
	"strings"

	"github.com/starford/depot/internal/icons"
	"github.com/starford/depot/internal/models"
	"github.com/starford/depot/internal/sizefmt"
)

const (
	// NotFoundSuffix is appended to the label of files that failed their probe.
	NotFoundSuffix = " [ NOT FOUND ]"

	ActionDownload    = "Download"
	ActionUnavailable = "Unavailable"

	placeholderHref = "#"
)

// Card is the renderer-independent view of one file.
type Card struct {
	Icon      string   `json:"icon"`
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Size      string   `json:"size"`
	Tags      []string `json:"tags"`
	Href      string   `json:"href"`
	Download  bool     `json:"download"`
	Available bool     `json:"available"`
	Action    string   `json:"action"`

	// Lowercased search keys computed once at build time.
	NameKey string `json:"-"`
	TagsKey string `json:"-"`
}

// Build composes a Card from a manifest entry and its probe result.
func Build(f models.FileDescriptor, exists bool, size float64, rules icons.Rules) Card {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}

	c := Card{
		Icon:      rules.Resolve(f.Name, tags),
		Name:      f.Name,
		Label:     f.Name,
		Size:      sizefmt.Zero,
		Tags:      tags,
		Href:      placeholderHref,
		Available: exists,
		Action:    ActionUnavailable,
	}
	if exists {
		c.Size = sizefmt.Format(size)
		c.Href = f.URL
		c.Download = true
		c.Action = ActionDownload
	} else {
		c.Label = f.Name + NotFoundSuffix
	}

	c.NameKey = strings.ToLower(c.Label)
	c.TagsKey = strings.ToLower(strings.Join(tags, ","))
	return c
}

// Matches reports whether the lowercased query occurs in the card's label or
// its comma-joined tags.
func (c Card) Matches(query string) bool {
	return strings.Contains(c.NameKey, query) || strings.Contains(c.TagsKey, query)
}
