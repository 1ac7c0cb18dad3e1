package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cast"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/icons"
	"github.com/starford/depot/internal/models"
)

// Manifest fetches and decodes the file manifest. Unlike rule loading, every
// failure is returned to the caller.
func (c *Client) Manifest(ctx context.Context) ([]models.FileDescriptor, error) {
	data, err := c.fetch(ctx, c.manifest)
	if err != nil {
		return nil, err
	}
	files, err := DecodeManifest(data)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("manifest loaded", slog.Int("files", len(files)))
	return files, nil
}

// DecodeManifest decodes a JSON array of {name, url, tags} records. Fields are
// coerced permissively; tags that are missing or not an array become empty.
func DecodeManifest(data []byte) ([]models.FileDescriptor, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("source: decode manifest: %w: %v", apperr.ErrBadPayload, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("source: decode manifest: %w: not an array", apperr.ErrBadPayload)
	}
	files := make([]models.FileDescriptor, 0, len(raw))
	for _, item := range raw {
		m, _ := item.(map[string]any)
		files = append(files, models.FileDescriptor{
			Name: icons.Text(m["name"], ""),
			URL:  icons.Text(m["url"], ""),
			Tags: tagList(m["tags"]),
		})
	}
	return files, nil
}

func tagList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	tags := make([]string, 0, len(list))
	for _, t := range list {
		tags = append(tags, cast.ToString(t))
	}
	return tags
}
