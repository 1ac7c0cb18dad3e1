package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/icons"
)

// LoadRules fetches and normalizes the icon rule list. Any failure is logged
// and yields an empty list, so every card falls back to the default icon.
func (c *Client) LoadRules(ctx context.Context) icons.Rules {
	data, err := c.fetch(ctx, c.rules)
	if err == nil {
		var rules icons.Rules
		rules, err = decodeRules(data)
		if err == nil {
			c.logger.Debug("icon rules loaded", slog.Int("count", len(rules)))
			return rules
		}
	}
	c.logger.Warn("could not load icon rules",
		slog.String("resource", c.rules),
		slog.String("error", err.Error()))
	return icons.Rules{}
}

func decodeRules(data []byte) (icons.Rules, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("source: decode rules: %w: %v", apperr.ErrBadPayload, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("source: decode rules: %w: not an array", apperr.ErrBadPayload)
	}
	return icons.Normalize(raw), nil
}
