package api

import (
	"github.com/starford/depot/internal/card"
)

// CardItem is a card together with its visibility under the active query.
type CardItem struct {
	card.Card
	Index   int  `json:"index" example:"0"`
	Visible bool `json:"visible" example:"true"`
}

// CatalogResponse is the response of a one-shot catalog load.
type CatalogResponse struct {
	Query string     `json:"query" example:"zip"`
	Cards []CardItem `json:"cards" validate:"required"`
	Total int        `json:"total" example:"3"`
}

// FilterResponse reports the visibility of every card of a view, in render order.
type FilterResponse struct {
	Query   string `json:"query" example:"zip"`
	Visible []bool `json:"visible" validate:"required"`
	Matches int    `json:"matches" example:"1"`
}

// cardEvent is the data of a streamed "card" event.
type cardEvent struct {
	Index   int    `json:"index"`
	Visible bool   `json:"visible"`
	HTML    string `json:"html"`
}

// failedEvent is the data of a streamed "failed" event.
type failedEvent struct {
	HTML string `json:"html"`
}

// doneEvent is the data of the final streamed "done" event.
type doneEvent struct {
	Cards int `json:"cards"`
}
