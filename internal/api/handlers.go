package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/catalog"
	"github.com/starford/depot/internal/render"
	"github.com/starford/depot/internal/search"
	"github.com/starford/depot/internal/view"
)

// PageOptions configures the catalog page.
type PageOptions struct {
	Title    string
	Manifest string // shown in the error panel
	Watch    bool   // pages reload on catalog.changed
}

// Handler holds the page and API route handlers.
type Handler struct {
	loader *catalog.Loader
	views  *view.Registry
	html   *render.HTML
	page   PageOptions
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(loader *catalog.Loader, views *view.Registry, html *render.HTML, page PageOptions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{loader: loader, views: views, html: html, page: page, logger: logger}
}

// Page handles GET /. Every request starts a new view; its cards arrive
// through the view's event stream.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	v := h.views.Create()

	var buf bytes.Buffer
	err := h.html.Page(&buf, render.Page{
		Title:  h.page.Title,
		ViewID: v.ID,
		Watch:  h.page.Watch,
	})
	if err != nil {
		h.logger.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// ViewEvents handles GET /api/views/{id}/events.
//
//	@Summary		Stream the catalog of a page load as Server-Sent Events
//	@Description	Emits one "card" event per file in manifest order, then "done".
//	@Description	A manifest failure emits a single "failed" event instead.
//	@Tags			views
//	@Produce		text/event-stream
//	@Param			id	path	string	true	"View ID"
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Router			/views/{id}/events [get]
func (h *Handler) ViewEvents(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	if err := v.Start(); err != nil {
		writeJSON(w, http.StatusConflict, errorBody("view already loaded"))
		return
	}

	sink, err := newStreamSink(w, h.html, v.Index, h.page.Manifest, h.logger)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}

	if err := h.loader.Load(r.Context(), sink); err != nil {
		h.logger.Warn("view load ended early",
			slog.String("view", v.ID),
			slog.String("error", err.Error()))
		return
	}
	if err := sink.done(); err != nil {
		h.logger.Debug("send done failed", slog.String("view", v.ID), slog.String("error", err.Error()))
	}
}

// Filter handles GET /api/views/{id}/filter.
//
//	@Summary		Filter the cards of a page load
//	@Tags			views
//	@Produce		json
//	@Param			id	path		string	true	"View ID"
//	@Param			q	query		string	false	"Case-insensitive substring of a name or tag"
//	@Success		200	{object}	FilterResponse
//	@Failure		404	{object}	errResponse
//	@Router			/views/{id}/filter [get]
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	visible := v.Index.Apply(q)
	if visible == nil {
		visible = []bool{}
	}
	writeJSON(w, http.StatusOK, FilterResponse{
		Query:   q,
		Visible: visible,
		Matches: countTrue(visible),
	})
}

// Catalog handles GET /api/catalog.
//
//	@Summary		Load the whole catalog once
//	@Tags			catalog
//	@Produce		json
//	@Param			q	query		string	false	"Case-insensitive substring of a name or tag"
//	@Success		200	{object}	CatalogResponse
//	@Failure		502	{object}	errResponse
//	@Router			/catalog [get]
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	var c catalog.Collector
	if err := h.loader.Load(r.Context(), &c); err != nil {
		if c.Err != nil {
			writeJSON(w, http.StatusBadGateway, errorBody("could not load "+h.page.Manifest))
		} else {
			writeJSON(w, http.StatusInternalServerError, errorBody("catalog load interrupted"))
		}
		return
	}

	ix := search.NewIndex()
	for _, cd := range c.Cards {
		ix.Add(cd)
	}
	q := r.URL.Query().Get("q")
	visible := ix.Apply(q)

	items := make([]CardItem, len(c.Cards))
	for i, cd := range c.Cards {
		items[i] = CardItem{Card: cd, Index: i, Visible: visible[i]}
	}
	writeJSON(w, http.StatusOK, CatalogResponse{
		Query: q,
		Cards: items,
		Total: len(items),
	})
}

// view looks up the view named in the URL, replying 404 when it is unknown
// or expired.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) (*view.View, bool) {
	v, err := h.views.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("view not found"))
		} else {
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return nil, false
	}
	return v, true
}
