package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
)

type homepageHandler struct {
	responder    Responder
	logger       zerolog.Logger
	homepageRepo *database.HomepageRepo
}

func newHomepageHandler(homepageRepo *database.HomepageRepo) homepageHandler {
	logger := log.With().Str("handlerName", "homepageHandler").Logger()

	return homepageHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		homepageRepo: homepageRepo,
	}
}

type homepageRequest struct {
	Section    string          `json:"section" validate:"notblank"`
	Content    string          `json:"content" validate:"notblank"`
	OrderIndex int             `json:"order_index"`
	Visible    json.RawMessage `json:"visible"`
}

type homepagePatch struct {
	Content    *string         `json:"content"`
	OrderIndex *int            `json:"order_index"`
	Visible    json.RawMessage `json:"visible"`
}

type HomepageSectionResponse struct {
	Success bool                    `json:"success"`
	Section *models.HomepageSection `json:"section"`
}

type HomepageSectionCollection struct {
	Success  bool                     `json:"success"`
	Sections []models.HomepageSection `json:"sections"`
}

// visibleFlag hides a section only when the body says exactly false.
func visibleFlag(raw json.RawMessage) bool {
	return string(raw) != "false"
}

// getAllSections lists homepage sections in display order
// @Summary List homepage sections
// @Tags Homepage
// @Produce json
// @Success 200 {object} HomepageSectionCollection
// @Failure 500 {object} ErrorResponse "Failed to load homepage content"
// @Router /api/homepage [get]
func (h homepageHandler) getAllSections() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sections, err := h.homepageRepo.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "homepage content", err))
			return
		}

		h.responder.WriteJSON(w, HomepageSectionCollection{Success: true, Sections: sections})
	}
}

// saveSection creates the named section or replaces it
// @Summary Upsert homepage section
// @Tags Homepage
// @Accept json
// @Produce json
// @Param section body homepageRequest true "Section data"
// @Success 200 {object} HomepageSectionResponse
// @Failure 400 {object} ErrorResponse "Missing section or content"
// @Failure 500 {object} ErrorResponse "Failed to save homepage content"
// @Router /api/homepage [post]
func (h homepageHandler) saveSection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req homepageRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateRequest(req, errs.NewBadRequestError("Missing section or content")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		section, err := h.homepageRepo.Upsert(r.Context(), &models.HomepageSection{
			Section:    req.Section,
			Content:    req.Content,
			OrderIndex: req.OrderIndex,
			Visible:    visibleFlag(req.Visible),
			UpdatedAt:  time.Now(),
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("save", "homepage content", err))
			return
		}

		h.responder.WriteJSON(w, HomepageSectionResponse{Success: true, Section: section})
	}
}

func (h homepageHandler) getSection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := h.homepageRepo.FindByKey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "section", err))
			return
		}

		h.responder.WriteJSON(w, HomepageSectionResponse{Success: true, Section: section})
	}
}

func (h homepageHandler) updateSection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req homepagePatch
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string]any{"updated_at": time.Now()}
		if req.Content != nil {
			fields["content"] = *req.Content
		}
		if req.OrderIndex != nil {
			fields["order_index"] = *req.OrderIndex
		}
		if req.Visible != nil {
			fields["visible"] = visibleFlag(req.Visible)
		}

		section, err := h.homepageRepo.Update(r.Context(), chi.URLParam(r, "id"), fields)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "section", err))
			return
		}

		h.responder.WriteJSON(w, HomepageSectionResponse{Success: true, Section: section})
	}
}

func (h homepageHandler) deleteSection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.homepageRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "section", err))
			return
		}

		h.responder.WriteJSON(w, DeletedResponse{Success: true})
	}
}
