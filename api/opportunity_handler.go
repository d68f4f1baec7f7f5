package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
	"github.com/chiaview/site-backend/services"
)

type opportunityHandler struct {
	responder       Responder
	logger          zerolog.Logger
	opportunityRepo *database.OpportunityRepo
}

func newOpportunityHandler(opportunityRepo *database.OpportunityRepo) opportunityHandler {
	logger := log.With().Str("handlerName", "opportunityHandler").Logger()

	return opportunityHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		opportunityRepo: opportunityRepo,
	}
}

type opportunityRequest struct {
	Title       string    `json:"title" validate:"notblank"`
	Time        string    `json:"time" validate:"notblank"`
	Description string    `json:"description" validate:"notblank"`
	Category    string    `json:"category"`
	Published   *jsonBool `json:"published"`
}

type opportunityPatch struct {
	Title       *string   `json:"title"`
	Time        *string   `json:"time"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Published   *jsonBool `json:"published"`
}

type OpportunityResponse struct {
	Success     bool                `json:"success"`
	Opportunity *models.Opportunity `json:"opportunity"`
}

type OpportunityCollection struct {
	Success       bool                 `json:"success"`
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int64                `json:"total"`
	Offset        int                  `json:"offset"`
	Limit         int                  `json:"limit"`
}

// getAllOpportunities lists volunteer opportunities newest first
// @Summary List volunteer opportunities
// @Tags Opportunities
// @Produce json
// @Param query query string false "Search over title and description"
// @Param category query string false "Category"
// @Param published query string false "true or false"
// @Success 200 {object} OpportunityCollection
// @Router /api/opportunities [get]
func (h opportunityHandler) getAllOpportunities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pageParams(r, 20)
		filter := database.OpportunityFilter{
			Query:     strings.TrimSpace(strings.ReplaceAll(stringParam(r, "query"), ",", " ")),
			Published: boolParam(r, "published"),
		}
		if category := stringParam(r, "category"); category != "All" {
			filter.Category = category
		}

		opportunities, total, err := h.opportunityRepo.List(r.Context(), filter, page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "opportunities", err))
			return
		}

		h.responder.WriteJSON(w, OpportunityCollection{
			Success:       true,
			Opportunities: opportunities,
			Total:         total,
			Offset:        page.Offset,
			Limit:         page.Limit,
		})
	}
}

func (h opportunityHandler) getOpportunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opportunity, err := h.opportunityRepo.FindByKey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "opportunity", err))
			return
		}

		h.responder.WriteJSON(w, OpportunityResponse{Success: true, Opportunity: opportunity})
	}
}

// createOpportunity creates a published opportunity unless told otherwise
// @Summary Create volunteer opportunity
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param opportunity body opportunityRequest true "Opportunity data"
// @Success 201 {object} OpportunityResponse
// @Failure 400 {object} ErrorResponse "Missing required fields: title, time, description"
// @Router /api/opportunities [post]
func (h opportunityHandler) createOpportunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req opportunityRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		req.Title = strings.TrimSpace(req.Title)
		req.Time = strings.TrimSpace(req.Time)
		req.Description = strings.TrimSpace(req.Description)
		if err := validateRequest(req, errs.NewMissingFieldsError("title", "time", "description")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		opportunity := models.Opportunity{
			Title:       services.Sanitize(req.Title),
			Time:        services.Sanitize(req.Time),
			Description: services.Sanitize(req.Description),
			Category:    services.Sanitize(strings.TrimSpace(orDefault(req.Category, "Outreach"))),
			Published:   boolOr(req.Published, true),
		}
		if err := h.opportunityRepo.Add(r.Context(), &opportunity); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "opportunity", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, OpportunityResponse{Success: true, Opportunity: &opportunity})
	}
}

func (h opportunityHandler) updateOpportunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req opportunityPatch
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string]any{"updated_at": time.Now()}
		setSanitized(fields, "title", req.Title)
		setSanitized(fields, "time", req.Time)
		setSanitized(fields, "description", req.Description)
		setSanitized(fields, "category", req.Category)
		if req.Published != nil {
			fields["published"] = bool(*req.Published)
		}

		opportunity, err := h.opportunityRepo.Update(r.Context(), chi.URLParam(r, "id"), fields)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "opportunity", err))
			return
		}

		h.responder.WriteJSON(w, OpportunityResponse{Success: true, Opportunity: opportunity})
	}
}

func (h opportunityHandler) deleteOpportunity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.opportunityRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "opportunity", err))
			return
		}

		h.responder.WriteJSON(w, DeletedResponse{Success: true})
	}
}
