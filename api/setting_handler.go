package api

import (
	"bytes"
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

type settingHandler struct {
	responder   Responder
	logger      zerolog.Logger
	settingRepo *database.SettingRepo
}

func newSettingHandler(settingRepo *database.SettingRepo) settingHandler {
	logger := log.With().Str("handlerName", "settingHandler").Logger()

	return settingHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		settingRepo: settingRepo,
	}
}

// settingRequest accepts any JSON value. An absent value fails validation; an explicit
// null does not.
type settingRequest struct {
	Key         string          `json:"key" validate:"notblank"`
	Value       json.RawMessage `json:"value" validate:"required"`
	Description string          `json:"description"`
}

type settingPatch struct {
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description"`
}

type SettingResponse struct {
	Success bool            `json:"success"`
	Setting *models.Setting `json:"setting"`
}

type SettingCollection struct {
	Success  bool             `json:"success"`
	Settings []models.Setting `json:"settings"`
}

// settingValue stores a JSON string as its text and any other value as JSON.
func settingValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

func (h settingHandler) getAllSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := h.settingRepo.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "settings", err))
			return
		}

		h.responder.WriteJSON(w, SettingCollection{Success: true, Settings: settings})
	}
}

// saveSetting creates or replaces the setting with the given key
// @Summary Upsert website setting
// @Tags Settings
// @Accept json
// @Produce json
// @Param setting body settingRequest true "Setting"
// @Success 200 {object} SettingResponse
// @Failure 400 {object} ErrorResponse "Missing key or value"
// @Failure 500 {object} ErrorResponse "Failed to save setting"
// @Router /api/settings [post]
func (h settingHandler) saveSetting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settingRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateRequest(req, errs.NewBadRequestError("Missing key or value")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		setting, err := h.settingRepo.Upsert(r.Context(), &models.Setting{
			Key:         req.Key,
			Value:       settingValue(req.Value),
			Description: stringOrNil(req.Description),
			UpdatedAt:   time.Now(),
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("save", "setting", err))
			return
		}

		h.responder.WriteJSON(w, SettingResponse{Success: true, Setting: setting})
	}
}

func (h settingHandler) getSetting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setting, err := h.settingRepo.FindByKey(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "setting", err))
			return
		}

		h.responder.WriteJSON(w, SettingResponse{Success: true, Setting: setting})
	}
}

// updateSetting always rewrites the description; an omitted one is cleared.
func (h settingHandler) updateSetting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settingPatch
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string]any{
			"description": stringOrNil(req.Description),
			"updated_at":  time.Now(),
		}
		if req.Value != nil {
			fields["value"] = settingValue(req.Value)
		}

		setting, err := h.settingRepo.Update(r.Context(), chi.URLParam(r, "key"), fields)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "setting", err))
			return
		}

		h.responder.WriteJSON(w, SettingResponse{Success: true, Setting: setting})
	}
}

func (h settingHandler) deleteSetting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.settingRepo.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "setting", err))
			return
		}

		h.responder.WriteJSON(w, DeletedResponse{Success: true})
	}
}
