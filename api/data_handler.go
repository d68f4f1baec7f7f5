package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/services"
)

// dataHandler serves the schemaless key/value API over one backing store.
type dataHandler struct {
	responder Responder
	logger    zerolog.Logger
	store     services.KVStore
	now       func() time.Time
}

func newDataHandler(store services.KVStore) dataHandler {
	logger := log.With().Str("handlerName", "dataHandler").Str("provider", store.Provider()).Logger()

	return dataHandler{
		responder: NewResponder(logger),
		logger:    logger,
		store:     store,
		now:       time.Now,
	}
}

type saveDataRequest struct {
	Merge bool            `json:"merge"`
	Data  json.RawMessage `json:"data"`
}

type importRequest struct {
	Backup *struct {
		Data map[string]json.RawMessage `json:"data"`
	} `json:"backup"`
}

type DataResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ExportResponse struct {
	Success  bool             `json:"success"`
	Backup   *services.Backup `json:"backup"`
	FileName string           `json:"fileName"`
}

type ImportResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ItemsRestored int    `json:"itemsRestored"`
}

// getData returns the value stored under key, or null.
func (h dataHandler) getData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := h.store.Get(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to retrieve data", err))
			return
		}
		if value == nil {
			value = json.RawMessage("null")
		}

		h.responder.WriteJSON(w, DataResponse{Success: true, Data: value})
	}
}

// saveData writes {data} under key; {merge: true} shallow-merges objects where the
// store supports it.
func (h dataHandler) saveData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveDataRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		key := chi.URLParam(r, "key")
		if key == "" || req.Data == nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Missing key or data"))
			return
		}

		if err := h.store.Set(r.Context(), key, req.Data, req.Merge); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to save data", err))
			return
		}

		h.responder.WriteJSON(w, MessageResponse{Success: true, Message: "Data saved successfully"})
	}
}

func (h dataHandler) deleteData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to delete data", err))
			return
		}

		h.responder.WriteJSON(w, MessageResponse{Success: true, Message: "Data deleted successfully"})
	}
}

// exportData snapshots the whole store as a backup document
// @Summary Export key/value backup
// @Tags Data
// @Produce json
// @Success 200 {object} ExportResponse
// @Failure 500 {object} ErrorResponse "Failed to export data"
// @Router /api/data/export [get]
func (h dataHandler) exportData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backup, fileName, err := services.ExportBackup(r.Context(), h.store, h.now())
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to export data", err))
			return
		}

		h.responder.WriteJSON(w, ExportResponse{Success: true, Backup: backup, FileName: fileName})
	}
}

// importData restores every key of backup.data, overwriting existing values
// @Summary Import key/value backup
// @Tags Data
// @Accept json
// @Produce json
// @Success 200 {object} ImportResponse
// @Failure 400 {object} ErrorResponse "Invalid backup format"
// @Failure 500 {object} ErrorResponse "Failed to import data"
// @Router /api/data/import [post]
func (h dataHandler) importData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Backup == nil || req.Backup.Data == nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid backup format"))
			return
		}

		if len(req.Backup.Data) == 0 {
			h.responder.WriteJSON(w, ImportResponse{Success: true, Message: "No data to restore"})
			return
		}

		restored, err := services.RestoreBackup(r.Context(), h.store, req.Backup.Data)
		if err != nil {
			h.logger.Error().Err(err).Int("itemsRestored", restored).Msg("restore stopped early")
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to import data", err))
			return
		}

		h.responder.WriteJSON(w, ImportResponse{
			Success:       true,
			Message:       "Data restored successfully",
			ItemsRestored: restored,
		})
	}
}
