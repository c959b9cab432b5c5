// internal/app/features/opportunities/api.go
package opportunities

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	oppstore "github.com/virtuhq/virtu/internal/app/store/opportunities"
	"github.com/virtuhq/virtu/internal/app/system/timeouts"
	"github.com/virtuhq/virtu/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// createRequest is the JSON body for POST /opportunities/create.
type createRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
	Category    []string            `json:"category"`
	PostedBy    string              `json:"postedBy"`
}

// updateRequest is the JSON body for PUT /opportunities/edit/{id}. Absent
// fields leave the stored value untouched.
type updateRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Location    *string             `json:"location"`
	Coordinates *models.Coordinates `json:"coordinates"`
	Category    []string            `json:"category"`
	PostedBy    *string             `json:"postedBy"`
}

// errorResponse is the JSON error envelope for the management endpoints.
type errorResponse struct {
	Error             string   `json:"error"`
	InvalidCategories []string `json:"invalid_categories,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /opportunities/create                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Warn("decode create request failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	op, err := h.Store.Create(ctx, oppstore.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Coordinates: req.Coordinates,
		Category:    req.Category,
		PostedBy:    req.PostedBy,
	})
	if err != nil {
		h.respondStoreError(w, r, "create opportunity failed", err)
		return
	}

	h.Log.Info("opportunity created",
		zap.String("id", op.ID.Hex()),
		zap.String("title", op.Title))
	writeJSON(w, http.StatusCreated, op)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /opportunities/edit/{id}                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Warn("decode update request failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	op, err := h.Store.Update(ctx, id, oppstore.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Coordinates: req.Coordinates,
		Category:    req.Category,
		PostedBy:    req.PostedBy,
	})
	if err != nil {
		h.respondStoreError(w, r, "update opportunity failed", err)
		return
	}

	writeJSON(w, http.StatusOK, op)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /opportunities/delete/{id}                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDelete removes an opportunity. Deleting an ID that is already gone
// still answers 200 so retries are safe.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		h.respondStoreError(w, r, "delete opportunity failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "opportunity deleted"})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// pathID parses the {id} URL parameter, answering 404 for anything that
// isn't a well-formed ObjectID.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "opportunity not found"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondStoreError maps store errors onto the JSON error envelope.
func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	var ice *oppstore.InvalidCategoryError
	switch {
	case errors.As(err, &ice):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:             "invalid categories",
			InvalidCategories: ice.Labels,
		})
	case oppstore.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, oppstore.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "opportunity not found"})
	default:
		h.Log.Error(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
