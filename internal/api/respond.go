package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/CodeWizard18/AgriConnect/internal/database"
	"github.com/CodeWizard18/AgriConnect/internal/store"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, map[string]string{"message": message})
}

// respondStoreError maps store failures onto the HTTP taxonomy: validation
// errors carry every failing field in a 400, unresolved references become
// 404, duplicates become 409, everything else is a 500.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, r, http.StatusBadRequest, map[string]interface{}{
			"message": "Validation error",
			"errors":  verr.Fields,
		})
	case errors.Is(err, database.ErrFarmerMismatch), errors.Is(err, database.ErrStatusRegression):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrFarmerNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrMessageNotFound):
		respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrEmailExists):
		respondError(w, r, http.StatusConflict, err.Error())
	default:
		respondError(w, r, http.StatusInternalServerError, err.Error())
	}
}
