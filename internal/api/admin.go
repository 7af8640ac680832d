package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/CodeWizard18/AgriConnect/internal/models"
	"github.com/CodeWizard18/AgriConnect/internal/store"
)

func handleDashboardStats(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.GetDashboardStats(r.Context(), db)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, stats)
	}
}

func handleAnalytics(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := store.GetAnalyticsData(r.Context(), db)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, data)
	}
}

func handleModerationUsers(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context(), db)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, users)
	}
}

func handleModerationProducts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := store.ListProducts(r.Context(), db)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, products)
	}
}

func handleUpdateUserStatus(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var req struct {
			Status models.UserStatus `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Status != models.UserStatusActive && req.Status != models.UserStatusBlocked {
			respondStoreError(w, r, &store.ValidationError{Fields: []string{"status must be active or blocked"}})
			return
		}

		user, err := store.UpdateUserStatus(r.Context(), db, userID, req.Status)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, user)
	}
}

func handleAdminDeleteProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid product ID")
			return
		}

		if err := store.DeleteProduct(r.Context(), db, productID, 0); err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]string{"message": "Product deleted"})
	}
}

func handleCreatePhoneOrder(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CustomerID       *int64                   `json:"customerId"`
			CustomerName     string                   `json:"customerName"`
			CustomerPhone    string                   `json:"customerPhone"`
			CustomerAddress  string                   `json:"customerAddress"`
			CustomerCity     string                   `json:"customerCity"`
			CustomerState    string                   `json:"customerState"`
			CustomerPincode  string                   `json:"customerPincode"`
			FarmerID         int64                    `json:"farmerId"`
			FarmerPhone      string                   `json:"farmerPhone"`
			FarmerAddress    string                   `json:"farmerAddress"`
			OrderImage       string                   `json:"orderImage"`
			SelectedProducts []store.OrderItemRequest `json:"selectedProducts"`
			Notes            string                   `json:"notes"`
			TotalAmount      *decimal.Decimal         `json:"totalAmount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		order, err := store.CreatePhoneOrder(r.Context(), db, store.CreatePhoneOrderRequest{
			CustomerID:      req.CustomerID,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerAddress: req.CustomerAddress,
			CustomerCity:    req.CustomerCity,
			CustomerState:   req.CustomerState,
			CustomerPincode: req.CustomerPincode,
			FarmerID:        req.FarmerID,
			FarmerPhone:     req.FarmerPhone,
			FarmerAddress:   req.FarmerAddress,
			OrderImage:      req.OrderImage,
			Items:           req.SelectedProducts,
			Notes:           req.Notes,
			TotalAmount:     req.TotalAmount,
		})
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusCreated, order)
	}
}

func handlePhoneOrderStats(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.GetPhoneOrderStats(r.Context(), db)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, stats)
	}
}

func handleRecentActivity(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activity, err := store.GetRecentActivity(r.Context(), db)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, activity)
	}
}

func handleWeeklyOrders(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weekly, err := store.GetWeeklyOrders(r.Context(), db)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, weekly)
	}
}
