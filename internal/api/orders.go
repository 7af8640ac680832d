package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CodeWizard18/AgriConnect/internal/config"
	"github.com/CodeWizard18/AgriConnect/internal/models"
	"github.com/CodeWizard18/AgriConnect/internal/store"
)

func handleCreateOrder(db *sql.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Items       []store.OrderItemRequest `json:"items"`
			Address     string                   `json:"address"`
			PhoneNumber string                   `json:"phoneNumber"`
			PaymentMode models.PaymentMode       `json:"paymentMode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.PaymentMode == "" {
			req.PaymentMode = models.PaymentModeCOD
		}

		order, err := store.CreateOrder(r.Context(), db, store.CreateOrderRequest{
			CustomerID:  currentUser(r).ID,
			Items:       req.Items,
			Address:     req.Address,
			PhoneNumber: req.PhoneNumber,
			PaymentMode: req.PaymentMode,
			DeliveryFee: cfg.Orders.DeliveryFee,
		})
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusCreated, order)
	}
}

func handleCustomerOrders(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		orders, err := store.ListCustomerOrders(r.Context(), db, user.ID, user.Name)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, orders)
	}
}

func handleFarmerOrders(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := store.ListFarmerOrders(r.Context(), db, currentUser(r).ID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, orders)
	}
}

func handleUpdateOrderStatus(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid order ID")
			return
		}

		var req struct {
			Status models.OrderStatus `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		order, err := store.UpdateOrderStatus(r.Context(), db, id, req.Status)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, order)
	}
}
