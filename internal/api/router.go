package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/CodeWizard18/AgriConnect/internal/auth"
	"github.com/CodeWizard18/AgriConnect/internal/config"
	"github.com/CodeWizard18/AgriConnect/internal/models"
)

// NewRouter wires the full REST surface. Role gates follow the SPA's three
// roles: customers check out and read their orders, farmers manage listings
// and fulfil orders, admins moderate and enter phone orders.
func NewRouter(db *sql.DB, cfg *config.Config, sender auth.OTPSender) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, req, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"service": "AgriConnect API",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", handleSignup(db, cfg, sender))
			r.Post("/login", handleLogin(db, cfg))
			r.Post("/verify-otp", handleVerifyOTP(db, cfg))
			r.Post("/resend-otp", handleResendOTP(db, cfg, sender))

			r.Group(func(r chi.Router) {
				r.Use(authenticate(db, cfg))
				r.Get("/me", handleMe())
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handleListProducts(db))

			r.Group(func(r chi.Router) {
				r.Use(authenticate(db, cfg))
				r.With(requireRole(models.RoleFarmer)).Post("/", handleCreateProduct(db, cfg))
				r.With(requireRole(models.RoleFarmer)).Get("/my", handleListFarmerProducts(db))
				r.With(requireRole(models.RoleFarmer)).Put("/{id}", handleUpdateProduct(db, cfg))
				r.With(requireRole(models.RoleFarmer)).Delete("/{id}", handleDeleteProduct(db))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate(db, cfg))
			r.With(requireRole(models.RoleCustomer)).Post("/", handleCreateOrder(db, cfg))
			r.With(requireRole(models.RoleCustomer)).Get("/customer", handleCustomerOrders(db))
			r.With(requireRole(models.RoleFarmer)).Get("/farmer", handleFarmerOrders(db))
			r.With(requireRole(models.RoleFarmer, models.RoleAdmin)).Put("/{id}/status", handleUpdateOrderStatus(db))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Use(authenticate(db, cfg))
			r.Post("/", handleSendMessage(db))
			r.Get("/", handleChatList(db))
			r.Get("/{recipientID}", handleConversation(db))
			r.Put("/read/{senderID}", handleMarkMessagesRead(db))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate(db, cfg))
			r.Use(requireRole(models.RoleAdmin))

			r.Get("/stats", handleDashboardStats(db))
			r.Get("/analytics", handleAnalytics(db))
			r.Get("/users", handleModerationUsers(db))
			r.Get("/products", handleModerationProducts(db))
			r.Put("/users/{userID}/status", handleUpdateUserStatus(db))
			r.Delete("/products/{productID}", handleAdminDeleteProduct(db))
			r.Post("/phone-orders", handleCreatePhoneOrder(db))
			r.Get("/phone-orders/stats", handlePhoneOrderStats(db))
			r.Get("/recent-activity", handleRecentActivity(db))
			r.Get("/weekly-orders", handleWeeklyOrders(db))
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, "Route not found")
	})

	return r
}
