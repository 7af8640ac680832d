package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/CodeWizard18/AgriConnect/internal/auth"
	"github.com/CodeWizard18/AgriConnect/internal/config"
	"github.com/CodeWizard18/AgriConnect/internal/database"
	"github.com/CodeWizard18/AgriConnect/internal/models"
	"github.com/CodeWizard18/AgriConnect/internal/store"
)

type authResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

func userSummary(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":      user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
		"pincode": user.Pincode,
		"city":    user.City,
		"state":   user.State,
	}
}

func handleSignup(db *sql.DB, cfg *config.Config, sender auth.OTPSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string      `json:"name"`
			Email    string      `json:"email"`
			Password string      `json:"password"`
			Role     models.Role `json:"role"`
			Phone    string      `json:"phone"`
			Address  string      `json:"address"`
			Pincode  string      `json:"pincode"`
			City     string      `json:"city"`
			State    string      `json:"state"`
			AdminKey string      `json:"adminKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		var fields []string
		if req.Name == "" {
			fields = append(fields, "name is required")
		}
		if req.Email == "" {
			fields = append(fields, "email is required")
		}
		if req.Password == "" {
			fields = append(fields, "password is required")
		}
		switch req.Role {
		case "":
			req.Role = models.RoleCustomer
		case models.RoleFarmer, models.RoleCustomer, models.RoleAdmin:
		default:
			fields = append(fields, "role must be one of farmer, customer, admin")
		}
		if len(fields) > 0 {
			respondStoreError(w, r, &store.ValidationError{Fields: fields})
			return
		}

		if req.Role == models.RoleAdmin {
			if cfg.Auth.AdminSignupKey == "" || req.AdminKey != cfg.Auth.AdminSignupKey {
				respondError(w, r, http.StatusForbidden, "Unauthorized admin signup")
				return
			}
		}

		passwordHash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		otp, err := auth.GenerateOTP()
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		user, err := store.CreateUser(r.Context(), db, store.CreateUserRequest{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: passwordHash,
			Role:         req.Role,
			Phone:        req.Phone,
			Address:      req.Address,
			Pincode:      req.Pincode,
			City:         req.City,
			State:        req.State,
			OTP:          otp,
			OTPExpires:   time.Now().Add(cfg.Auth.OTPTTL),
		})
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		// Delivery failure must not fail the signup.
		if err := sender.SendOTP(user.Email, otp); err != nil {
			log.Printf("Send OTP to %s: %v", user.Email, err)
		}

		respondJSON(w, r, http.StatusOK, map[string]interface{}{
			"message": "Account created successfully. Please check your email for OTP verification.",
			"userId":  user.ID,
			"email":   user.Email,
		})
	}
}

func handleLogin(db *sql.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := store.GetUserByEmail(r.Context(), db, req.Email)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				respondError(w, r, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			respondStoreError(w, r, err)
			return
		}

		if user.Status == models.UserStatusBlocked {
			respondError(w, r, http.StatusForbidden, "Account blocked. Contact administrator for assistance.")
			return
		}
		if !user.IsVerified {
			respondError(w, r, http.StatusForbidden, "Please verify your email before logging in.")
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			respondError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := auth.SignToken(cfg.Auth.JWTSecret, user, cfg.Auth.TokenTTL)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, authResponse{Token: token, User: userSummary(user)})
	}
}

func handleVerifyOTP(db *sql.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			OTP   string `json:"otp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := store.GetUserByEmail(r.Context(), db, req.Email)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		if user.IsVerified {
			respondError(w, r, http.StatusBadRequest, "Email already verified")
			return
		}
		if user.OTP == "" || user.OTPExpires == nil {
			respondError(w, r, http.StatusBadRequest, "No OTP found. Please request a new one.")
			return
		}
		if user.OTPExpires.Before(time.Now()) {
			respondError(w, r, http.StatusBadRequest, "OTP has expired. Please request a new one.")
			return
		}
		if user.OTP != req.OTP {
			respondError(w, r, http.StatusBadRequest, "Invalid OTP")
			return
		}

		if err := store.MarkUserVerified(r.Context(), db, user.ID); err != nil {
			respondStoreError(w, r, err)
			return
		}

		token, err := auth.SignToken(cfg.Auth.JWTSecret, user, cfg.Auth.TokenTTL)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, authResponse{Token: token, User: userSummary(user)})
	}
}

func handleResendOTP(db *sql.DB, cfg *config.Config, sender auth.OTPSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := store.GetUserByEmail(r.Context(), db, req.Email)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		if user.IsVerified {
			respondError(w, r, http.StatusBadRequest, "Email already verified")
			return
		}

		otp, err := auth.GenerateOTP()
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		if err := store.SetUserOTP(r.Context(), db, user.ID, otp, time.Now().Add(cfg.Auth.OTPTTL)); err != nil {
			respondStoreError(w, r, err)
			return
		}

		if err := sender.SendOTP(user.Email, otp); err != nil {
			respondError(w, r, http.StatusInternalServerError, "Failed to send OTP email")
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]string{"message": "OTP sent successfully"})
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]interface{}{"user": currentUser(r)})
	}
}
