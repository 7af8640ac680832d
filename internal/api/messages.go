package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CodeWizard18/AgriConnect/internal/store"
)

func handleSendMessage(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RecipientID int64  `json:"recipientId"`
			Message     string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.RecipientID <= 0 || req.Message == "" {
			respondStoreError(w, r, &store.ValidationError{Fields: []string{"recipientId and message are required"}})
			return
		}

		message, err := store.SendMessage(r.Context(), db, currentUser(r).ID, req.RecipientID, req.Message)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusCreated, message)
	}
}

func handleConversation(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipientID, err := strconv.ParseInt(chi.URLParam(r, "recipientID"), 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid recipient ID")
			return
		}

		messages, err := store.ListConversation(r.Context(), db, currentUser(r).ID, recipientID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, messages)
	}
}

func handleChatList(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatList, err := store.GetChatList(r.Context(), db, currentUser(r).ID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, chatList)
	}
}

func handleMarkMessagesRead(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, err := strconv.ParseInt(chi.URLParam(r, "senderID"), 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid sender ID")
			return
		}

		if err := store.MarkMessagesRead(r.Context(), db, senderID, currentUser(r).ID); err != nil {
			respondStoreError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]string{"message": "Messages marked as read"})
	}
}
