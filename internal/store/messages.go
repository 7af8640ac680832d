package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CodeWizard18/AgriConnect/internal/models"
)

// ChatPartner is one entry in a user's chat list: the counterpart, the most
// recent message exchanged with them, and how many of their messages are
// still unread.
type ChatPartner struct {
	UserID      int64          `json:"userId"`
	Name        string         `json:"name"`
	LastMessage models.Message `json:"lastMessage"`
	UnreadCount int64          `json:"unreadCount"`
}

func SendMessage(ctx context.Context, db *sql.DB, senderID, recipientID int64, body string) (*models.Message, error) {
	message := &models.Message{}

	query := `
		INSERT INTO messages (sender_id, recipient_id, body, read, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		RETURNING id, sender_id, recipient_id, body, read, created_at`

	err := db.QueryRowContext(ctx, query, senderID, recipientID, body).Scan(
		&message.ID,
		&message.SenderID,
		&message.RecipientID,
		&message.Body,
		&message.Read,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT s.name, r.name
		 FROM users s, users r
		 WHERE s.id = $1 AND r.id = $2`,
		senderID, recipientID).Scan(&message.SenderName, &message.RecipientName)
	if err != nil {
		return nil, fmt.Errorf("resolve message names: %w", err)
	}

	return message, nil
}

// ListConversation returns every message between the two users in either
// direction, oldest first. Conversations are derived at query time; there is
// no thread entity.
func ListConversation(ctx context.Context, db *sql.DB, userID, otherID int64) ([]models.Message, error) {
	query := `
		SELECT m.id, m.sender_id, s.name, m.recipient_id, r.name, m.body, m.read, m.created_at
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users r ON r.id = m.recipient_id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at`

	rows, err := db.QueryContext(ctx, query, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var message models.Message
		err := rows.Scan(
			&message.ID,
			&message.SenderID,
			&message.SenderName,
			&message.RecipientID,
			&message.RecipientName,
			&message.Body,
			&message.Read,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return messages, nil
}

// GetChatList returns the user's distinct chat partners with the latest
// message per partner and the count of unread messages from that partner.
func GetChatList(ctx context.Context, db *sql.DB, userID int64) ([]ChatPartner, error) {
	query := `
		SELECT m.id, m.sender_id, s.name, m.recipient_id, r.name, m.body, m.read, m.created_at
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users r ON r.id = m.recipient_id
		WHERE m.sender_id = $1 OR m.recipient_id = $1
		ORDER BY m.created_at DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get chat list: %w", err)
	}
	defer rows.Close()

	partners := make(map[int64]*ChatPartner)
	var order []int64

	for rows.Next() {
		var message models.Message
		err := rows.Scan(
			&message.ID,
			&message.SenderID,
			&message.SenderName,
			&message.RecipientID,
			&message.RecipientName,
			&message.Body,
			&message.Read,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		partnerID := message.SenderID
		partnerName := message.SenderName
		if message.SenderID == userID {
			partnerID = message.RecipientID
			partnerName = message.RecipientName
		}

		partner, ok := partners[partnerID]
		if !ok {
			partner = &ChatPartner{
				UserID:      partnerID,
				Name:        partnerName,
				LastMessage: message,
			}
			partners[partnerID] = partner
			order = append(order, partnerID)
		}

		if message.RecipientID == userID && !message.Read {
			partner.UnreadCount++
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	chatList := make([]ChatPartner, 0, len(order))
	for _, id := range order {
		chatList = append(chatList, *partners[id])
	}

	return chatList, nil
}

// MarkMessagesRead marks everything the sender has sent to the recipient as
// read. Re-running it is harmless.
func MarkMessagesRead(ctx context.Context, db *sql.DB, senderID, recipientID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE messages SET read = TRUE
		 WHERE sender_id = $1 AND recipient_id = $2 AND read = FALSE`,
		senderID, recipientID)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}
