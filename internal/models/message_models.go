package models

import "time"

// Conversation groups messages exchanged with one client.
type Conversation struct {
	ID            string     `json:"id" db:"id"`
	ClientID      *string    `json:"client_id,omitempty" db:"client_id"`
	Title         string     `json:"title" db:"title"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Message is one chat line. Messages are always served ordered by CreatedAt.
type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	SenderName     string    `json:"sender_name" db:"sender_name"`
	Body           string    `json:"body" db:"body"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
