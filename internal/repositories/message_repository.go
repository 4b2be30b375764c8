package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salon_backend/internal/models"

	"github.com/google/uuid"
)

const (
	conversationColumns = `id, client_id, title, last_message_at, created_at`
	messageColumns      = `id, conversation_id, sender_id, sender_name, body, created_at`
)

// MessageRepository stores staff/client conversations.
type MessageRepository interface {
	CreateConversation(executor SQLExecutor, conv *models.Conversation) error
	GetConversationByID(id string) (*models.Conversation, error)
	GetConversations(executor SQLExecutor) ([]models.Conversation, error)
	DeleteConversation(executor SQLExecutor, id string) error
	// CreateMessage inserts the message and bumps the conversation's last_message_at.
	CreateMessage(executor SQLExecutor, msg *models.Message) error
	// ListMessages returns the conversation's messages oldest first.
	ListMessages(executor SQLExecutor, conversationID string) ([]models.Message, error)
	ListAllMessages(executor SQLExecutor) ([]models.Message, error)
}

type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func scanConversation(row scanner) (*models.Conversation, error) {
	var c models.Conversation
	var last sql.NullTime
	if err := row.Scan(&c.ID, &c.ClientID, &c.Title, &last, &c.CreatedAt); err != nil {
		return nil, err
	}
	if last.Valid {
		c.LastMessageAt = &last.Time
	}
	return &c, nil
}

func scanMessage(row scanner) (*models.Message, error) {
	var m models.Message
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.Body, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) CreateConversation(executor SQLExecutor, conv *models.Conversation) error {
	query := `INSERT INTO conversations (` + conversationColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}
	if _, err := executor.Exec(query, conv.ID, conv.ClientID, conv.Title, conv.LastMessageAt, conv.CreatedAt); err != nil {
		return classify(err, "creating conversation")
	}
	return nil
}

func (r *messageRepository) GetConversationByID(id string) (*models.Conversation, error) {
	conv, err := scanConversation(r.db.QueryRow(`SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting conversation %s: %v", ErrDatabaseError, id, err)
	}
	return conv, nil
}

func (r *messageRepository) GetConversations(executor SQLExecutor) ([]models.Conversation, error) {
	rows, err := executor.Query(`SELECT ` + conversationColumns + ` FROM conversations ORDER BY last_message_at DESC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying conversations: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning conversation: %v", ErrDatabaseError, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating conversations: %v", ErrDatabaseError, err)
	}
	return out, nil
}

func (r *messageRepository) DeleteConversation(executor SQLExecutor, id string) error {
	result, err := executor.Exec(`DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting conversation "+id)
	}
	return expectOneRow(result, "deleting conversation "+id)
}

func (r *messageRepository) CreateMessage(executor SQLExecutor, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	query := `INSERT INTO messages (` + messageColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := executor.Exec(query, msg.ID, msg.ConversationID, msg.SenderID, msg.SenderName, msg.Body, msg.CreatedAt); err != nil {
		return classify(err, "creating message")
	}
	result, err := executor.Exec(
		`UPDATE conversations SET last_message_at = GREATEST(COALESCE(last_message_at, $1), $1) WHERE id = $2`,
		msg.CreatedAt, msg.ConversationID,
	)
	if err != nil {
		return classify(err, "touching conversation "+msg.ConversationID)
	}
	return expectOneRow(result, "touching conversation "+msg.ConversationID)
}

func (r *messageRepository) ListMessages(executor SQLExecutor, conversationID string) ([]models.Message, error) {
	return r.queryMessages(executor, `SELECT `+messageColumns+` FROM messages WHERE conversation_id = $1 ORDER BY created_at, id`, conversationID)
}

func (r *messageRepository) ListAllMessages(executor SQLExecutor) ([]models.Message, error) {
	return r.queryMessages(executor, `SELECT `+messageColumns+` FROM messages ORDER BY conversation_id, created_at, id`)
}

func (r *messageRepository) queryMessages(executor SQLExecutor, query string, args ...interface{}) ([]models.Message, error) {
	rows, err := executor.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying messages: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning message: %v", ErrDatabaseError, err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating messages: %v", ErrDatabaseError, err)
	}
	return out, nil
}
