package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"salon_backend/internal/models"
	"salon_backend/internal/realtime"
	"salon_backend/internal/repositories"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageValidation    = errors.New("message validation error")
)

// Publisher delivers conversation events to live subscribers.
type Publisher interface {
	Publish(topic, eventType string, payload interface{})
}

type CreateConversationRequest struct {
	ClientID *string `json:"client_id"`
	Title    string  `json:"title" binding:"required"`
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// Sender identifies who is writing; taken from the authenticated user.
type Sender struct {
	ID   string
	Name string
}

// MessageService manages conversations and keeps subscribers in sync.
type MessageService interface {
	CreateConversation(req CreateConversationRequest) (*models.Conversation, error)
	GetConversations() ([]models.Conversation, error)
	GetConversation(id string) (*models.Conversation, error)
	DeleteConversation(id string) error
	// Snapshot returns the conversation's messages ordered by timestamp.
	Snapshot(conversationID string) ([]models.Message, error)
	SendMessage(conversationID string, sender Sender, req SendMessageRequest) (*models.Message, error)
}

type messageService struct {
	messageRepo repositories.MessageRepository
	clientRepo  repositories.ClientRepository
	publisher   Publisher
	db          *sql.DB
}

// NewMessageService creates a new instance of MessageService.
func NewMessageService(mr repositories.MessageRepository, cr repositories.ClientRepository, pub Publisher, db *sql.DB) MessageService {
	return &messageService{messageRepo: mr, clientRepo: cr, publisher: pub, db: db}
}

// ConversationTopic is the realtime topic of one conversation.
func ConversationTopic(conversationID string) string {
	return "conversation:" + conversationID
}

func (s *messageService) CreateConversation(req CreateConversationRequest) (*models.Conversation, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrMessageValidation)
	}
	conv := &models.Conversation{Title: title}
	if req.ClientID != nil && *req.ClientID != "" {
		if _, err := s.clientRepo.GetClientByID(*req.ClientID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrClientNotFound
			}
			return nil, fmt.Errorf("failed to load conversation client: %w", err)
		}
		conv.ClientID = req.ClientID
	}
	if err := s.messageRepo.CreateConversation(s.db, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (s *messageService) GetConversations() ([]models.Conversation, error) {
	convs, err := s.messageRepo.GetConversations(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (s *messageService) GetConversation(id string) (*models.Conversation, error) {
	conv, err := s.messageRepo.GetConversationByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

func (s *messageService) DeleteConversation(id string) error {
	if err := s.messageRepo.DeleteConversation(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

func (s *messageService) Snapshot(conversationID string) ([]models.Message, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListMessages(s.db, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// SendMessage stores the message and pushes the refreshed ordered snapshot to
// subscribers.
func (s *messageService) SendMessage(conversationID string, sender Sender, req SendMessageRequest) (*models.Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: body cannot be empty", ErrMessageValidation)
	}
	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		Body:           body,
	}
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()
	if err := s.messageRepo.CreateMessage(tx, msg); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}

	if s.publisher != nil {
		msgs, err := s.messageRepo.ListMessages(s.db, conversationID)
		if err == nil {
			s.publisher.Publish(ConversationTopic(conversationID), realtime.EventSnapshot, msgs)
		}
	}
	return msg, nil
}
