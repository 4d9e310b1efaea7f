package contact

import (
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/contact"
)

// SubmitRequest represents a contact-form submission
type SubmitRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// ClientInfo identifies who submitted a message
type ClientInfo struct {
	IP        string
	UserAgent string
}

// MessageListQuery represents admin message listing parameters
type MessageListQuery struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool `form:"unread"`
}

// SubmitResponse acknowledges an accepted submission
type SubmitResponse struct {
	ID         uuid.UUID `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
}

// MessageResponse represents a stored message for the admin
type MessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	IP        string     `json:"ip,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToMessageResponse converts a domain message to a response
func ToMessageResponse(m *contact.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Body,
		IP:        m.IP,
		UserAgent: m.UserAgent,
		Read:      m.IsRead(),
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}
