package models

import (
	"time"

	"github.com/portfolio/backend/internal/domain/contact"
)

// ContactMessageModel is the persistence model for contact submissions.
type ContactMessageModel struct {
	AggregateModel
	Name      string `gorm:"type:varchar(100);not null"`
	Email     string `gorm:"type:varchar(200);not null"`
	Subject   string `gorm:"type:varchar(200);not null"`
	Body      string `gorm:"column:message;type:text;not null"`
	IP        string `gorm:"type:varchar(45)"`
	UserAgent string `gorm:"type:varchar(500)"`
	ReadAt    *time.Time
}

// TableName returns the table name for GORM
func (ContactMessageModel) TableName() string {
	return "contact_messages"
}

// ToDomain converts the persistence model to a domain Message.
func (m *ContactMessageModel) ToDomain() *contact.Message {
	return &contact.Message{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Subject:           m.Subject,
		Body:              m.Body,
		IP:                m.IP,
		UserAgent:         m.UserAgent,
		ReadAt:            m.ReadAt,
	}
}

// FromDomain populates the persistence model from a domain Message.
func (m *ContactMessageModel) FromDomain(msg *contact.Message) {
	m.FromDomainAggregateRoot(msg.BaseAggregateRoot)
	m.Name = msg.Name
	m.Email = msg.Email
	m.Subject = msg.Subject
	m.Body = msg.Body
	m.IP = msg.IP
	m.UserAgent = msg.UserAgent
	m.ReadAt = msg.ReadAt
}

// ContactMessageModelFromDomain creates a new persistence model from a domain Message.
func ContactMessageModelFromDomain(msg *contact.Message) *ContactMessageModel {
	m := &ContactMessageModel{}
	m.FromDomain(msg)
	return m
}
