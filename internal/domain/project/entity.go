package project

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle tag of a client project
type Status string

const (
	StatusLead       Status = "Lead"
	StatusOrcamento  Status = "Orçamento"
	StatusProducao   Status = "Produção"
	StatusInstalacao Status = "Instalação"
	StatusEntregue   Status = "Entregue"
)

// IsActive reports whether the project counts toward the active-projects metric
func (s Status) IsActive() bool {
	return s == StatusProducao || s == StatusInstalacao
}

// MessageFrom distinguishes operator messages from assistant replies
type MessageFrom string

const (
	FromUser      MessageFrom = "user"
	FromAssistant MessageFrom = "assistant"
)

// MessageType distinguishes plain text from image messages
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

// Message is a single chat entry within a project
type Message struct {
	ID        string      `json:"id"`
	From      MessageFrom `json:"from"`
	Text      string      `json:"text"`
	Type      MessageType `json:"type"`
	Src       string      `json:"src,omitempty"` // encoded media payload for image messages
	Timestamp time.Time   `json:"timestamp"`
}

// MessageList is stored as a JSON column in both backing stores
type MessageList []Message

func (m MessageList) Value() (driver.Value, error) {
	if m == nil {
		m = MessageList{}
	}
	return json.Marshal(m)
}

func (m *MessageList) Scan(src any) error {
	if src == nil {
		*m = MessageList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported messages column type %T", src)
}

// Project is a client/project record. Its id belongs to exactly one of two
// namespaces: local-prefixed ids live only in the device store, bare uuids
// are assigned by the remote store. The namespace never changes after
// creation.
type Project struct {
	ID             string      `gorm:"column:id;primaryKey" json:"id"`
	Name           string      `gorm:"column:name" json:"name"`
	Phone          string      `gorm:"column:phone" json:"phone"`
	Status         Status      `gorm:"column:status" json:"status"`
	EstimatedValue float64     `gorm:"column:estimated_value" json:"valor_estimado"`
	Messages       MessageList `gorm:"column:messages;type:text" json:"messages"`
	CreatedAt      time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (Project) TableName() string { return "cockpit_clients" }

// LocalIDPrefix tags records created and owned by the local store
const LocalIDPrefix = "local-"

// NewLocalID generates an id in the local namespace
func NewLocalID() string {
	return LocalIDPrefix + uuid.New().String()
}

// NewRemoteID generates an id in the remote namespace
func NewRemoteID() string {
	return uuid.New().String()
}

// IsLocalID reports whether the id belongs to the local-only namespace
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// NewMessage builds a chat entry with a fresh id and timestamp
func NewMessage(from MessageFrom, typ MessageType, text, src string) Message {
	return Message{
		ID:        uuid.New().String(),
		From:      from,
		Text:      text,
		Type:      typ,
		Src:       src,
		Timestamp: time.Now(),
	}
}

// WelcomeText is the first assistant message of every new client chat
const WelcomeText = "Olá! Sou a Yara, sua assistente de marcenaria. Como posso ajudar com este cliente?"
