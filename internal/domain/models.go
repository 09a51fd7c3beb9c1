package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the identity and timestamps shared by every table.
// IDs are assigned in Go so the same models work on postgres and sqlite.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a random UUID when none is set
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRoleType is the portal a user signs in to
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleAgent      UserRoleType = "agent"
	RoleSales      UserRoleType = "sales"
	RoleOperations UserRoleType = "operations"
	RoleGuest      UserRoleType = "guest"
)

// AllRoles returns every role in display order
func AllRoles() []UserRoleType {
	return []UserRoleType{RoleAdmin, RoleAgent, RoleSales, RoleOperations, RoleGuest}
}

// IsValid reports whether r is a known role
func (r UserRoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleSales, RoleOperations, RoleGuest:
		return true
	}
	return false
}

// User is an account that can sign in to one of the portals
type User struct {
	BaseModel
	Email        string       `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string       `gorm:"type:varchar(255);not null;column:password_hash"`
	DisplayName  string       `gorm:"type:varchar(200);not null;column:display_name"`
	Role         UserRoleType `gorm:"type:varchar(50);not null;default:'guest';index"`
	CompanyName  string       `gorm:"type:varchar(200);column:company_name"`
	Phone        string       `gorm:"type:varchar(50)"`
	IsActive     bool         `gorm:"not null;default:true;column:is_active"`
	TokenVersion int          `gorm:"not null;default:0;column:token_version"`
	LastLoginAt  *time.Time   `gorm:"column:last_login_at"`
}

// PasswordResetToken is a single-use reset credential. Only the hash is stored.
type PasswordResetToken struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id"`
	TokenHash string     `gorm:"type:varchar(128);not null;uniqueIndex;column:token_hash"`
	ExpiresAt time.Time  `gorm:"not null;column:expires_at"`
	UsedAt    *time.Time `gorm:"column:used_at"`
}

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotificationTypeFollowUpDue    NotificationType = "follow_up_due"
	NotificationTypeChatMessage    NotificationType = "chat_message"
	NotificationTypeAssignment     NotificationType = "assignment"
	NotificationTypeStatusChange   NotificationType = "status_change"
	NotificationTypeItineraryReady NotificationType = "itinerary_ready"
)

// Notification is an in-app message for a single user
type Notification struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id"`
	Type       string     `gorm:"type:varchar(50);not null;index"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Message    string     `gorm:"type:text;not null"`
	EntityType string     `gorm:"type:varchar(50);column:entity_type"`
	EntityID   *uuid.UUID `gorm:"type:uuid;column:entity_id"`
	Read       bool       `gorm:"not null;default:false;index"`
	ReadAt     *time.Time `gorm:"column:read_at"`
}

// AuditAction is the kind of change recorded in the audit log
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionLogin  AuditAction = "login"
	AuditActionLogout AuditAction = "logout"
)

// AuditLog records a mutating request made through the API
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	UserID      *uuid.UUID  `gorm:"type:uuid;index;column:user_id"`
	UserEmail   string      `gorm:"type:varchar(255);column:user_email"`
	UserRole    string      `gorm:"type:varchar(50);column:user_role"`
	Action      AuditAction `gorm:"type:varchar(20);not null;index"`
	EntityType  string      `gorm:"type:varchar(50);not null;index;column:entity_type"`
	EntityID    *uuid.UUID  `gorm:"type:uuid;index;column:entity_id"`
	Path        string      `gorm:"type:varchar(500)"`
	Method      string      `gorm:"type:varchar(10)"`
	StatusCode  int         `gorm:"column:status_code"`
	IPAddress   string      `gorm:"type:varchar(64);column:ip_address"`
	UserAgent   string      `gorm:"type:varchar(500);column:user_agent"`
	RequestID   string      `gorm:"type:varchar(64);column:request_id"`
	PerformedAt time.Time   `gorm:"not null;index;column:performed_at"`
}

// BeforeCreate assigns an ID and timestamp
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PerformedAt.IsZero() {
		a.PerformedAt = time.Now().UTC()
	}
	return nil
}
