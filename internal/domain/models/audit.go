package models

import "time"

// Audit entity types.
const (
	AuditEntityBooking = "BOOKING"
	AuditEntityFleet   = "FLEET"
)

// Audit action tags.
const (
	AuditActionStatusChange = "STATUS_CHANGE"
	AuditActionCancel       = "CANCEL"
	AuditActionCreate       = "CREATE"
	AuditActionUpdate       = "UPDATE"
	AuditActionDelete       = "DELETE"
)

// AuditLog is an immutable record of an admin-triggered mutation. OldValue
// and NewValue hold JSON snapshots of the prior and posterior state. Rows are
// never updated or deleted.
type AuditLog struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Action     string    `json:"action"`
	OldValue   *string   `json:"old_value"`
	NewValue   *string   `json:"new_value"`
	AdminID    int64     `json:"admin_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
