package models

import "time"

// Audit actions written to system_logs.
const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
)

// AuditEntry is a single row of the system_logs table.
type AuditEntry struct {
	ID        int               `json:"id"`
	UserUID   string            `json:"user_id"`
	Action    string            `json:"action"`
	Entity    string            `json:"entity"`
	EntityID  string            `json:"entity_id"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
