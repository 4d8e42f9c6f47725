package auditlog

import (
	"time"
)

// AuditLog is one row of the mutation audit trail. VendorID is nullable
// so failed logins and signups can be recorded too.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	VendorID  *uint     `gorm:"index" json:"vendor_id"`
	Action    string    `gorm:"size:100;not null;index" json:"action"`
	Details   string    `gorm:"type:jsonb" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Status    string    `gorm:"size:20;not null;index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName overrides the table name for AuditLog.
func (AuditLog) TableName() string {
	return "audit_logs"
}

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
