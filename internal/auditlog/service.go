package auditlog

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Service records audit entries. Auditing is strictly best effort: a
// failed write is logged and never propagated, so it can never fail the
// request being audited.
type Service interface {
	LogAction(ctx context.Context, vendorID *uint, action string, details map[string]interface{}, ip string, status string)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogAction(ctx context.Context, vendorID *uint, action string, details map[string]interface{}, ip string, status string) {
	if details == nil {
		details = map[string]interface{}{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &AuditLog{
		VendorID:  vendorID,
		Action:    action,
		Details:   string(detailsJSON),
		IPAddress: ip,
		Status:    status,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		slog.Warn("audit log write failed", "action", action, "error", err)
	}
}

// Nop returns a Service that records nothing, for tests.
func Nop() Service { return nopService{} }

type nopService struct{}

func (nopService) LogAction(context.Context, *uint, string, map[string]interface{}, string, string) {
}
