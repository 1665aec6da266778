package port

import (
	"context"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
)

// AuditPublisher fans audit entries out to an external sink. Publishing
// is best-effort: failures are logged by the caller and never affect the
// operation that produced the entry.
type AuditPublisher interface {
	PublishAuditEntry(ctx context.Context, entry domain.AuditEntry) error
}
