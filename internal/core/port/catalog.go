package port

import (
	"context"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
)

// CatalogLoader fetches the full read-only credential catalog from its
// source of truth. The credential store calls Load at most once per
// process unless an explicit refresh is requested.
type CatalogLoader interface {
	Load(ctx context.Context) ([]domain.UserRecord, error)
}
