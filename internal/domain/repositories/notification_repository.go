package repositories

import (
	"context"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
)

// NotificationRepository persists notification rows. It is insert-only.
type NotificationRepository interface {
	// CreateBatch inserts all notifications in a single statement
	CreateBatch(ctx context.Context, notifications []*entities.Notification) error
}

// RecipientRepository looks up who administers what
type RecipientRepository interface {
	// ListSuperAdminUserIDs returns every user holding the super-admin role
	ListSuperAdminUserIDs(ctx context.Context) ([]string, error)

	// ListBranchAdminUserIDs returns the admins assigned to a branch
	ListBranchAdminUserIDs(ctx context.Context, branchID string) ([]string, error)
}
