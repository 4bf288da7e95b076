package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/postgres"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

// SuperAdminRole is the user_roles.role value granting tenant-wide admin
const SuperAdminRole = "super_admin"

// RecipientAdapter implements the RecipientRepository interface
type RecipientAdapter struct {
	dbx *sqlx.DB
	db  *goqu.Database
}

// NewRecipientAdapter creates a new recipient adapter
func NewRecipientAdapter(client *postgres.Client) repositories.RecipientRepository {
	return &RecipientAdapter{
		dbx: client.DBX(),
		db:  goqu.New("postgres", client.DB()),
	}
}

// ListSuperAdminUserIDs returns every super-admin user id
func (a *RecipientAdapter) ListSuperAdminUserIDs(ctx context.Context) ([]string, error) {
	query, args, err := a.db.From("user_roles").
		Select("user_id").
		Where(goqu.Ex{"role": SuperAdminRole}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build super admin query", err)
	}

	var ids []string
	if err := a.dbx.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list super admins", err)
	}
	return ids, nil
}

// ListBranchAdminUserIDs returns the admins assigned to a branch
func (a *RecipientAdapter) ListBranchAdminUserIDs(ctx context.Context, branchID string) ([]string, error) {
	query, args, err := a.db.From("admin_branches").
		Select("admin_id").
		Where(goqu.Ex{"branch_id": branchID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build branch admin query", err)
	}

	var ids []string
	if err := a.dbx.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list branch admins", err)
	}
	return ids, nil
}
