package database

import (
	"context"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/postgres"
	apperrors "github.com/rohanthuse/infinite-care-vue-sub018/pkg/errors"
)

// NotificationAdapter implements the NotificationRepository interface
type NotificationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewNotificationAdapter creates a new notification adapter
func NewNotificationAdapter(client *postgres.Client) repositories.NotificationRepository {
	return &NotificationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CreateBatch inserts notifications in one statement so a batch lands all-or-nothing
func (a *NotificationAdapter) CreateBatch(ctx context.Context, notifications []*entities.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return apperrors.NewInternalError("failed to encode notification data", err)
		}
		rows = append(rows, goqu.Record{
			"id":         n.ID,
			"user_id":    n.UserID,
			"branch_id":  n.BranchID,
			"title":      n.Title,
			"message":    n.Message,
			"type":       string(n.Type),
			"category":   n.Category,
			"priority":   string(n.Priority),
			"data":       goqu.L("?::jsonb", string(data)),
			"read":       n.Read,
			"created_at": n.CreatedAt,
		})
	}

	query, args, err := a.db.Insert("notifications").Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build notification insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create notifications", err)
	}

	return nil
}
