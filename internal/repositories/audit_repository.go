package repositories

import (
	"context"
	"fmt"

	"urbancabz/internal/db"
	"urbancabz/internal/domain/models"
)

// AuditRepository appends immutable audit records. There is deliberately no
// update or single-row delete.
type AuditRepository struct {
	DB db.DBTX
}

func (r AuditRepository) Append(ctx context.Context, entry *models.AuditLog) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO audit_logs (entity_type, entity_id, action, old_value, new_value, admin_id, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.EntityType, entry.EntityID, entry.Action,
		entry.OldValue, entry.NewValue, entry.AdminID, entry.Reason,
	)
	if err != nil {
		return 0, fmt.Errorf("insert audit log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("audit insert id: %w", err)
	}
	entry.ID = id
	return id, nil
}

// ListByEntity returns an entity's audit trail newest first.
func (r AuditRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]models.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, action, old_value, new_value, admin_id, reason, created_at
		FROM audit_logs
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at DESC, id DESC`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var out []models.AuditLog
	for rows.Next() {
		var a models.AuditLog
		if err := rows.Scan(
			&a.ID, &a.EntityType, &a.EntityID, &a.Action,
			&a.OldValue, &a.NewValue, &a.AdminID, &a.Reason, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteByEntityType purges one entity type's trail. Maintenance cleanup only.
func (r AuditRepository) DeleteByEntityType(ctx context.Context, entityType string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM audit_logs WHERE entity_type = ?`, entityType)
	if err != nil {
		return 0, fmt.Errorf("delete audit logs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
