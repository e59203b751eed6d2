package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

// InsertSystemLog добавляет запись в журнал аудита.
func (s *Storage) InsertSystemLog(ctx context.Context, entry models.AuditEntry) (int, error) {
	const op = "storage.InsertSystemLog"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var details []byte
	if len(entry.Details) > 0 {
		var err error
		if details, err = json.Marshal(entry.Details); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `INSERT INTO system_logs (user_uid, action, entity, entity_id, details, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		entry.UserUID, entry.Action, entry.Entity, entry.EntityID, details, entry.CreatedAt).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}
