package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coachkit/roster-system/models"
)

var ErrReferenceNotFound = errors.New("reference not found")

// ReferenceRepository работает с неизменяемыми справочниками. Все типы
// лежат в одной таблице с колонкой kind.
type ReferenceRepository interface {
	GetByID(ctx context.Context, kind models.RefKind, id int) (*models.Reference, error)
	ListByKind(ctx context.Context, kind models.RefKind) ([]models.Reference, error)
}

type postgresReferenceRepository struct {
	db *sql.DB
}

func NewPostgresReferenceRepository(db *sql.DB) ReferenceRepository {
	return &postgresReferenceRepository{db: db}
}

func (r *postgresReferenceRepository) GetByID(ctx context.Context, kind models.RefKind, id int) (*models.Reference, error) {
	query := `
		SELECT id, kind, name, translations
		FROM reference_items
		WHERE kind = $1 AND id = $2`

	var ref models.Reference
	err := r.db.QueryRowContext(ctx, query, kind, id).Scan(&ref.ID, &ref.Kind, &ref.Name, &ref.Translations)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *postgresReferenceRepository) ListByKind(ctx context.Context, kind models.RefKind) ([]models.Reference, error) {
	query := `
		SELECT id, kind, name, translations
		FROM reference_items
		WHERE kind = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]models.Reference, 0)
	for rows.Next() {
		var ref models.Reference
		if err := rows.Scan(&ref.ID, &ref.Kind, &ref.Name, &ref.Translations); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
