package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/coachkit/roster-system/models"
)

var (
	ErrCharacteristicRowNotFound = errors.New("characteristic row not found")
	ErrObservationNotFound       = errors.New("characteristic observation not found")
)

type CharacteristicRepository interface {
	// FindRow возвращает нешаблонную строку области запроса.
	FindRow(ctx context.Context, id int, scope models.Scope) (*models.CharacteristicRow, error)
	// ListChildRows возвращает видимые строки области: нешаблонные и
	// имеющие родителя (корневые разделы не показываются).
	ListChildRows(ctx context.Context, scope models.Scope) ([]models.CharacteristicRow, error)
	FindObservationByDate(ctx context.Context, rowID, playerID int, scope models.Scope, date time.Time) (*models.CharacteristicObservation, error)
	// ListObservations — наблюдения по (строка, игрок) от новых к старым.
	ListObservations(ctx context.Context, rowID, playerID int, scope models.Scope, limit int) ([]models.CharacteristicObservation, error)
	CreateObservation(ctx context.Context, obs *models.CharacteristicObservation) error
	UpdateObservation(ctx context.Context, obs *models.CharacteristicObservation) error
}

type postgresCharacteristicRepository struct {
	db *sql.DB
}

func NewPostgresCharacteristicRepository(db *sql.DB) CharacteristicRepository {
	return &postgresCharacteristicRepository{db: db}
}

const characteristicRowColumns = `r.id, r.name, r.translations, r.parent_id, r.is_template, r.user_id, r.club_id, r.sort_order`

func (r *postgresCharacteristicRepository) FindRow(ctx context.Context, id int, scope models.Scope) (*models.CharacteristicRow, error) {
	cond, args, _ := scopeCondition("r", scope.UserID, scope.ClubID, 2)
	query := fmt.Sprintf(`
		SELECT %s
		FROM characteristic_rows r
		WHERE r.id = $1 AND r.is_template = FALSE AND %s`,
		characteristicRowColumns, cond)

	row := r.db.QueryRowContext(ctx, query, append([]interface{}{id}, args...)...)
	cr, err := scanCharacteristicRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCharacteristicRowNotFound
		}
		return nil, err
	}
	return cr, nil
}

func (r *postgresCharacteristicRepository) ListChildRows(ctx context.Context, scope models.Scope) ([]models.CharacteristicRow, error) {
	cond, args, _ := scopeCondition("r", scope.UserID, scope.ClubID, 1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM characteristic_rows r
		WHERE r.is_template = FALSE AND r.parent_id IS NOT NULL AND %s
		ORDER BY r.sort_order, r.id`,
		characteristicRowColumns, cond)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.CharacteristicRow, 0)
	for rows.Next() {
		cr, err := scanCharacteristicRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cr)
	}
	return result, rows.Err()
}

func (r *postgresCharacteristicRepository) FindObservationByDate(ctx context.Context, rowID, playerID int, scope models.Scope, date time.Time) (*models.CharacteristicObservation, error) {
	cond, args, idx := scopeCondition("o", scope.UserID, scope.ClubID, 3)
	query := fmt.Sprintf(`
		SELECT o.id, o.row_id, o.player_id, o.user_id, o.club_id, o.value, o.notes, o.date_creation
		FROM characteristic_observations o
		WHERE o.row_id = $1 AND o.player_id = $2 AND %s AND o.date_creation = $%d`,
		cond, idx)

	allArgs := append([]interface{}{rowID, playerID}, args...)
	allArgs = append(allArgs, date.Format("2006-01-02"))

	var obs models.CharacteristicObservation
	err := r.db.QueryRowContext(ctx, query, allArgs...).Scan(
		&obs.ID, &obs.RowID, &obs.PlayerID, &obs.UserID, &obs.ClubID, &obs.Value, &obs.Notes, &obs.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObservationNotFound
		}
		return nil, err
	}
	return &obs, nil
}

func (r *postgresCharacteristicRepository) ListObservations(ctx context.Context, rowID, playerID int, scope models.Scope, limit int) ([]models.CharacteristicObservation, error) {
	cond, args, idx := scopeCondition("o", scope.UserID, scope.ClubID, 3)
	query := fmt.Sprintf(`
		SELECT o.id, o.row_id, o.player_id, o.user_id, o.club_id, o.value, o.notes, o.date_creation
		FROM characteristic_observations o
		WHERE o.row_id = $1 AND o.player_id = $2 AND %s
		ORDER BY o.date_creation DESC, o.id DESC
		LIMIT $%d`,
		cond, idx)

	allArgs := append([]interface{}{rowID, playerID}, args...)
	allArgs = append(allArgs, limit)

	rows, err := r.db.QueryContext(ctx, query, allArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.CharacteristicObservation, 0, limit)
	for rows.Next() {
		var obs models.CharacteristicObservation
		err := rows.Scan(&obs.ID, &obs.RowID, &obs.PlayerID, &obs.UserID, &obs.ClubID, &obs.Value, &obs.Notes, &obs.Date)
		if err != nil {
			return nil, err
		}
		result = append(result, obs)
	}
	return result, rows.Err()
}

func (r *postgresCharacteristicRepository) CreateObservation(ctx context.Context, obs *models.CharacteristicObservation) error {
	query := `
		INSERT INTO characteristic_observations (row_id, player_id, user_id, club_id, value, notes, date_creation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		obs.RowID, obs.PlayerID, obs.UserID, obs.ClubID, obs.Value, obs.Notes,
		obs.Date.Format("2006-01-02"),
	).Scan(&obs.ID)
}

func (r *postgresCharacteristicRepository) UpdateObservation(ctx context.Context, obs *models.CharacteristicObservation) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE characteristic_observations SET value = $1, notes = $2 WHERE id = $3`,
		obs.Value, obs.Notes, obs.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrObservationNotFound)
}

func scanCharacteristicRow(row rowScanner) (*models.CharacteristicRow, error) {
	var cr models.CharacteristicRow
	err := row.Scan(&cr.ID, &cr.Name, &cr.Translations, &cr.ParentID, &cr.IsTemplate, &cr.UserID, &cr.ClubID, &cr.Order)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}
