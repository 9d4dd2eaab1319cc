package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coachkit/roster-system/models"
)

var (
	ErrQuestionnaireRowNotFound = errors.New("questionnaire row not found")
	ErrAnswerNotFound           = errors.New("questionnaire answer not found")
)

type QuestionnaireRepository interface {
	FindRow(ctx context.Context, id int, scope models.Scope) (*models.QuestionnaireRow, error)
	ListRows(ctx context.Context, scope models.Scope) ([]models.QuestionnaireRow, error)
	FindAnswer(ctx context.Context, rowID, playerID int, scope models.Scope) (*models.QuestionnaireAnswer, error)
	CreateAnswer(ctx context.Context, answer *models.QuestionnaireAnswer) error
	UpdateAnswer(ctx context.Context, answer *models.QuestionnaireAnswer) error
}

type postgresQuestionnaireRepository struct {
	db *sql.DB
}

func NewPostgresQuestionnaireRepository(db *sql.DB) QuestionnaireRepository {
	return &postgresQuestionnaireRepository{db: db}
}

const questionnaireRowColumns = `r.id, r.name, r.translations, r.is_template, r.user_id, r.club_id, r.sort_order`

func (r *postgresQuestionnaireRepository) FindRow(ctx context.Context, id int, scope models.Scope) (*models.QuestionnaireRow, error) {
	cond, args, _ := scopeCondition("r", scope.UserID, scope.ClubID, 2)
	query := fmt.Sprintf(`
		SELECT %s
		FROM questionnaire_rows r
		WHERE r.id = $1 AND r.is_template = FALSE AND %s`,
		questionnaireRowColumns, cond)

	row := r.db.QueryRowContext(ctx, query, append([]interface{}{id}, args...)...)
	qr, err := scanQuestionnaireRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionnaireRowNotFound
		}
		return nil, err
	}
	return qr, nil
}

func (r *postgresQuestionnaireRepository) ListRows(ctx context.Context, scope models.Scope) ([]models.QuestionnaireRow, error) {
	cond, args, _ := scopeCondition("r", scope.UserID, scope.ClubID, 1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM questionnaire_rows r
		WHERE r.is_template = FALSE AND %s
		ORDER BY r.sort_order, r.id`,
		questionnaireRowColumns, cond)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.QuestionnaireRow, 0)
	for rows.Next() {
		qr, err := scanQuestionnaireRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *qr)
	}
	return result, rows.Err()
}

func (r *postgresQuestionnaireRepository) FindAnswer(ctx context.Context, rowID, playerID int, scope models.Scope) (*models.QuestionnaireAnswer, error) {
	cond, args, _ := scopeCondition("a", scope.UserID, scope.ClubID, 3)
	query := fmt.Sprintf(`
		SELECT a.id, a.row_id, a.player_id, a.user_id, a.club_id, a.notes
		FROM questionnaire_answers a
		WHERE a.row_id = $1 AND a.player_id = $2 AND %s`,
		cond)

	allArgs := append([]interface{}{rowID, playerID}, args...)

	var answer models.QuestionnaireAnswer
	err := r.db.QueryRowContext(ctx, query, allArgs...).Scan(
		&answer.ID, &answer.RowID, &answer.PlayerID, &answer.UserID, &answer.ClubID, &answer.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	return &answer, nil
}

func (r *postgresQuestionnaireRepository) CreateAnswer(ctx context.Context, answer *models.QuestionnaireAnswer) error {
	query := `
		INSERT INTO questionnaire_answers (row_id, player_id, user_id, club_id, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		answer.RowID, answer.PlayerID, answer.UserID, answer.ClubID, answer.Notes,
	).Scan(&answer.ID)
}

func (r *postgresQuestionnaireRepository) UpdateAnswer(ctx context.Context, answer *models.QuestionnaireAnswer) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE questionnaire_answers SET notes = $1 WHERE id = $2`,
		answer.Notes, answer.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAnswerNotFound)
}

func scanQuestionnaireRow(row rowScanner) (*models.QuestionnaireRow, error) {
	var qr models.QuestionnaireRow
	err := row.Scan(&qr.ID, &qr.Name, &qr.Translations, &qr.IsTemplate, &qr.UserID, &qr.ClubID, &qr.Order)
	if err != nil {
		return nil, err
	}
	return &qr, nil
}
