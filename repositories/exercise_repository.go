package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coachkit/roster-system/models"
)

var ErrExerciseNotFound = errors.New("exercise not found")

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *models.Exercise) error
	GetByID(ctx context.Context, id int, scope models.Scope) (*models.Exercise, error)
	List(ctx context.Context, scope models.Scope, visibleOnly bool) ([]models.Exercise, error)
	Update(ctx context.Context, exercise *models.Exercise) error
	Delete(ctx context.Context, id int, scope models.Scope) error
}

type postgresExerciseRepository struct {
	db *sql.DB
}

func NewPostgresExerciseRepository(db *sql.DB) ExerciseRepository {
	return &postgresExerciseRepository{db: db}
}

const exerciseColumns = `
	e.id, e.user_id, e.club_id, e.team_id, e.sort_order, e.visible, e.completed, e.completed_time,
	e.title, e.description,
	e.ref_goal_id, e.ref_ball_id, e.ref_team_category_id, e.ref_age_category_id,
	e.ref_train_part_id, e.ref_cognitive_load_id,
	e.created_at`

func (r *postgresExerciseRepository) Create(ctx context.Context, e *models.Exercise) error {
	query := `
		INSERT INTO exercises (
			user_id, club_id, team_id, sort_order, visible, completed, completed_time,
			title, description,
			ref_goal_id, ref_ball_id, ref_team_category_id, ref_age_category_id,
			ref_train_part_id, ref_cognitive_load_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		e.UserID, e.ClubID, e.TeamID, e.Order, e.Visible, e.Completed, e.CompletedTime,
		e.Title, e.Description,
		e.GoalID, e.BallID, e.TeamCategoryID, e.AgeCategoryID,
		e.TrainPartID, e.CognitiveLoadID,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *postgresExerciseRepository) GetByID(ctx context.Context, id int, scope models.Scope) (*models.Exercise, error) {
	cond, args, _ := scopeCondition("e", scope.UserID, scope.ClubID, 2)
	query := fmt.Sprintf(`
		SELECT %s FROM exercises e
		WHERE e.id = $1 AND %s`, exerciseColumns, cond)

	e, err := scanExercise(r.db.QueryRowContext(ctx, query, append([]interface{}{id}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresExerciseRepository) List(ctx context.Context, scope models.Scope, visibleOnly bool) ([]models.Exercise, error) {
	cond, args, _ := scopeCondition("e", scope.UserID, scope.ClubID, 1)
	query := fmt.Sprintf(`
		SELECT %s FROM exercises e
		WHERE %s`, exerciseColumns, cond)
	if visibleOnly {
		query += " AND e.visible = TRUE"
	}
	query += " ORDER BY e.sort_order, e.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]models.Exercise, 0)
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, *e)
	}
	return exercises, rows.Err()
}

func (r *postgresExerciseRepository) Update(ctx context.Context, e *models.Exercise) error {
	query := `
		UPDATE exercises SET
			sort_order = $1, visible = $2, completed = $3, completed_time = $4,
			title = $5, description = $6,
			ref_goal_id = $7, ref_ball_id = $8, ref_team_category_id = $9,
			ref_age_category_id = $10, ref_train_part_id = $11, ref_cognitive_load_id = $12,
			team_id = $13
		WHERE id = $14`

	result, err := r.db.ExecContext(ctx, query,
		e.Order, e.Visible, e.Completed, e.CompletedTime,
		e.Title, e.Description,
		e.GoalID, e.BallID, e.TeamCategoryID,
		e.AgeCategoryID, e.TrainPartID, e.CognitiveLoadID,
		e.TeamID, e.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrExerciseNotFound)
}

func (r *postgresExerciseRepository) Delete(ctx context.Context, id int, scope models.Scope) error {
	var query string
	var args []interface{}
	if scope.ClubID != nil {
		query = `DELETE FROM exercises WHERE id = $1 AND club_id = $2`
		args = []interface{}{id, *scope.ClubID}
	} else {
		query = `DELETE FROM exercises WHERE id = $1 AND user_id = $2 AND club_id IS NULL`
		args = []interface{}{id, scope.UserID}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrExerciseNotFound)
}

func scanExercise(row rowScanner) (*models.Exercise, error) {
	var e models.Exercise
	err := row.Scan(
		&e.ID, &e.UserID, &e.ClubID, &e.TeamID, &e.Order, &e.Visible, &e.Completed, &e.CompletedTime,
		&e.Title, &e.Description,
		&e.GoalID, &e.BallID, &e.TeamCategoryID, &e.AgeCategoryID,
		&e.TrainPartID, &e.CognitiveLoadID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
