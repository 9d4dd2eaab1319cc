package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coachkit/roster-system/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	// GetForScope возвращает команду только если она принадлежит области
	// запроса: клубная команда — клубу, личная — пользователю.
	GetForScope(ctx context.Context, id int, scope models.Scope) (*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetForScope(ctx context.Context, id int, scope models.Scope) (*models.Team, error) {
	cond, args, _ := scopeCondition("t", scope.UserID, scope.ClubID, 2)
	query := `
		SELECT t.id, t.name, t.user_id, t.club_id, t.created_at
		FROM teams t
		WHERE t.id = $1 AND ` + cond

	row := r.db.QueryRowContext(ctx, query, append([]interface{}{id}, args...)...)

	var team models.Team
	err := row.Scan(&team.ID, &team.Name, &team.UserID, &team.ClubID, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}
