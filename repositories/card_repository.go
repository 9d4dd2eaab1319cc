package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coachkit/roster-system/models"
)

var ErrCardNotFound = errors.New("player card not found")

type CardRepository interface {
	GetByPlayerID(ctx context.Context, playerID int) (*models.PlayerCard, error)
	Create(ctx context.Context, card *models.PlayerCard) error
	Update(ctx context.Context, card *models.PlayerCard) error
}

type postgresCardRepository struct {
	db *sql.DB
}

func NewPostgresCardRepository(db *sql.DB) CardRepository {
	return &postgresCardRepository{db: db}
}

func (r *postgresCardRepository) GetByPlayerID(ctx context.Context, playerID int) (*models.PlayerCard, error) {
	query := `
		SELECT id, player_id, citizenship, club_from, growth, weight, game_num,
		       birthday, come, leave,
		       ref_team_status_id, ref_player_status_id, ref_level_id, ref_position_id, ref_foot_id
		FROM player_cards
		WHERE player_id = $1`

	var c models.PlayerCard
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&c.ID, &c.PlayerID, &c.Citizenship, &c.ClubFrom, &c.Growth, &c.Weight, &c.GameNum,
		&c.Birthday, &c.Come, &c.Leave,
		&c.TeamStatusID, &c.PlayerStatusID, &c.LevelID, &c.PositionID, &c.FootID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCardRepository) Create(ctx context.Context, card *models.PlayerCard) error {
	query := `
		INSERT INTO player_cards (
			player_id, citizenship, club_from, growth, weight, game_num,
			birthday, come, leave,
			ref_team_status_id, ref_player_status_id, ref_level_id, ref_position_id, ref_foot_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		card.PlayerID, card.Citizenship, card.ClubFrom, card.Growth, card.Weight, card.GameNum,
		card.Birthday, card.Come, card.Leave,
		card.TeamStatusID, card.PlayerStatusID, card.LevelID, card.PositionID, card.FootID,
	).Scan(&card.ID)
}

func (r *postgresCardRepository) Update(ctx context.Context, card *models.PlayerCard) error {
	query := `
		UPDATE player_cards SET
			citizenship = $1, club_from = $2, growth = $3, weight = $4, game_num = $5,
			birthday = $6, come = $7, leave = $8,
			ref_team_status_id = $9, ref_player_status_id = $10, ref_level_id = $11,
			ref_position_id = $12, ref_foot_id = $13
		WHERE id = $14`

	result, err := r.db.ExecContext(ctx, query,
		card.Citizenship, card.ClubFrom, card.Growth, card.Weight, card.GameNum,
		card.Birthday, card.Come, card.Leave,
		card.TeamStatusID, card.PlayerStatusID, card.LevelID, card.PositionID, card.FootID,
		card.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCardNotFound)
}
