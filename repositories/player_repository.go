package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/coachkit/roster-system/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerInvalidTeam = errors.New("player team reference invalid")
)

// Колонки, по которым разрешена сортировка списка игроков. Индекс в
// срезе соответствует индексу колонки таблицы на клиенте; всё вне
// списка сортируется по id.
var playerSortColumns = []string{
	"p.id",
	"p.surname",
	"p.name",
	"p.patronymic",
	"c.citizenship",
	"t.name",
	"c.club_from",
	"c.growth",
	"c.weight",
	"c.game_num",
	"c.birthday",
	"c.come",
	"c.leave",
}

// Колонки префиксного поиска (OR по всем сразу).
var playerSearchColumns = []string{
	"p.surname",
	"p.name",
	"p.patronymic",
	"c.citizenship",
	"t.name",
	"c.club_from",
}

type ListPlayersFilter struct {
	Scope models.Scope

	// ForTable включает поиск, сортировку и постраничную выборку.
	ForTable        bool
	Search          string
	SortColumnIndex int
	SortDesc        bool
	Offset          int
	Limit           int
}

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	// GetByID возвращает игрока вместе с картой и командой; игрок должен
	// принадлежать области и текущей команде запроса.
	GetByID(ctx context.Context, id int, scope models.Scope) (*models.Player, error)
	List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	UpdatePhotoKey(ctx context.Context, playerID int, photoKey *string) error
	// Delete удаляет игрока и каскадно его карту, наблюдения и ответы
	// анкет в одной транзакции.
	Delete(ctx context.Context, id int, scope models.Scope) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (surname, name, patronymic, user_id, club_id, team_id, photo_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Surname, p.Name, p.Patronymic, p.UserID, p.ClubID, p.TeamID, p.PhotoKey,
	).Scan(&p.ID, &p.CreatedAt)

	return translatePlayerError(err)
}

const playerSelectColumns = `
	p.id, p.surname, p.name, p.patronymic, p.user_id, p.club_id, p.team_id, p.photo_key, p.created_at,
	t.name,
	c.id, c.citizenship, c.club_from, c.growth, c.weight, c.game_num,
	c.birthday, c.come, c.leave,
	c.ref_team_status_id, c.ref_player_status_id, c.ref_level_id, c.ref_position_id, c.ref_foot_id`

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int, scope models.Scope) (*models.Player, error) {
	cond, args, idx := scopeCondition("p", scope.UserID, scope.ClubID, 2)
	query := fmt.Sprintf(`
		SELECT %s
		FROM players p
		JOIN teams t ON t.id = p.team_id
		LEFT JOIN player_cards c ON c.player_id = p.id
		WHERE p.id = $1 AND %s AND p.team_id = $%d`,
		playerSelectColumns, cond, idx)

	args = append([]interface{}{id}, args...)
	args = append(args, scope.TeamID)

	player, err := scanPlayer(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error) {
	cond, args, idx := scopeCondition("p", filter.Scope.UserID, filter.Scope.ClubID, 1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `
		SELECT %s
		FROM players p
		JOIN teams t ON t.id = p.team_id
		LEFT JOIN player_cards c ON c.player_id = p.id
		WHERE %s AND p.team_id = $%d`,
		playerSelectColumns, cond, idx)
	args = append(args, filter.Scope.TeamID)
	idx++

	if filter.ForTable {
		if filter.Search != "" {
			conds := make([]string, 0, len(playerSearchColumns))
			for _, col := range playerSearchColumns {
				conds = append(conds, fmt.Sprintf("%s ILIKE $%d", col, idx))
			}
			fmt.Fprintf(&sb, " AND (%s)", strings.Join(conds, " OR "))
			args = append(args, prefixPattern(filter.Search))
			idx++
		}

		sortCol := playerSortColumns[0]
		if filter.SortColumnIndex > 0 && filter.SortColumnIndex < len(playerSortColumns) {
			sortCol = playerSortColumns[filter.SortColumnIndex]
		}
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s NULLS LAST, p.id ASC", sortCol, direction)

		limit := filter.Limit
		if limit <= 0 {
			limit = 10
		}
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		fmt.Fprintf(&sb, " OFFSET $%d LIMIT $%d", idx, idx+1)
		args = append(args, offset, limit)
	} else {
		sb.WriteString(" ORDER BY p.id ASC")
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players
		SET surname = $1, name = $2, patronymic = $3, team_id = $4, photo_key = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		p.Surname, p.Name, p.Patronymic, p.TeamID, p.PhotoKey, p.ID)
	if err != nil {
		return translatePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, playerID int, photoKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE players SET photo_key = $1 WHERE id = $2`, photoKey, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int, scope models.Scope) error {
	cond, scopeArgs, idx := scopeCondition("p", scope.UserID, scope.ClubID, 2)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	// Игрок должен существовать в области запроса до любых удалений.
	checkQuery := fmt.Sprintf(
		`SELECT p.id FROM players p WHERE p.id = $1 AND %s AND p.team_id = $%d`, cond, idx)
	checkArgs := append([]interface{}{id}, scopeArgs...)
	checkArgs = append(checkArgs, scope.TeamID)

	var found int
	if err := tx.QueryRowContext(ctx, checkQuery, checkArgs...).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlayerNotFound
		}
		return err
	}

	// Явный каскад: ответы анкет, наблюдения, карта, затем сам игрок.
	// Удаляются в том числе записи, созданные другими пользователями по
	// этому игроку.
	for _, q := range []string{
		`DELETE FROM questionnaire_answers WHERE player_id = $1`,
		`DELETE FROM characteristic_observations WHERE player_id = $1`,
		`DELETE FROM player_cards WHERE player_id = $1`,
		`DELETE FROM players WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("cascade delete failed: %w", err)
		}
	}

	return tx.Commit()
}

func translatePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "players_team_id_fkey" {
			return ErrPlayerInvalidTeam
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	var teamName string
	var cardID sql.NullInt64
	var card models.PlayerCard

	err := row.Scan(
		&p.ID, &p.Surname, &p.Name, &p.Patronymic, &p.UserID, &p.ClubID, &p.TeamID, &p.PhotoKey, &p.CreatedAt,
		&teamName,
		&cardID, &card.Citizenship, &card.ClubFrom, &card.Growth, &card.Weight, &card.GameNum,
		&card.Birthday, &card.Come, &card.Leave,
		&card.TeamStatusID, &card.PlayerStatusID, &card.LevelID, &card.PositionID, &card.FootID,
	)
	if err != nil {
		return nil, err
	}

	p.Team = &models.Team{ID: p.TeamID, Name: teamName, ClubID: p.ClubID}
	if cardID.Valid {
		card.ID = int(cardID.Int64)
		card.PlayerID = p.ID
		p.Card = &card
	}
	return &p, nil
}

func prefixPattern(search string) string {
	// Экранируем спецсимволы LIKE, чтобы поиск оставался префиксным.
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(search) + "%"
}
