package models

import "time"

type Player struct {
	ID         int       `json:"id" db:"id"`
	Surname    string    `json:"surname" db:"surname"`
	Name       string    `json:"name" db:"name"`
	Patronymic string    `json:"patronymic" db:"patronymic"`
	UserID     int       `json:"user_id" db:"user_id"`
	ClubID     *int      `json:"club_id,omitempty" db:"club_id"`
	TeamID     int       `json:"team_id" db:"team_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Team *Team       `json:"team,omitempty" db:"-"`
	Card *PlayerCard `json:"card,omitempty" db:"-"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL string  `json:"photo,omitempty" db:"-"`
}

// PlayerCard — денормализованная карточка игрока. Создаётся лениво при
// первой отправке профиля с полями карточки. Все поля опциональны:
// некорректное значение в запросе превращается в nil, а не в ошибку.
type PlayerCard struct {
	ID       int `json:"id" db:"id"`
	PlayerID int `json:"player_id" db:"player_id"`

	Citizenship *string    `json:"citizenship,omitempty" db:"citizenship"`
	ClubFrom    *string    `json:"club_from,omitempty" db:"club_from"`
	Growth      *int       `json:"growth,omitempty" db:"growth"`
	Weight      *int       `json:"weight,omitempty" db:"weight"`
	GameNum     *int       `json:"game_num,omitempty" db:"game_num"`
	Birthday    *time.Time `json:"birthday,omitempty" db:"birthday"`
	Come        *time.Time `json:"come,omitempty" db:"come"`
	Leave       *time.Time `json:"leave,omitempty" db:"leave"`

	TeamStatusID   *int `json:"ref_team_status,omitempty" db:"ref_team_status_id"`
	PlayerStatusID *int `json:"ref_player_status,omitempty" db:"ref_player_status_id"`
	LevelID        *int `json:"ref_level,omitempty" db:"ref_level_id"`
	PositionID     *int `json:"ref_position,omitempty" db:"ref_position_id"`
	FootID         *int `json:"ref_foot,omitempty" db:"ref_foot_id"`
}
