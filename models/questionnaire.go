package models

// QuestionnaireRow — вопрос анкеты с тем же владением, что и строки
// характеристик, но без истории ответов.
type QuestionnaireRow struct {
	ID           int          `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Translations Translations `json:"translations,omitempty" db:"translations"`
	IsTemplate   bool         `json:"is_template" db:"is_template"`
	UserID       *int         `json:"user_id,omitempty" db:"user_id"`
	ClubID       *int         `json:"club_id,omitempty" db:"club_id"`
	Order        int          `json:"order" db:"sort_order"`
}

// QuestionnaireAnswer — единственный живой ответ на (вопрос, игрок),
// обновляется на месте.
type QuestionnaireAnswer struct {
	ID       int    `json:"id" db:"id"`
	RowID    int    `json:"row_id" db:"row_id"`
	PlayerID int    `json:"player_id" db:"player_id"`
	UserID   *int   `json:"user_id,omitempty" db:"user_id"`
	ClubID   *int   `json:"club_id,omitempty" db:"club_id"`
	Notes    string `json:"notes" db:"notes"`
}
