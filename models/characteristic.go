package models

import "time"

// CharacteristicRow — именованная оценочная шкала, принадлежащая
// пользователю или клубу. Шаблонные строки (IsTemplate) поставляются
// платформой и не участвуют в записи наблюдений. Строки без родителя —
// корневые разделы, по ним наблюдения не отображаются.
type CharacteristicRow struct {
	ID           int          `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Translations Translations `json:"translations,omitempty" db:"translations"`
	ParentID     *int         `json:"parent_id,omitempty" db:"parent_id"`
	IsTemplate   bool         `json:"is_template" db:"is_template"`
	UserID       *int         `json:"user_id,omitempty" db:"user_id"`
	ClubID       *int         `json:"club_id,omitempty" db:"club_id"`
	Order        int          `json:"order" db:"sort_order"`
}

// CharacteristicObservation — датированное значение по шкале для игрока.
// Инвариант: не более одного наблюдения на (строка, игрок, день);
// повторная отправка в тот же день обновляет значение на месте.
type CharacteristicObservation struct {
	ID       int       `json:"id" db:"id"`
	RowID    int       `json:"row_id" db:"row_id"`
	PlayerID int       `json:"player_id" db:"player_id"`
	UserID   *int      `json:"user_id,omitempty" db:"user_id"`
	ClubID   *int      `json:"club_id,omitempty" db:"club_id"`
	Value    int       `json:"value" db:"value"`
	Notes    string    `json:"notes" db:"notes"`
	Date     time.Time `json:"date_creation" db:"date_creation"`
}
