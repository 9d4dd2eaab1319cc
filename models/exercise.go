package models

import "time"

// Exercise — упражнение тренировочного процесса, принадлежит
// пользователю или клубу. Заголовок и описание переводимые.
type Exercise struct {
	ID            int          `json:"id" db:"id"`
	UserID        int          `json:"user_id" db:"user_id"`
	ClubID        *int         `json:"club_id,omitempty" db:"club_id"`
	TeamID        *int         `json:"team_id,omitempty" db:"team_id"`
	Order         int          `json:"order" db:"sort_order"`
	Visible       bool         `json:"visible" db:"visible"`
	Completed     bool         `json:"completed" db:"completed"`
	CompletedTime *time.Time   `json:"completed_time,omitempty" db:"completed_time"`
	Title         Translations `json:"title,omitempty" db:"title"`
	Description   Translations `json:"description,omitempty" db:"description"`

	GoalID          *int `json:"ref_goal,omitempty" db:"ref_goal_id"`
	BallID          *int `json:"ref_ball,omitempty" db:"ref_ball_id"`
	TeamCategoryID  *int `json:"ref_team_category,omitempty" db:"ref_team_category_id"`
	AgeCategoryID   *int `json:"ref_age_category,omitempty" db:"ref_age_category_id"`
	TrainPartID     *int `json:"ref_train_part,omitempty" db:"ref_train_part_id"`
	CognitiveLoadID *int `json:"ref_cognitive_load,omitempty" db:"ref_cognitive_load_id"`

	CreatedAt time.Time `json:"date_creation" db:"created_at"`
}
