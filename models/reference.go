package models

// RefKind — тип справочника. Каждому типу соответствует своя таблица
// неизменяемых значений.
type RefKind string

const (
	RefTeamStatus   RefKind = "team_status"
	RefPlayerStatus RefKind = "player_status"
	RefLevel        RefKind = "level"
	RefPosition     RefKind = "position"
	RefFoot         RefKind = "foot"

	RefExsGoal          RefKind = "exs_goal"
	RefExsBall          RefKind = "exs_ball"
	RefExsTeamCategory  RefKind = "exs_team_category"
	RefExsAgeCategory   RefKind = "exs_age_category"
	RefExsTrainPart     RefKind = "exs_train_part"
	RefExsCognitiveLoad RefKind = "exs_cognitive_load"
)

// PlayerRefKinds — справочники, входящие в карточку игрока.
var PlayerRefKinds = []RefKind{
	RefTeamStatus, RefPlayerStatus, RefLevel, RefPosition, RefFoot,
}

type Reference struct {
	ID           int          `json:"id" db:"id"`
	Kind         RefKind      `json:"-" db:"kind"`
	Name         string       `json:"name" db:"name"`
	Translations Translations `json:"translation_names,omitempty" db:"translations"`

	// Title — переведённое имя для текущего языка запроса, заполняется
	// сервисом перед отдачей наружу.
	Title string `json:"title,omitempty" db:"-"`
}
