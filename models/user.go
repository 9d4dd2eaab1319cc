package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleCoach   UserRole = "coach"
	RoleAnalyst UserRole = "analyst"
)

type Capability string

const (
	CapPlayerView   Capability = "players.view"
	CapPlayerEdit   Capability = "players.edit"
	CapPlayerDelete Capability = "players.delete"

	CapExerciseView   Capability = "exercises.view"
	CapExerciseEdit   Capability = "exercises.edit"
	CapExerciseDelete Capability = "exercises.delete"
)

// CapabilityRequest описывает, какие права нужны для операции в каждой
// из двух областей владения: личный аккаунт или клуб.
type CapabilityRequest struct {
	User []Capability
	Club []Capability
}

// rolePermissions — какие права даёт роль. Аналитик только читает.
var rolePermissions = map[UserRole][]Capability{
	RoleAdmin: {
		CapPlayerView, CapPlayerEdit, CapPlayerDelete,
		CapExerciseView, CapExerciseEdit, CapExerciseDelete,
	},
	RoleCoach: {
		CapPlayerView, CapPlayerEdit, CapPlayerDelete,
		CapExerciseView, CapExerciseEdit, CapExerciseDelete,
	},
	RoleAnalyst: {
		CapPlayerView, CapExerciseView,
	},
}

type User struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	ClubID       *int      `json:"club_id,omitempty" db:"club_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// HasCapability реализует проверку доступа: для клубного пользователя
// проверяется клубный список прав, для индивидуального — личный.
// Требуются все перечисленные права сразу.
func (u *User) HasCapability(req CapabilityRequest) bool {
	if u == nil {
		return false
	}
	required := req.User
	if u.ClubID != nil {
		required = req.Club
	}
	granted := rolePermissions[u.Role]
	for _, need := range required {
		found := false
		for _, have := range granted {
			if need == have {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
