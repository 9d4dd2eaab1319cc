package models

// Scope — контекст владения запроса: либо личный аккаунт пользователя,
// либо клуб. TeamID — команда, выбранная пользователем в данный момент.
// Две области взаимоисключающие: ClubID == nil означает личную область.
type Scope struct {
	UserID int
	ClubID *int
	TeamID int
}

func (s Scope) IsClub() bool {
	return s.ClubID != nil
}
