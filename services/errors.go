package services

import "errors"

// Общие ошибки сервисного слоя, маппятся на HTTP в handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Доступ и владение
	ErrAccessDenied = errors.New("access denied")

	// Сущности
	ErrPlayerNotFound   = errors.New("player not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrExerciseNotFound = errors.New("exercise not found")

	// Сохранение основной сущности отклонено хранилищем; ничего не
	// считается сохранённым.
	ErrPlayerSaveFailed   = errors.New("can't edit or add the player")
	ErrExerciseSaveFailed = errors.New("can't edit or add the exercise")

	// Аутентификация
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email address is already in use")
	ErrPasswordTooShort   = errors.New("password is too short")
)
