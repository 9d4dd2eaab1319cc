package repositories

import (
	"database/sql"
	"fmt"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// scopeCondition добавляет в WHERE условие владения для таблицы с
// колонками user_id/club_id. Возвращает фрагмент SQL и аргументы,
// нумерация плейсхолдеров продолжается с argIndex.
func scopeCondition(alias string, userID int, clubID *int, argIndex int) (string, []interface{}, int) {
	if clubID != nil {
		return fmt.Sprintf("%s.club_id = $%d", alias, argIndex), []interface{}{*clubID}, argIndex + 1
	}
	return fmt.Sprintf("%s.user_id = $%d AND %s.club_id IS NULL", alias, argIndex, alias),
		[]interface{}{userID}, argIndex + 1
}
