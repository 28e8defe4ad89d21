package repositories

import (
	"database/sql"
	"fmt"
)

// checkAffectedRows превращает UPDATE/DELETE без затронутых строк в
// доменную ошибку «не найдено», которую передал вызывающий.
func checkAffectedRows(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
