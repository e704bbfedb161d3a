package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"hotel_booking/internal/domain"
)

const (
	mysqlErrDupEntry  = 1062
	mysqlErrNoParent  = 1452
	sqliteErrNoParent = "FOREIGN KEY constraint failed"
)

// uniqueFields maps MySQL index names and SQLite "table.column" names to
// the wire field they protect.
var uniqueFields = map[string]string{
	"idx_hotels_slug":        "slug",
	"idx_users_username":     "username",
	"idx_users_email":        "email",
	"idx_rooms_hotel_number": "room_number",
	"hotels.slug":            "slug",
	"users.username":         "username",
	"users.email":            "email",
	"rooms.room_number":      "room_number",
}

// duplicateField reports whether err is a unique index violation, and on
// which field.
func duplicateField(err error) (string, bool) {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrDupEntry {
		// Duplicate entry 'x' for key 'hotels.idx_hotels_slug'
		key := me.Message
		if i := strings.LastIndex(key, "for key '"); i >= 0 {
			key = strings.TrimSuffix(key[i+len("for key '"):], "'")
		}
		if j := strings.LastIndex(key, "."); j >= 0 {
			key = key[j+1:]
		}
		return uniqueFields[key], true
	}

	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		cols := msg[i+len("UNIQUE constraint failed: "):]
		for _, c := range strings.Split(cols, ",") {
			if f, ok := uniqueFields[strings.TrimSpace(c)]; ok {
				return f, true
			}
		}
		return "", true
	}
	return "", false
}

// missingParent reports a foreign key violation on insert or update.
func missingParent(err error) bool {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlErrNoParent
	}
	return strings.Contains(err.Error(), sqliteErrNoParent)
}

// translate maps driver errors onto domain errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if f, ok := duplicateField(err); ok {
		return &domain.DuplicateKeyError{Field: f, Err: err}
	}
	if missingParent(err) {
		return fmt.Errorf("%w: %v", domain.ErrDanglingReference, err)
	}
	return err
}
