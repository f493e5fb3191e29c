package sqlite

import "strings"

// modernc.org/sqlite surfaces constraint failures as formatted strings,
// so classification is by message.
func constraintFailed(err error, kind string) bool {
	return err != nil && strings.Contains(err.Error(), kind+" constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return constraintFailed(err, "FOREIGN KEY")
}

func isUniqueViolation(err error) bool {
	return constraintFailed(err, "UNIQUE")
}
