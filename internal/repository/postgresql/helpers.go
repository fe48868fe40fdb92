package postgresql

import (
	"time"

	"github.com/google/uuid"
)

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// dateIn re-anchors a DATE column value, which pgx returns as UTC midnight, to midnight in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func inLoc(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(loc)
	return &v
}
