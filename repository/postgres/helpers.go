package postgres

import "time"

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// dbTime matches what timestamptz keeps: UTC at microsecond precision.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return dbTime(*t)
}
