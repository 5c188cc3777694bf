package repository

import (
	"time"

	"gorm.io/gorm"
)

// conn returns tx when the caller runs inside a transaction, the repository's
// own handle otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// dayRange converts inclusive YYYY-MM-DD bounds into a UTC [from, to) interval.
// Empty or malformed bounds are returned as zero times.
func dayRange(from, to string) (time.Time, time.Time) {
	var start, end time.Time
	if t, err := time.Parse("2006-01-02", from); err == nil {
		start = t.UTC()
	}
	if t, err := time.Parse("2006-01-02", to); err == nil {
		end = t.UTC().AddDate(0, 0, 1)
	}
	return start, end
}

func paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return (page - 1) * limit, limit
}
