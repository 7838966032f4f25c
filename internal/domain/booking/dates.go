package booking

import (
	"time"

	"staybook/internal/domain/shared/daterange"
)

// ValidateStart rejects stays whose first night is before today's UTC day.
func ValidateStart(start, now time.Time) error {
	if daterange.Day(start).Before(daterange.Day(now)) {
		return ErrPastStartDate
	}
	return nil
}
