package calculator

import (
	"time"

	"github.com/mmynk/chama/internal/models"
)

// PeriodDueDate returns the due date of a 1-based period.
func PeriodDueDate(start time.Time, frequency models.Frequency, period int) time.Time {
	if period < 1 {
		period = 1
	}
	n := period - 1
	switch frequency {
	case models.FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	case models.FrequencyBiweekly:
		return start.AddDate(0, 0, 14*n)
	default:
		return start.AddDate(0, n, 0)
	}
}

// TurnForPeriod maps a 1-based period onto a turn order in 1..members,
// wrapping when a cycle has more periods than members.
func TurnForPeriod(period, members int) int {
	if members <= 0 || period <= 0 {
		return 0
	}
	return (period-1)%members + 1
}
