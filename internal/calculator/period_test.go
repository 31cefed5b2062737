package calculator

import (
	"testing"
	"time"

	"github.com/mmynk/chama/internal/models"
)

func TestPeriodDueDate(t *testing.T) {
	start := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		frequency models.Frequency
		period    int
		want      time.Time
	}{
		{models.FrequencyWeekly, 1, start},
		{models.FrequencyWeekly, 3, start.AddDate(0, 0, 14)},
		{models.FrequencyBiweekly, 2, start.AddDate(0, 0, 14)},
		{models.FrequencyMonthly, 2, start.AddDate(0, 1, 0)},
		{models.FrequencyMonthly, 0, start},
	}
	for _, tt := range tests {
		got := PeriodDueDate(start, tt.frequency, tt.period)
		if !got.Equal(tt.want) {
			t.Errorf("PeriodDueDate(%s, %d) = %s, want %s", tt.frequency, tt.period, got, tt.want)
		}
	}
}

func TestTurnForPeriod(t *testing.T) {
	tests := []struct{ period, members, want int }{
		{1, 4, 1},
		{4, 4, 4},
		{5, 4, 1},
		{7, 3, 1},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := TurnForPeriod(tt.period, tt.members); got != tt.want {
			t.Errorf("TurnForPeriod(%d, %d) = %d, want %d", tt.period, tt.members, got, tt.want)
		}
	}
}
