package service

import (
	"testing"

	"backend/internal/model"
)

func TestCountsInMonthTotal(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		charged bool
		want    bool
	}{
		{"pending counts", model.ValidationPending, false, true},
		{"overdue counts", model.ValidationOverdue, false, true},
		{"approved counts", model.ValidationApproved, false, true},
		{"rejected uncharged is excluded", model.ValidationRejected, false, false},
		{"rejected charged still counts its month", model.ValidationRejected, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countsInMonthTotal(tt.status, tt.charged); got != tt.want {
				t.Errorf("countsInMonthTotal(%s, %v) = %v, want %v", tt.status, tt.charged, got, tt.want)
			}
		})
	}
}
