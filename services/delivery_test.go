package services

import (
	"testing"
	"time"

	"mallhub-server/models"
)

func TestValidDeliveryTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{models.DeliveryPending, models.DeliveryInProgress}:   true,
		{models.DeliveryInProgress, models.DeliveryDelivered}: true,
	}

	statuses := []string{models.DeliveryPending, models.DeliveryInProgress, models.DeliveryDelivered}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := validDeliveryTransition(from, to); got != want {
				t.Errorf("transition %s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestValidReturnTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{models.ReturnPending, models.ReturnApproved}:     true,
		{models.ReturnPending, models.ReturnRejected}:     true,
		{models.ReturnApproved, models.ReturnInProgress}:  true,
		{models.ReturnInProgress, models.ReturnCompleted}: true,
	}

	statuses := []string{
		models.ReturnPending, models.ReturnApproved, models.ReturnRejected,
		models.ReturnInProgress, models.ReturnCompleted,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := validReturnTransition(from, to); got != want {
				t.Errorf("transition %s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestWithinReturnWindow(t *testing.T) {
	delivered := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		elapsed time.Duration
		want    bool
	}{
		{time.Minute, true},
		{24 * time.Hour, true},
		{models.ReturnWindow, true},
		{models.ReturnWindow + time.Second, false},
		{72 * time.Hour, false},
	}
	for _, tt := range tests {
		if got := withinReturnWindow(delivered, delivered.Add(tt.elapsed)); got != tt.want {
			t.Errorf("withinReturnWindow after %s = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}
