package service

import (
	"time"

	"noise_monitor/internal/models"
)

// StaleAfter is how long a device may stay silent before it is considered offline.
const StaleAfter = 90 * time.Second

// DeriveStatus returns the status reported with the reading if any,
// otherwise offline when the reading was received more than StaleAfter
// before now, otherwise online.
func DeriveStatus(r models.DeviceReading, now time.Time) models.DeviceStatus {
	if r.Status != nil && *r.Status != "" {
		return *r.Status
	}
	if now.Sub(r.ReceivedAt) > StaleAfter {
		return models.StatusOffline
	}
	return models.StatusOnline
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
