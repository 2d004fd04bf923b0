package deviceclient

import (
	"math"
	"math/rand"
	"time"

	"noise_monitor/internal/models"
)

// Random noise levels are drawn from [MinRandomNoise, MaxRandomNoise).
const (
	MinRandomNoise = 30.0
	MaxRandomNoise = 95.0
)

// Sample describes one synthetic reading. Nil fields are left out of the payload.
type Sample struct {
	DeviceID    string
	NoiseLevel  *float64
	Battery     *float64
	Temperature *float64
	Humidity    *float64
	Status      string
	Metadata    *models.ReadingMetadata
	Thresholds  *models.ReadingThresholds
}

// RandomNoise returns a level in [30,95) rounded to one decimal.
func RandomNoise(rnd *rand.Rand) float64 {
	v := rnd.Float64()*(MaxRandomNoise-MinRandomNoise) + MinRandomNoise
	return math.Round(v*10) / 10
}

// BuildReading turns a sample into a payload recorded at now.
func BuildReading(s Sample, now time.Time, rnd *rand.Rand) models.ReadingInput {
	level := RandomNoise(rnd)
	if s.NoiseLevel != nil {
		level = *s.NoiseLevel
	}
	recordedAt := now.UTC().Format(time.RFC3339Nano)
	in := models.ReadingInput{
		DeviceID:     s.DeviceID,
		NoiseLevel:   &level,
		RecordedAt:   &recordedAt,
		BatteryLevel: s.Battery,
		Temperature:  s.Temperature,
		Humidity:     s.Humidity,
		Metadata:     s.Metadata,
		Thresholds:   s.Thresholds,
	}
	if s.Status != "" {
		st := models.DeviceStatus(s.Status)
		in.Status = &st
	}
	return in
}

// DefaultMetadata labels readings sent without a profile.
func DefaultMetadata() *models.ReadingMetadata {
	str := func(s string) *string { return &s }
	return &models.ReadingMetadata{
		PropertyName: str("Test Lab"),
		RoomNumber:   str("LAB-01"),
		Location:     str("Office window"),
		Notes:        str("send-reading"),
	}
}
