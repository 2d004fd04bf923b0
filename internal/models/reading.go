package models

import "time"

// DeviceStatus is the connectivity state reported by (or derived for) a sensor.
type DeviceStatus string

const (
	StatusOnline  DeviceStatus = "online"
	StatusOffline DeviceStatus = "offline"
	StatusWarning DeviceStatus = "warning"
)

// Range bounds a noise threshold in dB. Either side may be absent.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ReadingThresholds are the per-schedule noise limits configured on the device.
type ReadingThresholds struct {
	Normal  *Range `json:"normal,omitempty"`
	Night   *Range `json:"night,omitempty"`
	Holiday *Range `json:"holiday,omitempty"`
}

// ReadingMetadata describes where the device is installed.
type ReadingMetadata struct {
	PropertyID   *string  `json:"propertyId,omitempty"`
	PropertyName *string  `json:"propertyName,omitempty"`
	RoomNumber   *string  `json:"roomNumber,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Floor        *float64 `json:"floor,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// ReadingInput is a validated telemetry payload as sent by a device.
type ReadingInput struct {
	DeviceID     string             `json:"deviceId" validate:"required"`
	NoiseLevel   *float64           `json:"noiseLevel" validate:"required,gte=0,lte=150"`
	NoiseMax     *float64           `json:"noiseMax,omitempty" validate:"omitempty,gte=0,lte=150"`
	RecordedAt   *string            `json:"recordedAt,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	BatteryLevel *float64           `json:"batteryLevel,omitempty" validate:"omitempty,gte=0,lte=100"`
	Temperature  *float64           `json:"temperature,omitempty"`
	Humidity     *float64           `json:"humidity,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status       *DeviceStatus      `json:"status,omitempty" validate:"omitempty,oneof=online offline warning"`
	Metadata     *ReadingMetadata   `json:"metadata,omitempty"`
	Thresholds   *ReadingThresholds `json:"thresholds,omitempty"`
	Payload      map[string]any     `json:"payload,omitempty"`
}

// DeviceReading is a single accepted telemetry sample.
type DeviceReading struct {
	ID           string             `json:"id"`
	DeviceID     string             `json:"deviceId"`
	NoiseLevel   float64            `json:"noiseLevel"`
	NoiseMax     float64            `json:"noiseMax"`
	RecordedAt   time.Time          `json:"recordedAt"` // asserted by the device
	ReceivedAt   time.Time          `json:"receivedAt"` // assigned on ingestion
	BatteryLevel *float64           `json:"batteryLevel,omitempty"`
	Temperature  *float64           `json:"temperature,omitempty"`
	Humidity     *float64           `json:"humidity,omitempty"`
	Status       *DeviceStatus      `json:"status,omitempty"`
	Metadata     *ReadingMetadata   `json:"metadata,omitempty"`
	Thresholds   *ReadingThresholds `json:"thresholds,omitempty"`
	Payload      map[string]any     `json:"payload,omitempty"`
}
