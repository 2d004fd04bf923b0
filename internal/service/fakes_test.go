package service

import (
	"context"
	"sync"
	"time"

	"noise_monitor/internal/models"
)

// fakeStore is a scriptable repository.ReadingStore.
type fakeStore struct {
	mu sync.Mutex

	appendErr error
	readErr   error
	appended  []models.DeviceReading

	latest  *models.DeviceReading
	history []models.DeviceReading
	all     []models.DeviceReading

	gotDeviceID string
	gotFrom     time.Time
	gotTo       time.Time
	gotLimit    int
}

func (f *fakeStore) Append(ctx context.Context, r models.DeviceReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, r)
	return nil
}

func (f *fakeStore) Latest(ctx context.Context, deviceID string) (*models.DeviceReading, error) {
	f.gotDeviceID = deviceID
	return f.latest, f.readErr
}

func (f *fakeStore) History(ctx context.Context, deviceID string, from, to time.Time, limit int) ([]models.DeviceReading, error) {
	f.gotDeviceID, f.gotFrom, f.gotTo, f.gotLimit = deviceID, from, to, limit
	return f.history, f.readErr
}

func (f *fakeStore) LatestAll(ctx context.Context) ([]models.DeviceReading, error) {
	return f.all, f.readErr
}

// fakeSettings is a scriptable repository.SettingRepo.
type fakeSettings struct {
	setting *models.IngestSetting
	loadErr error
	saveErr error
	loads   int
	saves   []models.IngestSetting
}

func (f *fakeSettings) LoadIngestSetting(ctx context.Context) (*models.IngestSetting, error) {
	f.loads++
	return f.setting, f.loadErr
}

func (f *fakeSettings) SaveIngestSetting(ctx context.Context, s models.IngestSetting) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, s)
	f.setting = &s
	return nil
}

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func ptr[T any](v T) *T { return &v }

func sampleReading(deviceID string, receivedAt time.Time) models.DeviceReading {
	return models.DeviceReading{
		ID:         deviceID + "-" + receivedAt.Format(time.RFC3339Nano),
		DeviceID:   deviceID,
		NoiseLevel: 50,
		NoiseMax:   50,
		RecordedAt: receivedAt,
		ReceivedAt: receivedAt,
	}
}
