package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"noise_monitor/internal/logger"
	"noise_monitor/internal/models"
	"noise_monitor/internal/repository"
)

func TestTieredStore_AppendWritesThrough(t *testing.T) {
	ctx := context.Background()
	local := repository.NewMemoryHistory(10)
	remote := &fakeStore{}
	s := newTieredStore(local, remote, nil, nil)

	r := sampleReading("a", time.Now().UTC())
	if err := s.Append(ctx, r); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(remote.appended) != 1 {
		t.Fatalf("remote not written")
	}
	if got, _ := local.Latest(ctx, "a"); got == nil || got.ID != r.ID {
		t.Fatalf("local mirror not written")
	}
}

func TestTieredStore_AppendRemoteFailureIsNotMirrored(t *testing.T) {
	ctx := context.Background()
	local := repository.NewMemoryHistory(10)
	boom := errors.New("boom")
	s := newTieredStore(local, &fakeStore{appendErr: boom}, nil, nil)

	if err := s.Append(ctx, sampleReading("a", time.Now())); !errors.Is(err, boom) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if got, _ := local.Latest(ctx, "a"); got != nil {
		t.Fatalf("failed write must not be mirrored: %+v", got)
	}
}

func TestTieredStore_ReadsPreferRemote(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	local := repository.NewMemoryHistory(10)
	_ = local.Append(ctx, sampleReading("local-only", now))

	remoteReading := sampleReading("a", now)
	remote := &fakeStore{
		latest:  &remoteReading,
		history: []models.DeviceReading{remoteReading},
		all:     []models.DeviceReading{remoteReading},
	}
	s := newTieredStore(local, remote, nil, nil)

	all, err := s.LatestAll(ctx)
	if err != nil || len(all) != 1 || all[0].DeviceID != "a" {
		t.Fatalf("LatestAll should come from remote: %+v, %v", all, err)
	}
	hist, err := s.History(ctx, "a", time.Time{}, time.Time{}, 5)
	if err != nil || len(hist) != 1 || remote.gotLimit != 5 {
		t.Fatalf("History: %+v, %v (limit %d)", hist, err, remote.gotLimit)
	}
}

func TestTieredStore_ReadFailureFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	local := repository.NewMemoryHistory(10)
	for i := 0; i < 3; i++ {
		_ = local.Append(ctx, sampleReading("a", now.Add(time.Duration(i)*time.Second)))
	}

	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.WarnLevel, logger.FormatJSON, &buf)
	s := newTieredStore(local, &fakeStore{readErr: errors.New("timeout")}, log, nil)

	latest, err := s.Latest(ctx, "a")
	if err != nil || latest == nil || !latest.ReceivedAt.Equal(now.Add(2*time.Second)) {
		t.Fatalf("Latest fallback: %+v, %v", latest, err)
	}
	hist, err := s.History(ctx, "a", time.Time{}, time.Time{}, 2)
	if err != nil || len(hist) != 2 {
		t.Fatalf("History fallback: %d, %v", len(hist), err)
	}
	all, err := s.LatestAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("LatestAll fallback: %+v, %v", all, err)
	}

	out := buf.String()
	if strings.Count(out, "reading_store_read_failed_using_local") != 3 {
		t.Fatalf("expected one warning per fallback, got:\n%s", out)
	}
	for _, op := range []string{`"op":"latest"`, `"op":"history"`, `"op":"latest_all"`} {
		if !strings.Contains(out, op) {
			t.Fatalf("missing %s in log:\n%s", op, out)
		}
	}
}

func TestTieredStore_LocalOnly(t *testing.T) {
	ctx := context.Background()
	s := newTieredStore(repository.NewMemoryHistory(2), nil, nil, nil)
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, sampleReading("a", now.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	hist, _ := s.History(ctx, "a", time.Time{}, time.Time{}, 10)
	if len(hist) != 2 {
		t.Fatalf("history should be bounded to 2, got %d", len(hist))
	}
}
