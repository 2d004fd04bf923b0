package repository

import (
	"errors"
	"testing"
	"time"

	"noise_monitor/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestSettingDynamo_SaveThenLoad(t *testing.T) {
	t.Parallel()
	fake := &fakeDynamo{}
	repo := NewSettingDynamo(fake, "settings")
	updated := time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)

	if err := repo.SaveIngestSetting(ctx(t), models.IngestSetting{Enabled: false, UpdatedAt: updated}); err != nil {
		t.Fatalf("SaveIngestSetting: %v", err)
	}
	put := fake.puts[0]
	if aws.ToString(put.TableName) != "settings" || stringAttr(put.Item, "key") != models.IngestSettingKey {
		t.Fatalf("unexpected put %+v", put)
	}

	fake.getItem = put.Item
	got, err := repo.LoadIngestSetting(ctx(t))
	if err != nil {
		t.Fatalf("LoadIngestSetting: %v", err)
	}
	if got == nil || got.Enabled || !got.UpdatedAt.Equal(updated) {
		t.Fatalf("got %+v", got)
	}
	if !aws.ToBool(fake.gets[0].ConsistentRead) {
		t.Fatal("expected a consistent read")
	}
}

func TestSettingDynamo_LoadMissing(t *testing.T) {
	t.Parallel()

	tests := map[string]map[string]types.AttributeValue{
		"no item": nil,
		"enabled not boolean": {
			"key":     &types.AttributeValueMemberS{Value: models.IngestSettingKey},
			"enabled": &types.AttributeValueMemberS{Value: "false"},
		},
	}
	for name, item := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewSettingDynamo(&fakeDynamo{getItem: item}, "settings")
			got, err := repo.LoadIngestSetting(ctx(t))
			if err != nil || got != nil {
				t.Fatalf("expected (nil, nil), got (%v, %v)", got, err)
			}
		})
	}
}

func TestSettingDynamo_Errors(t *testing.T) {
	t.Parallel()
	boom := errors.New("access denied")
	repo := NewSettingDynamo(&fakeDynamo{err: boom}, "settings")

	if _, err := repo.LoadIngestSetting(ctx(t)); !errors.Is(err, boom) {
		t.Fatalf("load: expected wrapped error, got %v", err)
	}
	if err := repo.SaveIngestSetting(ctx(t), models.IngestSetting{Enabled: true}); !errors.Is(err, boom) {
		t.Fatalf("save: expected wrapped error, got %v", err)
	}
}
