package repository

import (
	"context"
	"fmt"
	"time"

	"noise_monitor/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SettingDynamo keeps system settings in a table keyed by "key".
type SettingDynamo struct {
	client DynamoAPI
	table  string
}

func NewSettingDynamo(client DynamoAPI, table string) *SettingDynamo {
	return &SettingDynamo{client: client, table: table}
}

var _ SettingRepo = (*SettingDynamo)(nil)

func settingKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: models.IngestSettingKey},
	}
}

func (r *SettingDynamo) LoadIngestSetting(ctx context.Context) (*models.IngestSetting, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            settingKey(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get setting %q: %w", models.IngestSettingKey, err)
	}
	enabled, ok := out.Item["enabled"].(*types.AttributeValueMemberBOOL)
	if !ok {
		return nil, nil
	}
	s := &models.IngestSetting{Enabled: enabled.Value}
	if ts, err := time.Parse(time.RFC3339Nano, stringAttr(out.Item, "updated_at")); err == nil {
		s.UpdatedAt = ts.UTC()
	}
	return s, nil
}

func (r *SettingDynamo) SaveIngestSetting(ctx context.Context, s models.IngestSetting) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	item := settingKey()
	item["enabled"] = &types.AttributeValueMemberBOOL{Value: s.Enabled}
	item["updated_at"] = &types.AttributeValueMemberS{Value: ts.UTC().Format(time.RFC3339Nano)}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put setting %q: %w", models.IngestSettingKey, err)
	}
	return nil
}
