package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"noise_monitor/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of *dynamodb.Client used by the Dynamo stores.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

// ReadingDynamo stores readings in a table keyed by device_id (partition)
// and received_at (sort).
type ReadingDynamo struct {
	client DynamoAPI
	table  string
}

func NewReadingDynamo(client DynamoAPI, table string) *ReadingDynamo {
	return &ReadingDynamo{client: client, table: table}
}

var _ ReadingStore = (*ReadingDynamo)(nil)

// sortKeyLayout is fixed width so that string order matches time order.
const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

func formatSortKey(t time.Time) string { return t.UTC().Format(sortKeyLayout) }

func (r *ReadingDynamo) Append(ctx context.Context, rd models.DeviceReading) error {
	item, err := readingToItem(rd)
	if err != nil {
		return fmt.Errorf("encode reading of %q: %w", rd.DeviceID, err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put reading of %q: %w", rd.DeviceID, err)
	}
	return nil
}

func (r *ReadingDynamo) Latest(ctx context.Context, deviceID string) (*models.DeviceReading, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("device_id = :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: deviceID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query latest reading of %q: %w", deviceID, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	rd, err := itemToReading(out.Items[0])
	if err != nil {
		return nil, fmt.Errorf("decode reading of %q: %w", deviceID, err)
	}
	return &rd, nil
}

// History pages through the device partition newest first. The recorded_at
// bounds are a filter expression, so a page may come back short.
func (r *ReadingDynamo) History(ctx context.Context, deviceID string, from, to time.Time, limit int) ([]models.DeviceReading, error) {
	if limit <= 0 {
		return []models.DeviceReading{}, nil
	}
	values := map[string]types.AttributeValue{
		":d": &types.AttributeValueMemberS{Value: deviceID},
	}
	var filter string
	switch {
	case !from.IsZero() && !to.IsZero():
		filter = "recorded_at BETWEEN :from AND :to"
	case !from.IsZero():
		filter = "recorded_at >= :from"
	case !to.IsZero():
		filter = "recorded_at <= :to"
	}
	if !from.IsZero() {
		values[":from"] = &types.AttributeValueMemberS{Value: formatSortKey(from)}
	}
	if !to.IsZero() {
		values[":to"] = &types.AttributeValueMemberS{Value: formatSortKey(to)}
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    aws.String("device_id = :d"),
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
	}
	if filter != "" {
		in.FilterExpression = aws.String(filter)
	}

	out := make([]models.DeviceReading, 0, limit)
	for {
		page, err := r.client.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("query history of %q: %w", deviceID, err)
		}
		for _, item := range page.Items {
			rd, err := itemToReading(item)
			if err != nil {
				return nil, fmt.Errorf("decode reading of %q: %w", deviceID, err)
			}
			out = append(out, rd)
			if len(out) == limit {
				return out, nil
			}
		}
		if len(page.LastEvaluatedKey) == 0 {
			return out, nil
		}
		in.ExclusiveStartKey = page.LastEvaluatedKey
	}
}

// LatestAll scans the whole table and keeps the newest reading per device.
// TODO: keep a per-device "latest" item so this does not need a full scan.
func (r *ReadingDynamo) LatestAll(ctx context.Context) ([]models.DeviceReading, error) {
	latest := make(map[string]models.DeviceReading)
	in := &dynamodb.ScanInput{TableName: aws.String(r.table)}
	for {
		page, err := r.client.Scan(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("scan readings: %w", err)
		}
		for _, item := range page.Items {
			rd, err := itemToReading(item)
			if err != nil {
				return nil, fmt.Errorf("decode reading: %w", err)
			}
			if cur, ok := latest[rd.DeviceID]; !ok || rd.ReceivedAt.After(cur.ReceivedAt) {
				latest[rd.DeviceID] = rd
			}
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = page.LastEvaluatedKey
	}

	out := make([]models.DeviceReading, 0, len(latest))
	for _, rd := range latest {
		out = append(out, rd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func readingToItem(rd models.DeviceReading) (map[string]types.AttributeValue, error) {
	item := map[string]types.AttributeValue{
		"device_id":   &types.AttributeValueMemberS{Value: rd.DeviceID},
		"received_at": &types.AttributeValueMemberS{Value: formatSortKey(rd.ReceivedAt)},
		"recorded_at": &types.AttributeValueMemberS{Value: formatSortKey(rd.RecordedAt)},
		"id":          &types.AttributeValueMemberS{Value: rd.ID},
		"noise_level": numberAttr(rd.NoiseLevel),
		"noise_max":   numberAttr(rd.NoiseMax),
	}
	putOptionalNumber(item, "battery_level", rd.BatteryLevel)
	putOptionalNumber(item, "temperature", rd.Temperature)
	putOptionalNumber(item, "humidity", rd.Humidity)
	if rd.Status != nil {
		item["status"] = &types.AttributeValueMemberS{Value: string(*rd.Status)}
	}
	for name, v := range map[string]any{
		"metadata":   rd.Metadata,
		"thresholds": rd.Thresholds,
		"payload":    rd.Payload,
	} {
		s, err := marshalNullable(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", name, err)
		}
		if s.Valid && s.String != "{}" {
			item[name] = &types.AttributeValueMemberS{Value: s.String}
		}
	}
	return item, nil
}

func itemToReading(item map[string]types.AttributeValue) (models.DeviceReading, error) {
	var rd models.DeviceReading
	var err error

	rd.DeviceID = stringAttr(item, "device_id")
	rd.ID = stringAttr(item, "id")
	if rd.ReceivedAt, err = time.Parse(sortKeyLayout, stringAttr(item, "received_at")); err != nil {
		return rd, fmt.Errorf("received_at: %w", err)
	}
	if rd.RecordedAt, err = time.Parse(sortKeyLayout, stringAttr(item, "recorded_at")); err != nil {
		return rd, fmt.Errorf("recorded_at: %w", err)
	}
	for name, dst := range map[string]**float64{
		"battery_level": &rd.BatteryLevel,
		"temperature":   &rd.Temperature,
		"humidity":      &rd.Humidity,
	} {
		if *dst, err = optionalNumber(item, name); err != nil {
			return rd, err
		}
	}
	level, err := optionalNumber(item, "noise_level")
	if err != nil || level == nil {
		return rd, fmt.Errorf("noise_level: missing or invalid")
	}
	rd.NoiseLevel = *level
	rd.NoiseMax = rd.NoiseLevel
	if m, err := optionalNumber(item, "noise_max"); err == nil && m != nil {
		rd.NoiseMax = *m
	}
	if s := stringAttr(item, "status"); s != "" {
		st := models.DeviceStatus(s)
		rd.Status = &st
	}
	if s := stringAttr(item, "metadata"); s != "" {
		if err := json.Unmarshal([]byte(s), &rd.Metadata); err != nil {
			return rd, fmt.Errorf("metadata: %w", err)
		}
	}
	if s := stringAttr(item, "thresholds"); s != "" {
		if err := json.Unmarshal([]byte(s), &rd.Thresholds); err != nil {
			return rd, fmt.Errorf("thresholds: %w", err)
		}
	}
	if s := stringAttr(item, "payload"); s != "" {
		if err := json.Unmarshal([]byte(s), &rd.Payload); err != nil {
			return rd, fmt.Errorf("payload: %w", err)
		}
	}
	return rd, nil
}

func numberAttr(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

func putOptionalNumber(item map[string]types.AttributeValue, name string, f *float64) {
	if f != nil {
		item[name] = numberAttr(*f)
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func optionalNumber(item map[string]types.AttributeValue, name string) (*float64, error) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &f, nil
}
