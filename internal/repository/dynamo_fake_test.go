package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo records requests and replays scripted pages.
type fakeDynamo struct {
	puts    []*dynamodb.PutItemInput
	gets    []*dynamodb.GetItemInput
	queries []dynamodb.QueryInput
	scans   []dynamodb.ScanInput

	getItem    map[string]types.AttributeValue
	queryPages []*dynamodb.QueryOutput
	scanPages  []*dynamodb.ScanOutput
	err        error
}

var _ DynamoAPI = (*fakeDynamo)(nil)

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gets = append(f.gets, in)
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

// Query copies the input because callers reuse it across pages.
func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, *in)
	return nextPage(&f.queryPages, &dynamodb.QueryOutput{})
}

func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.scans = append(f.scans, *in)
	return nextPage(&f.scanPages, &dynamodb.ScanOutput{})
}

func nextPage[T any](pages *[]*T, empty *T) (*T, error) {
	if len(*pages) == 0 {
		return empty, nil
	}
	p := (*pages)[0]
	*pages = (*pages)[1:]
	if p == nil {
		return nil, errors.New("scripted page failure")
	}
	return p, nil
}
