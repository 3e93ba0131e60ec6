package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/kyokan/internal/models"
	"github.com/spacesedan/kyokan/internal/storage"
)

const RESULTS_TABLE_NAME = "KyokanResults"

// DynamoAPI is the subset of the DynamoDB client the result table uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// ResultTable stores one item per analysis keyed by result_id.
type ResultTable struct {
	client DynamoAPI
	table  string
}

func NewResultTable(client DynamoAPI, table string) *ResultTable {
	if table == "" {
		table = RESULTS_TABLE_NAME
	}
	return &ResultTable{client: client, table: table}
}

// Ping succeeds when the table exists and is active.
func (t *ResultTable) Ping(ctx context.Context) error {
	out, err := t.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(t.table)})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Describe %s failed: %w", t.table, err)
	}
	if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
		return fmt.Errorf("[DynamoDB] Table %s is not active", t.table)
	}
	return nil
}

func (t *ResultTable) Save(ctx context.Context, result models.AnalysisResult) error {
	if err := storage.ValidateID(result.ResultID); err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(result)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal result: %w", err)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(t.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(result_id)"),
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return fmt.Errorf("[DynamoDB] %s: %w", result.ResultID, storage.ErrResultExists)
		}
		return fmt.Errorf("[DynamoDB] Failed to put result: %w", err)
	}

	slog.Info("[DynamoDB] Successfully stored result", slog.String("result_id", result.ResultID))
	return nil
}

func (t *ResultTable) Get(ctx context.Context, id string) (*models.AnalysisResult, error) {
	if err := storage.ValidateID(id); err != nil {
		return nil, err
	}

	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.table),
		Key: map[string]types.AttributeValue{
			"result_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to get result: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, storage.ErrNotFound
	}

	var result models.AnalysisResult
	if err := attributevalue.UnmarshalMap(out.Item, &result); err != nil {
		return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal result: %w", err)
	}
	return &result, nil
}

// List scans the table for result IDs only.
func (t *ResultTable) List(ctx context.Context) ([]string, error) {
	paginator := dynamodb.NewScanPaginator(t.client, &dynamodb.ScanInput{
		TableName:            aws.String(t.table),
		ProjectionExpression: aws.String("result_id"),
	})

	var ids []string
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for results failed: %w", err)
		}

		var page []struct {
			ResultID string `dynamodbav:"result_id"`
		}
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal current result page", slog.String("error", err.Error()))
			return nil, err
		}
		for _, p := range page {
			ids = append(ids, p.ResultID)
		}
	}

	sort.Strings(ids)
	return ids, nil
}
