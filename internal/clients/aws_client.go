package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/spacesedan/kyokan/config"
)

func NewAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	slog.Info("[AWSClient] Initializing AWS Config...", slog.String("region", cfg.Region))
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("[AWSClient] failed to load AWS config: %w", err)
	}
	slog.Info("[AWSClient] AWS Config Initialized")
	return awsCfg, nil
}

// NewDynamoDBClient builds a client, pointing it at endpoint when one is set
// (DynamoDB Local in development).
func NewDynamoDBClient(awsCfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
