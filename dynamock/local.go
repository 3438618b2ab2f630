package dynamock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	dynamodel "github.com/MacHu-GWU/dynamodb-modeler-project"
)

// DefaultLocalPort is the default port for DynamoDB Local.
const DefaultLocalPort = 8000

// LocalDynamoDB represents a connection to a local DynamoDB instance.
type LocalDynamoDB struct {
	Client   *dynamodb.Client
	Endpoint string
	Port     int
}

// NewLocalClient creates a DynamoDB client configured to connect to a local
// DynamoDB instance. This is useful for integration testing with DynamoDB Local.
func NewLocalClient(port int) *dynamodb.Client {
	endpoint := fmt.Sprintf("http://localhost:%d", port)

	cfg := aws.Config{
		Region:      "us-east-1", // DynamoDB Local doesn't care about region
		Credentials: aws.AnonymousCredentials{},
		EndpointResolverWithOptions: aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:           endpoint,
					SigningRegion: region,
				}, nil
			},
		),
	}

	return dynamodb.NewFromConfig(cfg)
}

// NewLocalDynamoDB creates a LocalDynamoDB instance with the specified port.
func NewLocalDynamoDB(port int) *LocalDynamoDB {
	return &LocalDynamoDB{
		Client:   NewLocalClient(port),
		Endpoint: fmt.Sprintf("http://localhost:%d", port),
		Port:     port,
	}
}

// IsAvailable checks if DynamoDB Local is running on the configured port.
func (l *LocalDynamoDB) IsAvailable(ctx context.Context) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", l.Port), 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()

	_, err = l.Client.ListTables(ctx, &dynamodb.ListTablesInput{})
	return err == nil
}

// CreateModelTable creates a table with the dynamodel schema: a (pk, sk)
// string key pair plus the lookup GSI keyed by sk. Schema provisioning lives
// here, in test support, not in the core.
func (l *LocalDynamoDB) CreateModelTable(ctx context.Context, table *dynamodel.Table) error {
	input := &dynamodb.CreateTableInput{
		TableName: aws.String(table.TableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(dynamodel.AttributeNamePK),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String(dynamodel.AttributeNameSK),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(dynamodel.AttributeNamePK),
				KeyType:       types.KeyTypeHash,
			},
			{
				AttributeName: aws.String(dynamodel.AttributeNameSK),
				KeyType:       types.KeyTypeRange,
			},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(table.LookupIndexName),
				KeySchema: []types.KeySchemaElement{
					{
						AttributeName: aws.String(dynamodel.AttributeNameSK),
						KeyType:       types.KeyTypeHash,
					},
					{
						AttributeName: aws.String(dynamodel.AttributeNamePK),
						KeyType:       types.KeyTypeRange,
					},
				},
				Projection: &types.Projection{
					ProjectionType: types.ProjectionTypeAll,
				},
				ProvisionedThroughput: &types.ProvisionedThroughput{
					ReadCapacityUnits:  aws.Int64(5),
					WriteCapacityUnits: aws.Int64(5),
				},
			},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		},
	}

	_, err := l.Client.CreateTable(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.TableName, err)
	}

	return l.WaitForTableActive(ctx, table.TableName, 30*time.Second)
}

// WaitForTableActive waits for a table to become active.
func (l *LocalDynamoDB) WaitForTableActive(ctx context.Context, tableName string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		output, err := l.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %w", tableName, err)
		}

		if output.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
			// Continue checking
		}
	}

	return fmt.Errorf("table %s did not become active within %v", tableName, timeout)
}

// DeleteTable deletes a table and waits for it to be fully deleted.
func (l *LocalDynamoDB) DeleteTable(ctx context.Context, tableName string) error {
	_, err := l.Client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete table %s: %w", tableName, err)
	}

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		_, err := l.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			var notFound *types.ResourceNotFoundException
			if errors.As(err, &notFound) {
				return nil
			}
			return fmt.Errorf("error checking table deletion status: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
			// Continue checking
		}
	}

	return fmt.Errorf("table %s was not deleted within 30s", tableName)
}
