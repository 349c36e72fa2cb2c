package test

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	LOCAL_DDB_PORT = 8000
	TableName      = "RecipeData"
	localDirEnv    = "DYNAMODB_LOCAL_DIR"
)

func CreateTable(client *dynamodb.Client) (string, error) {
	keySchema := []types.KeySchemaElement{
		{
			AttributeName: aws.String("PK"),
			KeyType:       types.KeyTypeHash,
		},
		{
			AttributeName: aws.String("SK"),
			KeyType:       types.KeyTypeRange,
		},
	}
	attributes := []types.AttributeDefinition{
		{
			AttributeName: aws.String("PK"),
			AttributeType: types.ScalarAttributeTypeS,
		},
		{
			AttributeName: aws.String("SK"),
			AttributeType: types.ScalarAttributeTypeS,
		},
		{
			AttributeName: aws.String("GS1-PK"),
			AttributeType: types.ScalarAttributeTypeS,
		},
		{
			AttributeName: aws.String("GS1-SK"),
			AttributeType: types.ScalarAttributeTypeS,
		},
	}
	indexes := []types.GlobalSecondaryIndex{
		{
			IndexName: aws.String("GS1"),
			KeySchema: []types.KeySchemaElement{
				{
					AttributeName: aws.String("GS1-PK"),
					KeyType:       types.KeyTypeHash,
				},
				{
					AttributeName: aws.String("GS1-SK"),
					KeyType:       types.KeyTypeRange,
				},
			},
			Projection: &types.Projection{
				ProjectionType: types.ProjectionTypeAll,
			},
		},
	}
	output, err := client.CreateTable(context.TODO(), &dynamodb.CreateTableInput{
		TableName:              aws.String(TableName),
		KeySchema:              keySchema,
		BillingMode:            types.BillingModePayPerRequest,
		AttributeDefinitions:   attributes,
		GlobalSecondaryIndexes: indexes,
	})
	if err != nil {
		return "", err
	}
	waiter := dynamodb.NewTableExistsWaiter(client, func(tewo *dynamodb.TableExistsWaiterOptions) {
		tewo.LogWaitAttempts = true
	})
	_, err = waiter.WaitForOutput(context.TODO(), &dynamodb.DescribeTableInput{
		TableName: output.TableDescription.TableName,
	}, time.Second*5)
	return *output.TableDescription.TableName, err
}

func (l *LocalDynamoServer) CreateLocalClient() (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRetryMaxAttempts(10),
		config.WithRegion("us-east-1"),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: fmt.Sprintf("http://localhost:%d", l.Port)}, nil
			})),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     "fake",
				SecretAccessKey: "fake",
				SessionToken:    "fake",
			}}),
	)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

type LocalDynamoServer struct {
	Process *os.Process
	Port    int
}

// StartLocalServer runs DynamoDB Local from DYNAMODB_LOCAL_DIR, skipping the
// test when the jar or a java runtime is not available.
func StartLocalServer(port int, t *testing.T) *LocalDynamoServer {
	t.Helper()
	dir := os.Getenv(localDirEnv)
	if dir == "" {
		t.Skipf("%s is not set, skipping DynamoDB Local tests", localDirEnv)
	}
	jar := filepath.Join(dir, "DynamoDBLocal.jar")
	if _, err := os.Stat(jar); err != nil {
		t.Skipf("DynamoDB Local jar not found at %s", jar)
	}
	if _, err := exec.LookPath("java"); err != nil {
		t.Skip("java is not installed")
	}
	cmd := exec.Command(
		"java", fmt.Sprintf("-Djava.library.path=%s", filepath.Join(dir, "DynamoDBLocal_lib")),
		"-jar", jar,
		"-port", strconv.Itoa(port),
		"-inMemory",
	)
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start local DDB server: %s", err)
	}
	t.Cleanup(func() {
		if err := cmd.Process.Kill(); err != nil {
			t.Errorf("Failed to terminate local DDB server: %s", err)
		}
	})
	waitForPort(t, port)
	return &LocalDynamoServer{Port: port, Process: cmd.Process}
}

func waitForPort(t *testing.T, port int) {
	address := net.JoinHostPort("localhost", strconv.Itoa(port))
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", address, 200*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("DynamoDB Local did not listen on %s", address)
}

// LocalTable starts a server on port, creates the table, and returns a client.
func LocalTable(t *testing.T, port int) (*dynamodb.Client, string) {
	t.Helper()
	server := StartLocalServer(port, t)
	client, err := server.CreateLocalClient()
	if err != nil {
		t.Fatalf("Failed to create local client: %s", err)
	}
	tableName, err := CreateTable(client)
	if err != nil {
		t.Fatalf("Failed to create table: %s", err)
	}
	return client, tableName
}
