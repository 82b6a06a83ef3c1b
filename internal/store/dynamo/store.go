package dynamo

import (
	"context"
	"errors"
	"fmt"

	"serverless-todo/backend/internal/models"
	"serverless-todo/backend/internal/repositories"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var _ repositories.Store = (*Store)(nil)

// API is the subset of the DynamoDB client the store calls.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type Store struct {
	api      API
	table    string
	endpoint string
}

type Option func(*Store)

func WithAPI(api API) Option {
	return func(s *Store) {
		s.api = api
	}
}

// WithEndpoint points the client at a non-AWS endpoint such as DynamoDB Local.
func WithEndpoint(endpoint string) Option {
	return func(s *Store) {
		s.endpoint = endpoint
	}
}

func New(cfg *aws.Config, table string, opts ...Option) *Store {
	s := &Store{table: table}
	for _, opt := range opts {
		opt(s)
	}

	if s.api == nil {
		s.api = dynamodb.NewFromConfig(*cfg, func(o *dynamodb.Options) {
			if s.endpoint != "" {
				o.BaseEndpoint = aws.String(s.endpoint)
			}
		})
	}

	return s
}

// LoadAWSConfig resolves credentials and region the standard SDK way. Retries
// are left to the SDK retryer.
func LoadAWSConfig(ctx context.Context, region string, maxRetries int) (aws.Config, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if maxRetries > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(maxRetries))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func (s *Store) Put(ctx context.Context, task *models.Task) error {
	item, err := attributevalue.MarshalMap(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(string(repositories.FieldID)))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build put condition: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.table),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("failed to put task %s: %w", task.ID, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, filter repositories.Filter) ([]models.Task, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(s.table)}

	if cond, ok := conditionOf(filter.Conditions); ok {
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build scan filter: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	tasks := []models.Task{}
	paginator := dynamodb.NewScanPaginator(s.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
		}

		var batch []models.Task
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
		}
		tasks = append(tasks, batch...)
	}

	return tasks, nil
}

func (s *Store) Update(ctx context.Context, update repositories.Update) (*models.Task, error) {
	if len(update.Set) == 0 {
		return nil, errors.New("update has no fields to set")
	}

	var set expression.UpdateBuilder
	for field, value := range update.Set {
		set = set.Set(expression.Name(string(field)), expression.Value(value))
	}

	builder := expression.NewBuilder().WithUpdate(set)
	if cond, ok := conditionOf(update.Conditions); ok {
		builder = builder.WithCondition(cond)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}

	out, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			string(repositories.FieldID): &types.AttributeValueMemberS{Value: update.Key},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, repositories.ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to update task %s: %w", update.Key, err)
	}

	var task models.Task
	if err := attributevalue.UnmarshalMap(out.Attributes, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated task: %w", err)
	}
	return &task, nil
}

func conditionOf(conditions []repositories.Condition) (expression.ConditionBuilder, bool) {
	if len(conditions) == 0 {
		return expression.ConditionBuilder{}, false
	}

	cond := equal(conditions[0])
	for _, c := range conditions[1:] {
		cond = cond.And(equal(c))
	}
	return cond, true
}

func equal(c repositories.Condition) expression.ConditionBuilder {
	return expression.Name(string(c.Field)).Equal(expression.Value(c.Value))
}
