package chats

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client the repo uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoRepo stores messages with partition key sessionId and sort key timestamp.
type DynamoRepo struct {
	Client DynamoAPI
	Table  string
}

func (r *DynamoRepo) Append(ctx context.Context, msg Message) error {
	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, err = r.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put message %s: %w", msg.SessionID, err)
	}
	return nil
}

// Query reads the oldest messages first. It follows LastEvaluatedKey because
// a single page stops at 1 MB even when limit has not been reached.
func (r *DynamoRepo) Query(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	return r.query(ctx, sessionID, limit, true)
}

func (r *DynamoRepo) Latest(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	msgs, err := r.query(ctx, sessionID, limit, false)
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

func (r *DynamoRepo) query(ctx context.Context, sessionID string, limit int, forward bool) ([]Message, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.Table),
		KeyConditionExpression: aws.String("sessionId = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: sessionID},
		},
		ScanIndexForward: aws.Bool(forward),
	}

	msgs := []Message{}
	for {
		if limit > 0 {
			in.Limit = aws.Int32(int32(limit - len(msgs)))
		}
		out, err := r.Client.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("dynamodb query %s: %w", sessionID, err)
		}
		var page []Message
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal messages: %w", err)
		}
		msgs = append(msgs, page...)
		if len(out.LastEvaluatedKey) == 0 || (limit > 0 && len(msgs) >= limit) {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (r *DynamoRepo) Delete(ctx context.Context, sessionID, timestamp string) error {
	_, err := r.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.Table),
		Key: map[string]types.AttributeValue{
			"sessionId": &types.AttributeValueMemberS{Value: sessionID},
			"timestamp": &types.AttributeValueMemberS{Value: timestamp},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb delete message %s/%s: %w", sessionID, timestamp, err)
	}
	return nil
}

var _ Repo = (*DynamoRepo)(nil)
