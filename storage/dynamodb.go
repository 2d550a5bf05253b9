package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wrenbin/wrenbin/models"
)

// DynamoStore implements PasteStore using DynamoDB. The table's partition
// key is the paste key; conditional writes provide the collision check and
// the atomic burn, and the ttl attribute lets DynamoDB expire items on its
// own. Reads still re-check expiry since the TTL sweep can lag by hours.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoStore creates a new DynamoDB storage backend.
func NewDynamoStore(tableName, region string) (*DynamoStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, err
	}

	return &DynamoStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}, nil
}

func pasteToItem(paste *models.Paste) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"key":                &types.AttributeValueMemberS{Value: paste.Key},
		"content":            &types.AttributeValueMemberS{Value: paste.Content},
		"syntax":             &types.AttributeValueMemberS{Value: paste.Syntax},
		"burn_after_reading": &types.AttributeValueMemberBOOL{Value: paste.BurnAfterReading},
		"created_at":         &types.AttributeValueMemberN{Value: strconv.FormatInt(paste.CreatedAt.Unix(), 10)},
		"size":               &types.AttributeValueMemberN{Value: strconv.FormatInt(paste.Size, 10)},
	}
	if paste.ExpiresAt != nil {
		expires := strconv.FormatInt(paste.ExpiresAt.Unix(), 10)
		item["expires_at"] = &types.AttributeValueMemberN{Value: expires}
		item["ttl"] = &types.AttributeValueMemberN{Value: expires}
	}
	return item
}

func itemToPaste(item map[string]types.AttributeValue) *models.Paste {
	paste := &models.Paste{}
	if v, ok := item["key"].(*types.AttributeValueMemberS); ok {
		paste.Key = v.Value
	}
	if v, ok := item["content"].(*types.AttributeValueMemberS); ok {
		paste.Content = v.Value
	}
	if v, ok := item["syntax"].(*types.AttributeValueMemberS); ok {
		paste.Syntax = v.Value
	}
	if v, ok := item["burn_after_reading"].(*types.AttributeValueMemberBOOL); ok {
		paste.BurnAfterReading = v.Value
	}
	if v, ok := item["created_at"].(*types.AttributeValueMemberN); ok {
		if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			paste.CreatedAt = time.Unix(n, 0)
		}
	}
	if v, ok := item["expires_at"].(*types.AttributeValueMemberN); ok {
		if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			expires := time.Unix(n, 0)
			paste.ExpiresAt = &expires
		}
	}
	if v, ok := item["size"].(*types.AttributeValueMemberN); ok {
		if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			paste.Size = n
		}
	}
	return paste
}

// Store saves a paste. The conditional put admits the write when the key
// is unclaimed or held only by an expired item; an occupant without
// expires_at never matches the expiry comparison, so never-expiring
// pastes keep their slot.
func (d *DynamoStore) Store(paste *models.Paste) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.tableName),
		Item:                pasteToItem(paste),
		ConditionExpression: aws.String("attribute_not_exists(#k) OR expires_at < :now"),
		ExpressionAttributeNames: map[string]string{
			"#k": "key",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrKeyCollision
	}
	return err
}

// Get retrieves a paste without consuming it.
func (d *DynamoStore) Get(key string) (*models.Paste, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}

	paste := itemToPaste(result.Item)
	if paste.IsExpired() {
		_ = d.Delete(key)
		return nil, ErrExpired
	}
	return paste, nil
}

// GetAndBurn retrieves a paste for the view path. A burn paste is
// consumed by a conditional DeleteItem returning the old image, so
// concurrent viewers race on one delete and only the winner gets content.
func (d *DynamoStore) GetAndBurn(key string) (*models.Paste, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
		ConditionExpression: aws.String("burn_after_reading = :burn"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":burn": &types.AttributeValueMemberBOOL{Value: true},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			// Absent or not a burn paste: plain lookup.
			return d.Get(key)
		}
		return nil, err
	}
	if result.Attributes == nil {
		return nil, nil
	}

	paste := itemToPaste(result.Attributes)
	if paste.IsExpired() {
		return nil, ErrExpired
	}
	return paste, nil
}

// Delete removes a paste.
func (d *DynamoStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
	})
	return err
}

// PurgeExpired scans for expired items and deletes them. DynamoDB's TTL
// sweep does this on its own eventually; the scan just tightens the
// window when an operator asks for it.
func (d *DynamoStore) PurgeExpired() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	now := strconv.FormatInt(time.Now().Unix(), 10)
	purged := 0
	var startKey map[string]types.AttributeValue

	for {
		result, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(d.tableName),
			FilterExpression: aws.String("expires_at < :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: now},
			},
			ProjectionExpression: aws.String("#k"),
			ExpressionAttributeNames: map[string]string{
				"#k": "key",
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return purged, err
		}

		for _, item := range result.Items {
			if v, ok := item["key"].(*types.AttributeValueMemberS); ok {
				if err := d.Delete(v.Value); err == nil {
					purged++
				}
			}
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return purged, nil
}

// Close closes the DynamoDB connection.
func (d *DynamoStore) Close() error {
	return nil
}
