package dynamo

import (
	"context"
	"fmt"
	"time"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type verificationCodeItem struct {
	UserID   string `dynamodbav:"userId"`
	CodeHash string `dynamodbav:"codeHash"`
	CodeSalt string `dynamodbav:"codeSalt,omitempty"`
	TTL      int64  `dynamodbav:"ttl"`
}

// VerificationCodeStore is the DynamoDB [adminAuth.VerificationCodeStore].
type VerificationCodeStore struct {
	api   API
	table string
	ttl   time.Duration
	now   func() time.Time
}

// NewVerificationCodeStore returns a store that stamps each code with
// now+ttl, truncated to whole seconds.
func NewVerificationCodeStore(api API, table string, ttl time.Duration) *VerificationCodeStore {
	return &VerificationCodeStore{api: api, table: table, ttl: ttl, now: time.Now}
}

var _ adminAuth.VerificationCodeStore = (*VerificationCodeStore)(nil)

// Put overwrites any code stored for the user.
func (s *VerificationCodeStore) Put(ctx context.Context, code adminAuth.VerificationCode) error {
	item, err := attributevalue.MarshalMap(verificationCodeItem{
		UserID:   code.UserID,
		CodeHash: code.CodeHash,
		CodeSalt: code.CodeSalt,
		TTL:      s.now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return err
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Fetch returns adminAuth.ErrNoActiveVerificationCode when nothing is stored.
// Items past their ttl but not yet purged are returned as is.
func (s *VerificationCodeStore) Fetch(ctx context.Context, userID string) (*adminAuth.VerificationCode, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            userKey(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(out.Item) == 0 {
		return nil, adminAuth.ErrNoActiveVerificationCode
	}

	var item verificationCodeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptItem, err)
	}

	return &adminAuth.VerificationCode{
		UserID:   item.UserID,
		CodeHash: item.CodeHash,
		CodeSalt: item.CodeSalt,
		TTL:      item.TTL,
	}, nil
}

// Delete removes the user's code. Deleting a missing code succeeds.
func (s *VerificationCodeStore) Delete(ctx context.Context, userID string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       userKey(userID),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
