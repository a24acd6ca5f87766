package dynamo

import (
	"context"
	"errors"
	"fmt"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const conditionalCheckFailed = "ConditionalCheckFailed"

type adminUserItem struct {
	UserID       string `dynamodbav:"userId"`
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name,omitempty"`
	PasswordHash string `dynamodbav:"passwordHash,omitempty"`
	PasswordSalt string `dynamodbav:"passwordSalt,omitempty"`
}

func (i adminUserItem) record() *adminAuth.AdminUser {
	return &adminAuth.AdminUser{
		UserID:       i.UserID,
		Email:        i.Email,
		Name:         i.Name,
		PasswordHash: i.PasswordHash,
		PasswordSalt: i.PasswordSalt,
	}
}

// AdminUserStore is the DynamoDB [adminAuth.CredentialStore].
type AdminUserStore struct {
	api        API
	table      string
	emailIndex string
}

// NewAdminUserStore returns a store over table using emailIndex for lookups
// by email.
func NewAdminUserStore(api API, table, emailIndex string) *AdminUserStore {
	return &AdminUserStore{api: api, table: table, emailIndex: emailIndex}
}

var _ adminAuth.CredentialStore = (*AdminUserStore)(nil)

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

func (s *AdminUserStore) emailQuery(email string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(s.emailIndex),
		KeyConditionExpression: aws.String("#email = :email"),
		ExpressionAttributeNames: map[string]string{
			"#email": "email",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
	}
}

// Exists reports whether any record carries email. Unknown emails yield false.
func (s *AdminUserStore) Exists(ctx context.Context, email string) (bool, error) {
	in := s.emailQuery(email)
	in.Select = types.SelectCount
	in.Limit = aws.Int32(1)

	out, err := s.api.Query(ctx, in)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return out.Count > 0, nil
}

// FetchByEmail returns the single record for email. Two or more matches are
// reported as adminAuth.ErrDuplicateAdminUser.
func (s *AdminUserStore) FetchByEmail(ctx context.Context, email string) (*adminAuth.AdminUser, error) {
	in := s.emailQuery(email)
	in.Limit = aws.Int32(2)

	out, err := s.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	switch len(out.Items) {
	case 0:
		return nil, adminAuth.ErrNonExistentAdminUser
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", adminAuth.ErrDuplicateAdminUser, email)
	}

	var item adminUserItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptItem, err)
	}
	return item.record(), nil
}

// FetchByID performs a consistent primary key read.
func (s *AdminUserStore) FetchByID(ctx context.Context, userID string) (*adminAuth.AdminUser, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            userKey(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(out.Item) == 0 {
		return nil, adminAuth.ErrNonExistentAdminUser
	}

	var item adminUserItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptItem, err)
	}
	return item.record(), nil
}

// UpdatePassword writes the new hash inside a transaction conditioned on the
// record still existing. A failed condition maps to
// adminAuth.ErrNonExistentAdminUser and creates nothing.
func (s *AdminUserStore) UpdatePassword(ctx context.Context, update adminAuth.PasswordUpdate) error {
	names := map[string]string{
		"#userId": "userId",
		"#hash":   "passwordHash",
		"#salt":   "passwordSalt",
	}
	values := map[string]types.AttributeValue{
		":hash": &types.AttributeValueMemberS{Value: update.PasswordHash},
	}

	expr := "SET #hash = :hash REMOVE #salt"
	if update.PasswordSalt != "" {
		expr = "SET #hash = :hash, #salt = :salt"
		values[":salt"] = &types.AttributeValueMemberS{Value: update.PasswordSalt}
	}

	_, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{{
			Update: &types.Update{
				TableName:                 aws.String(s.table),
				Key:                       userKey(update.UserID),
				UpdateExpression:          aws.String(expr),
				ConditionExpression:       aws.String("attribute_exists(#userId)"),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			},
		}},
	})
	if err != nil {
		if conditionFailed(err) {
			return adminAuth.ErrNonExistentAdminUser
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func conditionFailed(err error) bool {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) == conditionalCheckFailed {
				return true
			}
		}
		return false
	}

	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}
