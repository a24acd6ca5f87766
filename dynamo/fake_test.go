package dynamo

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo understands exactly the requests issued by this package.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	err    error

	transactCalls int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = map[string]map[string]types.AttributeValue{}
		f.tables[name] = t
	}
	return t
}

func (f *fakeDynamo) seed(table string, item map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table(table)[stringAttr(item["userId"])] = item
}

func (f *fakeDynamo) get(table, userID string) (map[string]types.AttributeValue, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.table(table)[userID]
	return item, ok
}

func stringAttr(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, _ := f.get(aws.ToString(in.TableName), stringAttr(in.Key["userId"]))
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.seed(aws.ToString(in.TableName), in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.table(aws.ToString(in.TableName)), stringAttr(in.Key["userId"]))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if aws.ToString(in.IndexName) == "" {
		return nil, errors.New("fake: query without index")
	}
	want := stringAttr(in.ExpressionAttributeValues[":email"])

	f.mu.Lock()
	defer f.mu.Unlock()

	var items []map[string]types.AttributeValue
	for _, item := range f.table(aws.ToString(in.TableName)) {
		if stringAttr(item["email"]) != want {
			continue
		}
		items = append(items, item)
		if in.Limit != nil && int32(len(items)) >= *in.Limit {
			break
		}
	}

	out := &dynamodb.QueryOutput{Count: int32(len(items))}
	if in.Select != types.SelectCount {
		out.Items = items
	}
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactCalls++
	if f.err != nil {
		return nil, f.err
	}

	for _, ti := range in.TransactItems {
		u := ti.Update
		table := f.table(aws.ToString(u.TableName))
		if _, ok := table[stringAttr(u.Key["userId"])]; !ok {
			return nil, &types.TransactionCanceledException{
				Message: aws.String("Transaction cancelled"),
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("ConditionalCheckFailed")},
				},
			}
		}
	}

	for _, ti := range in.TransactItems {
		u := ti.Update
		item := f.table(aws.ToString(u.TableName))[stringAttr(u.Key["userId"])]
		item["passwordHash"] = u.ExpressionAttributeValues[":hash"]
		if strings.Contains(aws.ToString(u.UpdateExpression), "REMOVE #salt") {
			delete(item, "passwordSalt")
		} else {
			item["passwordSalt"] = u.ExpressionAttributeValues[":salt"]
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
