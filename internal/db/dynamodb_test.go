package db

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiwatch/internal/models"
)

// fakeDynamo is an in-memory table keyed by the numeric id attribute.
type fakeDynamo struct {
	mu       sync.Mutex
	items    map[int]map[string]types.AttributeValue
	pageSize int
	scans    int
}

func newFakeDynamo(pageSize int) *fakeDynamo {
	return &fakeDynamo{items: map[int]map[string]types.AttributeValue{}, pageSize: pageSize}
}

func keyID(key map[string]types.AttributeValue) int {
	id, _ := strconv.Atoi(key["id"].(*types.AttributeValueMemberN).Value)
	return id
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[keyID(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := keyID(in.Item)
	if _, exists := f.items[id]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{}
	}
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := keyID(in.Key)
	item, ok := f.items[id]
	if !ok {
		item = map[string]types.AttributeValue{"id": in.Key["id"]}
		f.items[id] = item
	}
	next := 1
	if cur, ok := item["next_id"].(*types.AttributeValueMemberN); ok {
		n, _ := strconv.Atoi(cur.Value)
		next = n + 1
	}
	attr := &types.AttributeValueMemberN{Value: strconv.Itoa(next)}
	item["next_id"] = attr
	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{"next_id": attr}}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++

	ids := make([]int, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	start := 0
	if in.ExclusiveStartKey != nil {
		last := keyID(in.ExclusiveStartKey)
		for i, id := range ids {
			if id == last {
				start = i + 1
			}
		}
	}
	end := min(start+f.pageSize, len(ids))

	out := &dynamodb.ScanOutput{}
	for _, id := range ids[start:end] {
		out.Items = append(out.Items, f.items[id])
	}
	if end < len(ids) {
		out.LastEvaluatedKey = idKey(ids[end-1])
	}
	return out, nil
}

func newTestDynamoStore(pageSize int) (*DynamoStore, *fakeDynamo) {
	fake := newFakeDynamo(pageSize)
	s := NewDynamoStore(fake, "Tickets")
	s.now = func() time.Time { return time.Date(2025, 7, 19, 8, 30, 0, 0, time.UTC) }
	return s, fake
}

func TestDynamoStore_CreateAndGet(t *testing.T) {
	s, _ := newTestDynamoStore(10)
	ctx := context.Background()

	first, err := s.Create(ctx, models.NewTicket{Message: "App crashes", Author: "Kim"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, models.DefaultPriority, first.Priority)

	second, err := s.Create(ctx, models.NewTicket{Message: "Works now"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = s.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = s.Get(ctx, counterID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestDynamoStore_ListPaginatesAndSkipsCounter(t *testing.T) {
	s, fake := newTestDynamoStore(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Create(ctx, models.NewTicket{Message: "ticket " + strconv.Itoa(i)})
		require.NoError(t, err)
	}

	tickets, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 5)
	for i, ticket := range tickets {
		assert.Equal(t, i+1, ticket.ID)
	}
	assert.Equal(t, 3, fake.scans)
}
