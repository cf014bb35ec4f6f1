package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/sentiwatch/internal/models"
)

// counterID is the reserved item holding the last assigned ticket id.
const counterID = 0

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps tickets in a DynamoDB table keyed by the numeric "id"
// attribute. Ids come from an atomic counter item stored in the same table.
type DynamoStore struct {
	client DynamoAPI
	table  string
	now    func() time.Time
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table, now: time.Now}
}

func (s *DynamoStore) List(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for tickets failed: %w", err)
		}

		var page []models.Ticket
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal ticket page", slog.String("error", err.Error()))
			return nil, err
		}
		for _, t := range page {
			if t.ID != counterID {
				tickets = append(tickets, t)
			}
		}
	}

	sortByID(tickets)
	slog.Debug("[DynamoDB] Retrieved tickets", slog.Int("count", len(tickets)))
	return tickets, nil
}

func (s *DynamoStore) Get(ctx context.Context, id int) (models.Ticket, error) {
	if id == counterID {
		return models.Ticket{}, fmt.Errorf("%w: id %d", ErrTicketNotFound, id)
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       idKey(id),
	})
	if err != nil {
		return models.Ticket{}, fmt.Errorf("[DynamoDB] GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return models.Ticket{}, fmt.Errorf("%w: id %d", ErrTicketNotFound, id)
	}

	var ticket models.Ticket
	if err := attributevalue.UnmarshalMap(out.Item, &ticket); err != nil {
		return models.Ticket{}, fmt.Errorf("[DynamoDB] failed to unmarshal ticket: %w", err)
	}
	return ticket, nil
}

func (s *DynamoStore) Create(ctx context.Context, n models.NewTicket) (models.Ticket, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return models.Ticket{}, err
	}

	ticket := n.Build(id, s.now())
	item, err := attributevalue.MarshalMap(ticket)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("[DynamoDB] failed to marshal ticket: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return models.Ticket{}, fmt.Errorf("[DynamoDB] ticket id %d already taken: %w", id, err)
		}
		return models.Ticket{}, fmt.Errorf("[DynamoDB] PutItem failed: %w", err)
	}

	slog.Info("[DynamoDB] Ticket saved", slog.Int("ticket_id", id))
	return ticket, nil
}

func (s *DynamoStore) nextID(ctx context.Context) (int, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              idKey(counterID),
		UpdateExpression: aws.String("ADD next_id :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("[DynamoDB] failed to allocate ticket id: %w", err)
	}

	attr, ok := out.Attributes["next_id"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("[DynamoDB] counter update returned no next_id")
	}
	id, err := strconv.Atoi(attr.Value)
	if err != nil {
		return 0, fmt.Errorf("[DynamoDB] invalid counter value %q: %w", attr.Value, err)
	}
	return id, nil
}

func idKey(id int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.Itoa(id)},
	}
}
