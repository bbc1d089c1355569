package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type proposalItem struct {
	ID              string                    `json:"id"`
	LeadID          string                    `json:"lead_id,omitempty"`
	Customer        entities.Customer         `json:"customer"`
	Inputs          entities.ProposalInputs   `json:"inputs"`
	Computed        entities.ComputedTotals   `json:"computed"`
	SnapshotRef     entities.SnapshotRef      `json:"snapshot_ref"`
	Status          string                    `json:"status"`
	DocumentVersion int                       `json:"document_version"`
	TokenHash       string                    `json:"token_hash,omitempty"`
	TokenExpiresAt  string                    `json:"token_expires_at,omitempty"`
	TokenUsed       bool                      `json:"token_used"`
	Assets          entities.ProposalAssets   `json:"assets"`
	Audit           entities.ProposalAudit    `json:"audit"`
	Checkout        entities.ProposalCheckout `json:"checkout"`
	CreatedBy       string                    `json:"created_by,omitempty"`
	CreatedAt       string                    `json:"created_at"`
	UpdatedAt       string                    `json:"updated_at"`
	Revision        int                       `json:"revision"`
}

type eventItem struct {
	ProposalID string            `json:"proposal_id"`
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Timestamp  string            `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ProposalDynamoRepository persists proposals and their event log.
//
// Table requirements:
//   - proposals: PK id (string)
//   - proposal events: PK proposal_id (string), SK id (string, time-ordered)
//
// Token fields are kept top-level (token_hash, token_used) so they can be used
// in condition expressions.
type ProposalDynamoRepository struct {
	ddb         DynamoDBAPI
	tableName   string
	eventsTable string
}

var _ interfaces.IProposalRepository = (*ProposalDynamoRepository)(nil)

func NewProposalDynamoRepository(ddb DynamoDBAPI, tableName, eventsTable string) *ProposalDynamoRepository {
	return &ProposalDynamoRepository{ddb: ddb, tableName: tableName, eventsTable: eventsTable}
}

func (r *ProposalDynamoRepository) Create(ctx context.Context, p entities.Proposal, ev entities.ProposalEvent) error {
	item, err := marshalItem(toProposalItem(p))
	if err != nil {
		return err
	}
	evPut, err := r.eventPut(ev)
	if err != nil {
		return err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     item,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
			{Put: evPut},
		},
	})
	if isConditionFailure(err) {
		return interfaces.ErrConditionFailed
	}
	return err
}

func (r *ProposalDynamoRepository) GetByID(ctx context.Context, id string) (entities.Proposal, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Proposal{}, err
	}
	if len(out.Item) == 0 {
		return entities.Proposal{}, nil
	}

	var it proposalItem
	if err := unmarshalItem(out.Item, &it); err != nil {
		return entities.Proposal{}, err
	}
	return fromProposalItem(it), nil
}

// Transition replaces the stored record with next when cond holds and the
// stored revision is still next.Revision, and writes ev in the same
// transaction.
func (r *ProposalDynamoRepository) Transition(ctx context.Context, next entities.Proposal, cond interfaces.TransitionCondition, ev entities.ProposalEvent) (entities.Proposal, error) {
	stored := next
	stored.Revision = next.Revision + 1
	item, err := marshalItem(toProposalItem(stored))
	if err != nil {
		return entities.Proposal{}, err
	}
	evPut, err := r.eventPut(ev)
	if err != nil {
		return entities.Proposal{}, err
	}
	expr, names, values := buildCondition(cond, next.Revision)

	put := &types.Put{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{{Put: put}, {Put: evPut}},
	})
	if isConditionFailure(err) {
		return entities.Proposal{}, interfaces.ErrConditionFailed
	}
	if err != nil {
		return entities.Proposal{}, err
	}
	return stored, nil
}

func (r *ProposalDynamoRepository) AppendEvent(ctx context.Context, ev entities.ProposalEvent) error {
	put, err := r.eventPut(ev)
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                put.TableName,
		Item:                     put.Item,
		ConditionExpression:      put.ConditionExpression,
		ExpressionAttributeNames: put.ExpressionAttributeNames,
	})
	if isConditionFailure(err) {
		return interfaces.ErrConditionFailed
	}
	return err
}

func (r *ProposalDynamoRepository) ListEvents(ctx context.Context, proposalID string) ([]entities.ProposalEvent, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.eventsTable),
		KeyConditionExpression: aws.String("proposal_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: proposalID},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
	})

	events := []entities.ProposalEvent{}
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			var it eventItem
			if err := unmarshalItem(raw, &it); err != nil {
				return nil, err
			}
			events = append(events, fromEventItem(it))
		}
	}
	return events, nil
}

func (r *ProposalDynamoRepository) eventPut(ev entities.ProposalEvent) (*types.Put, error) {
	item, err := marshalItem(toEventItem(ev))
	if err != nil {
		return nil, err
	}
	return &types.Put{
		TableName:                aws.String(r.eventsTable),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#sk)"),
		ExpressionAttributeNames: map[string]string{"#sk": "id"},
	}, nil
}

// buildCondition renders a TransitionCondition as a DynamoDB condition
// expression. The record must always exist and still be at revision.
func buildCondition(cond interfaces.TransitionCondition, revision int) (string, map[string]string, map[string]types.AttributeValue) {
	parts := []string{"attribute_exists(#id)", "#revision = :rev"}
	names := map[string]string{"#id": "id", "#revision": "revision"}
	values := map[string]types.AttributeValue{
		":rev": &types.AttributeValueMemberN{Value: strconv.Itoa(revision)},
	}

	if len(cond.FromStatuses) > 0 {
		placeholders := make([]string, 0, len(cond.FromStatuses))
		for i, s := range cond.FromStatuses {
			key := fmt.Sprintf(":s%d", i)
			placeholders = append(placeholders, key)
			values[key] = &types.AttributeValueMemberS{Value: string(s)}
		}
		parts = append(parts, fmt.Sprintf("#status IN (%s)", strings.Join(placeholders, ", ")))
		names = mergeNames(names, map[string]string{"#status": "status"})
	}
	if cond.TokenUnused {
		parts = append(parts, "#token_used = :false")
		names = mergeNames(names, map[string]string{"#token_used": "token_used"})
		values[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}
	if cond.TokenHash != "" {
		parts = append(parts, "#token_hash = :hash")
		names = mergeNames(names, map[string]string{"#token_hash": "token_hash"})
		values[":hash"] = &types.AttributeValueMemberS{Value: cond.TokenHash}
	}
	return strings.Join(parts, " AND "), names, values
}

func toProposalItem(p entities.Proposal) proposalItem {
	return proposalItem{
		ID:              p.ID,
		LeadID:          p.LeadID,
		Customer:        p.Customer,
		Inputs:          p.Inputs,
		Computed:        p.Computed,
		SnapshotRef:     p.SnapshotRef,
		Status:          string(p.Status),
		DocumentVersion: p.DocumentVersion,
		TokenHash:       p.Tokens.ApproveTokenHash,
		TokenExpiresAt:  formatTime(p.Tokens.ExpiresAt),
		TokenUsed:       p.Tokens.IsUsed,
		Assets:          p.Assets,
		Audit:           p.Audit,
		Checkout:        p.Checkout,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       formatTime(p.CreatedAt),
		UpdatedAt:       formatTime(p.UpdatedAt),
		Revision:        p.Revision,
	}
}

func fromProposalItem(it proposalItem) entities.Proposal {
	return entities.Proposal{
		ID:              it.ID,
		LeadID:          it.LeadID,
		Customer:        it.Customer,
		Inputs:          it.Inputs,
		Computed:        it.Computed,
		SnapshotRef:     it.SnapshotRef,
		Status:          entities.ProposalStatus(it.Status),
		DocumentVersion: it.DocumentVersion,
		Tokens: entities.ProposalTokens{
			ApproveTokenHash: it.TokenHash,
			ExpiresAt:        parseTime(it.TokenExpiresAt),
			IsUsed:           it.TokenUsed,
		},
		Assets:    it.Assets,
		Audit:     it.Audit,
		Checkout:  it.Checkout,
		CreatedBy: it.CreatedBy,
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
		Revision:  it.Revision,
	}
}

func toEventItem(ev entities.ProposalEvent) eventItem {
	return eventItem{
		ProposalID: ev.ProposalID,
		ID:         ev.ID,
		Type:       string(ev.Type),
		Timestamp:  formatTime(ev.Timestamp),
		Metadata:   ev.Metadata,
	}
}

func fromEventItem(it eventItem) entities.ProposalEvent {
	return entities.ProposalEvent{
		ID:         it.ID,
		ProposalID: it.ProposalID,
		Type:       entities.ProposalEventType(it.Type),
		Timestamp:  parseTime(it.Timestamp),
		Metadata:   it.Metadata,
	}
}
