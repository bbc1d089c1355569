package repository

import (
	"context"
	"fmt"
	"strconv"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type templateItem struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Packages   []entities.Package `json:"packages"`
	Services   []entities.Service `json:"services"`
	LegalTerms []string           `json:"legal_terms"`
	UpdatedAt  string             `json:"updated_at"`
}

type snapshotItem struct {
	TemplateID string             `json:"template_id"`
	Version    int                `json:"version"`
	Name       string             `json:"name"`
	Packages   []entities.Package `json:"packages"`
	Services   []entities.Service `json:"services"`
	LegalTerms []string           `json:"legal_terms"`
	CreatedAt  string             `json:"created_at"`
}

// CatalogDynamoRepository persists live pricing templates.
//
// Table requirements:
//   - PK: id (string)
type CatalogDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.ICatalogRepository = (*CatalogDynamoRepository)(nil)

func NewCatalogDynamoRepository(ddb DynamoDBAPI, tableName string) *CatalogDynamoRepository {
	return &CatalogDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *CatalogDynamoRepository) GetTemplate(ctx context.Context, id string) (entities.PricingTemplate, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PricingTemplate{}, err
	}
	if len(out.Item) == 0 {
		return entities.PricingTemplate{}, nil
	}
	var it templateItem
	if err := unmarshalItem(out.Item, &it); err != nil {
		return entities.PricingTemplate{}, err
	}
	return entities.PricingTemplate{
		ID:         it.ID,
		Name:       it.Name,
		Packages:   it.Packages,
		Services:   it.Services,
		LegalTerms: it.LegalTerms,
		UpdatedAt:  parseTime(it.UpdatedAt),
	}, nil
}

func (r *CatalogDynamoRepository) PutTemplate(ctx context.Context, t entities.PricingTemplate) error {
	av, err := marshalItem(templateItem{
		ID:         t.ID,
		Name:       t.Name,
		Packages:   t.Packages,
		Services:   t.Services,
		LegalTerms: t.LegalTerms,
		UpdatedAt:  formatTime(t.UpdatedAt),
	})
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

// counterVersion is the sort key of the row holding a template's version
// counter. Real snapshots start at 1.
const counterVersion = 0

// SnapshotDynamoRepository persists write-once template snapshots.
//
// Table requirements:
//   - PK: template_id (string)
//   - SK: version (number)
type SnapshotDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.ISnapshotRepository = (*SnapshotDynamoRepository)(nil)

func NewSnapshotDynamoRepository(ddb DynamoDBAPI, tableName string) *SnapshotDynamoRepository {
	return &SnapshotDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *SnapshotDynamoRepository) Create(ctx context.Context, s entities.ProposalSnapshot) error {
	av, err := marshalItem(snapshotItem{
		TemplateID: s.TemplateID,
		Version:    s.Version,
		Name:       s.Name,
		Packages:   s.Packages,
		Services:   s.Services,
		LegalTerms: s.LegalTerms,
		CreatedAt:  formatTime(s.CreatedAt),
	})
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#tid) AND attribute_not_exists(#v)"),
		ExpressionAttributeNames: map[string]string{
			"#tid": "template_id",
			"#v":   "version",
		},
	})
	if isConditionFailure(err) {
		return interfaces.ErrConditionFailed
	}
	return err
}

func (r *SnapshotDynamoRepository) Get(ctx context.Context, templateID string, version int) (entities.ProposalSnapshot, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"template_id": &types.AttributeValueMemberS{Value: templateID},
			"version":     &types.AttributeValueMemberN{Value: strconv.Itoa(version)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.ProposalSnapshot{}, err
	}
	if len(out.Item) == 0 {
		return entities.ProposalSnapshot{}, nil
	}
	var it snapshotItem
	if err := unmarshalItem(out.Item, &it); err != nil {
		return entities.ProposalSnapshot{}, err
	}
	return fromSnapshotItem(it), nil
}

// NextVersion bumps the per-template counter row (version 0) with an atomic
// ADD, so concurrent generates never contend for the same version.
func (r *SnapshotDynamoRepository) NextVersion(ctx context.Context, templateID string) (int, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"template_id": &types.AttributeValueMemberS{Value: templateID},
			"version":     &types.AttributeValueMemberN{Value: strconv.Itoa(counterVersion)},
		},
		UpdateExpression:         aws.String("ADD #next :one"),
		ExpressionAttributeNames: map[string]string{"#next": "next_version"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}
	if out == nil {
		return 0, fmt.Errorf("snapshot counter for %s: empty update response", templateID)
	}
	n, ok := out.Attributes["next_version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("snapshot counter for %s: next_version missing", templateID)
	}
	v, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("snapshot counter for %s: %w", templateID, err)
	}
	return v, nil
}

func fromSnapshotItem(it snapshotItem) entities.ProposalSnapshot {
	return entities.ProposalSnapshot{
		TemplateID: it.TemplateID,
		Version:    it.Version,
		Name:       it.Name,
		Packages:   it.Packages,
		Services:   it.Services,
		LegalTerms: it.LegalTerms,
		CreatedAt:  parseTime(it.CreatedAt),
	}
}
