package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const paymentsProposalIDIndex = "proposal_id-index"

type paymentItem struct {
	ID                 string                 `dynamodbav:"id"`
	ProposalID         string                 `dynamodbav:"proposal_id"`
	ProviderPaymentID  string                 `dynamodbav:"provider_payment_id,omitempty"`
	Amount             string                 `dynamodbav:"amount"`
	Date               string                 `dynamodbav:"date"`
	Status             string                 `dynamodbav:"status"`
	ProviderPayload    map[string]interface{} `dynamodbav:"provider_payload,omitempty"`
	ProviderPayloadRaw string                 `dynamodbav:"provider_payload_raw,omitempty"`
}

// PaymentDynamoRepository persists deposit payments in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: proposal_id-index (PK: proposal_id)
type PaymentDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb DynamoDBAPI, tableName string) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.ProposalPayment) (entities.ProposalPayment, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.ProposalPayment{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if isConditionFailure(err) {
		return entities.ProposalPayment{}, interfaces.ErrConditionFailed
	}
	if err != nil {
		return entities.ProposalPayment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.ProposalPayment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.ProposalPayment{}, err
	}
	if len(out.Item) == 0 {
		return entities.ProposalPayment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.ProposalPayment{}, err
	}
	return fromPaymentItem(it), nil
}

func (r *PaymentDynamoRepository) ListByProposalID(ctx context.Context, proposalID string) ([]entities.ProposalPayment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentsProposalIDIndex),
		KeyConditionExpression: aws.String("proposal_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: proposalID},
		},
	})
	if err != nil {
		return nil, err
	}

	items := make([]entities.ProposalPayment, 0, len(out.Items))
	for _, raw := range out.Items {
		var it paymentItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		items = append(items, fromPaymentItem(it))
	}
	return items, nil
}

func (r *PaymentDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, providerPaymentID string, raw json.RawMessage) (entities.ProposalPayment, error) {
	expr := "SET #status = :status"
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: string(status)},
	}
	names := map[string]string{"#status": "status"}

	if providerPaymentID != "" {
		expr += ", #ppid = :ppid"
		values[":ppid"] = &types.AttributeValueMemberS{Value: providerPaymentID}
		names["#ppid"] = "provider_payment_id"
	}
	if len(raw) > 0 {
		expr += ", #raw = :raw"
		values[":raw"] = &types.AttributeValueMemberS{Value: string(raw)}
		names["#raw"] = "provider_payload_raw"

		var parsed map[string]interface{}
		if err := json.Unmarshal(raw, &parsed); err == nil {
			if av, err := attributevalue.Marshal(parsed); err == nil {
				expr += ", #payload = :payload"
				values[":payload"] = av
				names["#payload"] = "provider_payload"
			}
		}
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailure(err) {
		return entities.ProposalPayment{}, interfaces.ErrConditionFailed
	}
	if err != nil {
		return entities.ProposalPayment{}, err
	}
	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.ProposalPayment{}, err
	}
	return fromPaymentItem(it), nil
}

func toPaymentItem(p entities.ProposalPayment) paymentItem {
	return paymentItem{
		ID:                 p.ID,
		ProposalID:         p.ProposalID,
		ProviderPaymentID:  p.ProviderPaymentID,
		Amount:             floatToString(p.Amount),
		Date:               formatTime(p.Date),
		Status:             string(p.Status),
		ProviderPayload:    p.ProviderPayload,
		ProviderPayloadRaw: string(p.ProviderPayloadRaw),
	}
}

func fromPaymentItem(it paymentItem) entities.ProposalPayment {
	amount, _ := strconv.ParseFloat(it.Amount, 64)
	p := entities.ProposalPayment{
		ID:                it.ID,
		ProposalID:        it.ProposalID,
		ProviderPaymentID: it.ProviderPaymentID,
		Amount:            amount,
		Date:              parseTime(it.Date),
		Status:            entities.PaymentStatus(it.Status),
		ProviderPayload:   it.ProviderPayload,
	}
	if it.ProviderPayloadRaw != "" {
		p.ProviderPayloadRaw = json.RawMessage(it.ProviderPayloadRaw)
	}
	return p
}
