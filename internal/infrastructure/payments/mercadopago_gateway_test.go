package payments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"clearing_proposals/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePreferences struct {
	got  preference.Request
	resp string
	err  error
}

func (f *fakePreferences) Create(_ context.Context, req preference.Request) (*preference.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	var out preference.Response
	if err := json.Unmarshal([]byte(f.resp), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type fakePayments struct {
	gotID int
	resp  string
	err   error
}

func (f *fakePayments) Get(_ context.Context, id int) (*payment.Response, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	var out payment.Response
	if err := json.Unmarshal([]byte(f.resp), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func checkoutRequest() interfaces.CheckoutRequest {
	return interfaces.CheckoutRequest{
		ProposalID:    "p-1",
		AmountCents:   15050,
		Currency:      "USD",
		Title:         "Deposit for proposal p-1",
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		SuccessURL:    "https://app.example.com/proposals/p-1/paid",
		CancelURL:     "https://app.example.com/proposals/p-1",
	}
}

func TestNewMercadoPagoGateway_MissingToken(t *testing.T) {
	g, err := NewMercadoPagoGateway("", nil)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrMissingMercadoPagoAccessToken)
}

func TestCreateCheckoutSession_BuildsPreference(t *testing.T) {
	prefs := &fakePreferences{resp: `{"id":"pref-9","init_point":"https://mp.example/init","sandbox_init_point":"https://sandbox.mp.example/init"}`}
	g := &MercadoPagoGateway{preferences: prefs, logger: zap.NewNop()}

	session, err := g.CreateCheckoutSession(context.Background(), checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "pref-9", session.SessionID)
	assert.Equal(t, "https://mp.example/init", session.URL)

	var sent map[string]any
	require.NoError(t, remarshal(prefs.got, &sent))
	assert.Equal(t, "p-1", sent["external_reference"])
	items, ok := sent["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, 150.5, item["unit_price"])
	assert.Equal(t, "USD", item["currency_id"])
}

func TestCreateCheckoutSession_SandboxUsesSandboxURL(t *testing.T) {
	prefs := &fakePreferences{resp: `{"id":"pref-9","init_point":"https://mp.example/init","sandbox_init_point":"https://sandbox.mp.example/init"}`}
	g := &MercadoPagoGateway{preferences: prefs, sandbox: true, logger: zap.NewNop()}

	session, err := g.CreateCheckoutSession(context.Background(), checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.mp.example/init", session.URL)
}

func TestCreateCheckoutSession_Errors(t *testing.T) {
	g := &MercadoPagoGateway{preferences: &fakePreferences{err: errors.New(`{"status":401}`)}, logger: zap.NewNop()}
	_, err := g.CreateCheckoutSession(context.Background(), checkoutRequest())
	assert.Error(t, err)

	req := checkoutRequest()
	req.AmountCents = 0
	_, err = g.CreateCheckoutSession(context.Background(), req)
	assert.Error(t, err)

	g = &MercadoPagoGateway{preferences: &fakePreferences{resp: `{"id":""}`}, logger: zap.NewNop()}
	_, err = g.CreateCheckoutSession(context.Background(), checkoutRequest())
	assert.Error(t, err)

	var nilGateway *MercadoPagoGateway
	_, err = nilGateway.CreateCheckoutSession(context.Background(), checkoutRequest())
	assert.ErrorIs(t, err, ErrMercadoPagoGatewayNotConfigured)
}

func TestGetPayment_MapsResponse(t *testing.T) {
	pays := &fakePayments{resp: `{"id":12345,"status":"approved","external_reference":"p-1","transaction_amount":150.5}`}
	g := &MercadoPagoGateway{payments: pays, logger: zap.NewNop()}

	got, err := g.GetPayment(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, 12345, pays.gotID)
	assert.Equal(t, "12345", got.ID)
	assert.Equal(t, "approved", got.Status)
	assert.Equal(t, "p-1", got.ExternalReference)
	assert.Equal(t, 150.5, got.Amount)
	assert.NotEmpty(t, got.Raw)
}

func TestGetPayment_RejectsNonNumericID(t *testing.T) {
	g := &MercadoPagoGateway{payments: &fakePayments{}, logger: zap.NewNop()}
	_, err := g.GetPayment(context.Background(), "abc")
	assert.Error(t, err)
}

func TestMockGateway_RoundTrip(t *testing.T) {
	g := NewMockGateway("https://app.example.com/", nil)

	session, err := g.CreateCheckoutSession(context.Background(), checkoutRequest())
	require.NoError(t, err)
	assert.Contains(t, session.URL, "https://app.example.com/mock-checkout/"+session.SessionID)

	got, err := g.GetPayment(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, got.ID)
	assert.Equal(t, "approved", got.Status)
	assert.Equal(t, "p-1", got.ExternalReference)
	assert.Equal(t, 150.5, got.Amount)

	_, err = g.GetPayment(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec"
	manifest := WebhookManifest("ABC123", "req-1", "1704908010")
	assert.Equal(t, "id:abc123;request-id:req-1;ts:1704908010;", manifest)
	sig := SignWebhookManifest(secret, manifest)

	tests := []struct {
		name   string
		secret string
		header string
		want   error
	}{
		{name: "valid", secret: secret, header: "ts=1704908010,v1=" + sig},
		{name: "valid with spaces", secret: secret, header: " ts=1704908010 , v1=" + sig},
		{name: "disabled", secret: "", header: ""},
		{name: "missing header", secret: secret, header: "", want: ErrMissingWebhookSignature},
		{name: "missing ts", secret: secret, header: "v1=" + sig, want: ErrInvalidWebhookSignature},
		{name: "wrong ts", secret: secret, header: "ts=1,v1=" + sig, want: ErrInvalidWebhookSignature},
		{name: "wrong secret", secret: "other", header: "ts=1704908010,v1=" + sig, want: ErrInvalidWebhookSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyWebhookSignature(tt.secret, tt.header, "req-1", "ABC123")
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
