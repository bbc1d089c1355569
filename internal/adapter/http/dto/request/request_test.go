package request

import "testing"

func TestGenerateProposalRequest_ToCommand(t *testing.T) {
	req := GenerateProposalRequest{
		TemplateID: " standard ",
		LeadID:     " lead-1 ",
		Customer:   CustomerRequest{Name: "Ada", Email: "ada@example.com"},
		Inputs: ProposalInputsRequest{
			Acreage:            2.5,
			PackageID:          "medium",
			SelectedServiceIDs: []string{"stump"},
			Obstacles:          []string{"creek"},
			Address:            "12 Oak Rd",
		},
	}
	cmd := req.ToCommand("admin")
	if cmd.TemplateID != "standard" || cmd.LeadID != "lead-1" || cmd.CreatedBy != "admin" {
		t.Fatalf("unexpected command header: %+v", cmd)
	}
	if cmd.Inputs.Acreage != 2.5 || cmd.Inputs.PackageID != "medium" || len(cmd.Inputs.Obstacles) != 1 {
		t.Fatalf("unexpected inputs: %+v", cmd.Inputs)
	}
}

func TestAcceptProposalRequest_ToCommand(t *testing.T) {
	cmd := AcceptProposalRequest{Token: "tok", FullName: "Ada Lovelace", Consent: true}.ToCommand("p1", "10.0.0.1", "curl")
	if cmd.ProposalID != "p1" || cmd.Token != "tok" || !cmd.Consent || cmd.IP != "10.0.0.1" || cmd.UserAgent != "curl" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestTemplateRequest_ToEntity(t *testing.T) {
	req := TemplateRequest{
		Name:       "Standard",
		Packages:   []PackageRequest{{ID: "medium", Name: "Medium", MaxDBHInches: 6, PricePerAcre: 2500, Default: true}},
		Services:   []ServiceRequest{{ID: "haul", Name: "Haul off", Price: 50, PerAcre: true}},
		LegalTerms: []string{"Deposit is non-refundable."},
	}
	tmpl := req.ToEntity("standard")
	if tmpl.ID != "standard" || len(tmpl.Packages) != 1 || !tmpl.Packages[0].Default {
		t.Fatalf("unexpected template: %+v", tmpl)
	}
	if len(tmpl.Services) != 1 || !tmpl.Services[0].PerAcre {
		t.Fatalf("unexpected services: %+v", tmpl.Services)
	}
	req.LegalTerms[0] = "changed"
	if tmpl.LegalTerms[0] != "Deposit is non-refundable." {
		t.Fatalf("legal terms must be copied")
	}
}

func TestMercadoPagoNotification_ResolvePaymentID(t *testing.T) {
	tests := []struct {
		name   string
		n      MercadoPagoNotification
		topic  string
		id     string
		dataID string
		want   string
	}{
		{"webhook body", notification("payment", "", "123"), "", "", "", "123"},
		{"action only", notification("", "payment.updated", "124"), "", "", "", "124"},
		{"ipn query", MercadoPagoNotification{}, "payment", "125", "", "125"},
		{"query data id wins over id", MercadoPagoNotification{}, "payment", "1", "126", "126"},
		{"merchant order ignored", notification("merchant_order", "", "9"), "", "", "", ""},
		{"no id", notification("payment", "", " "), "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.ResolvePaymentID(tt.topic, tt.id, tt.dataID); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func notification(kind, action, dataID string) MercadoPagoNotification {
	n := MercadoPagoNotification{Type: kind, Action: action}
	n.Data.ID = dataID
	return n
}
