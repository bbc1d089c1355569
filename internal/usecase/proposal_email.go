package usecase

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"clearing_proposals/internal/domain/entities"
)

var proposalEmailHTML = template.Must(template.New("proposal").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<p>Hi {{.Name}},</p>
<p>Thanks for considering {{.Company}}. Your land clearing proposal for <strong>{{.Address}}</strong> is ready.</p>
<table cellpadding="4">
<tr><td>Acreage</td><td>{{.Acreage}}</td></tr>
<tr><td>Total</td><td>{{.Total}}</td></tr>
{{if .Deposit}}<tr><td>Deposit due at acceptance</td><td>{{.Deposit}}</td></tr>{{end}}
</table>
<p><a href="{{.ApproveURL}}" style="background:#2e7d32;color:#fff;padding:10px 16px;text-decoration:none">Review and approve</a></p>
<p>This link is personal and expires on {{.ExpiresOn}}.</p>
</body></html>`))

type proposalEmailData struct {
	Name       string
	Company    string
	Address    string
	Acreage    string
	Total      string
	Deposit    string
	ApproveURL string
	ExpiresOn  string
}

func proposalEmail(company string, p entities.Proposal, approveURL, currency string, expiresAt time.Time) (subject, html, text string) {
	if strings.TrimSpace(company) == "" {
		company = "our team"
	}
	data := proposalEmailData{
		Name:       p.Customer.Name,
		Company:    company,
		Address:    p.Inputs.Address,
		Acreage:    fmt.Sprintf("%.2f acres", p.Inputs.Acreage),
		Total:      money(p.Computed.Total, currency),
		ApproveURL: approveURL,
		ExpiresOn:  expiresAt.UTC().Format("January 2, 2006"),
	}
	if p.DepositRequired() {
		data.Deposit = money(p.Computed.DepositAmount, currency)
	}
	subject = fmt.Sprintf("Your land clearing proposal (%s)", shortID(p.ID))

	var buf bytes.Buffer
	if err := proposalEmailHTML.Execute(&buf, data); err == nil {
		html = buf.String()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", data.Name)
	fmt.Fprintf(&sb, "Your land clearing proposal for %s is ready.\n", data.Address)
	fmt.Fprintf(&sb, "Acreage: %s\nTotal: %s\n", data.Acreage, data.Total)
	if data.Deposit != "" {
		fmt.Fprintf(&sb, "Deposit due at acceptance: %s\n", data.Deposit)
	}
	fmt.Fprintf(&sb, "\nReview and approve: %s\n", approveURL)
	fmt.Fprintf(&sb, "This link is personal and expires on %s.\n", data.ExpiresOn)
	text = sb.String()
	return subject, html, text
}

func money(v float64, currency string) string {
	if currency == "" || strings.EqualFold(currency, "USD") {
		return fmt.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, strings.ToUpper(currency))
}
