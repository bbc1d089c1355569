package request

import "strings"

// MercadoPagoNotification covers both webhook (JSON body) and IPN (query
// string) notification styles.
type MercadoPagoNotification struct {
	ID     any    `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ResolvePaymentID returns the notified payment id, or "" when the
// notification is about something other than a payment.
func (n MercadoPagoNotification) ResolvePaymentID(queryTopic, queryID, queryDataID string) string {
	kind := strings.ToLower(strings.TrimSpace(n.Type))
	if kind == "" {
		kind = strings.ToLower(strings.TrimSpace(queryTopic))
	}
	if kind == "" && strings.HasPrefix(strings.ToLower(n.Action), "payment.") {
		kind = "payment"
	}
	if kind != "payment" {
		return ""
	}
	for _, candidate := range []string{n.Data.ID, queryDataID, queryID} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}
