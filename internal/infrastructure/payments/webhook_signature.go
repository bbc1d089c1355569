package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrMissingWebhookSignature = errors.New("missing x-signature header")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
)

// VerifyWebhookSignature checks the x-signature header Mercado Pago attaches to
// notifications. The signed manifest is
// "id:<data.id>;request-id:<x-request-id>;ts:<ts>;" with absent parts left out.
// An empty secret disables the check.
func VerifyWebhookSignature(secret, xSignature, xRequestID, dataID string) error {
	if secret == "" {
		return nil
	}
	if strings.TrimSpace(xSignature) == "" {
		return ErrMissingWebhookSignature
	}

	var ts, v1 string
	for _, part := range strings.Split(xSignature, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "ts":
			ts = strings.TrimSpace(v)
		case "v1":
			v1 = strings.TrimSpace(v)
		}
	}
	if ts == "" || v1 == "" {
		return ErrInvalidWebhookSignature
	}

	expected := SignWebhookManifest(secret, WebhookManifest(dataID, xRequestID, ts))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return ErrInvalidWebhookSignature
	}
	return nil
}

func WebhookManifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	if ts != "" {
		b.WriteString("ts:" + ts + ";")
	}
	return b.String()
}

func SignWebhookManifest(secret, manifest string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}
