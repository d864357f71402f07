package payments

import (
	"time"

	"github.com/stripe/stripe-go/v79/webhook"
)

// SignPayload produces a signature header accepted by Verifier for secret,
// for webhook tests in other packages.
func SignPayload(payload []byte, secret string, ts time.Time) string {
	return signatureHeader(payload, secret, ts)
}

func signatureHeader(payload []byte, secret string, ts time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	})
	return signed.Header
}
