package request

// PaymentWebhookRequest is the callback sent by the payment processor once it
// has decided on an intent.
type PaymentWebhookRequest struct {
	IntentID  string `json:"intentId" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=authorized failed"`
	Reference string `json:"reference" validate:"max=200"`
}
