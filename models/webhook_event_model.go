package models

import "time"

// WebhookEvent is the ledger of processed payment-processor event ids.
// Inserting with ON CONFLICT DO NOTHING inside the finalization transaction
// makes replayed deliveries no-ops.
type WebhookEvent struct {
	ID          string    `gorm:"size:255;primary_key" json:"id"`
	Type        string    `gorm:"size:100;not null" json:"type"`
	ProcessedAt time.Time `gorm:"autoCreateTime" json:"processed_at"`
}
