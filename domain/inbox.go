package domain

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"time"
)

// InboxItem is the immutable envelope of a received activity: audit log and
// notification feed, not authoritative state. ObjectHash is the dedup key
// component computed over the resolved object data.
type InboxItem struct {
	Id           uuid.UUID
	RecipientURL string
	ActivityType string
	ObjectData   json.RawMessage
	ObjectHash   string
	RawData      json.RawMessage
	IsRead       bool
	DeliveredAt  time.Time
}

func (i *InboxItem) ToString() string {
	return fmt.Sprintf("%s for %s at %s", i.ActivityType, i.RecipientURL, i.DeliveredAt)
}

// InboxDelivery records one fan-out attempt of an entry to one recipient.
type InboxDelivery struct {
	Id           uuid.UUID
	EntryURL     string
	RecipientURL string
	Success      bool
	DeliveredAt  time.Time
}
