package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PayloadEnvelope is the stable wire shape stored in outbox_events and
// published to Pub/Sub. Consumers key dedupe off EventID, so it is minted
// once at emit time and never regenerated on retry.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// ActorRef records who triggered the event. System-generated events (cron
// sweeps, the payment TTL job) carry no actor.
type ActorRef struct {
	UserID     uuid.UUID  `json:"userId"`
	OperatorID *uuid.UUID `json:"operatorId,omitempty"`
	Role       string     `json:"role,omitempty"`
}
