package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (production-style: event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	EventOTPRequested = "auth.otp.requested.v1"
	EventUserCreated  = "auth.user.created.v1"
	EventAudit        = "auth.audit.v1"
)
