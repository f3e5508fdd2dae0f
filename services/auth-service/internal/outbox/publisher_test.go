package outbox

import (
	"testing"
	"time"
)

func TestNewPublisherDefaults(t *testing.T) {
	p := NewPublisher(nil, nil, nil, PublisherConfig{Brokers: "kafka-1:9092,kafka-2:9092"})
	if len(p.brokers) != 2 {
		t.Fatalf("brokers = %v", p.brokers)
	}
	if p.pollEvery != 2*time.Second {
		t.Fatalf("pollEvery = %v", p.pollEvery)
	}
	if p.batchSize != 50 {
		t.Fatalf("batchSize = %d", p.batchSize)
	}
}

func TestEventTopics(t *testing.T) {
	if EventOTPRequested != "auth.otp.requested.v1" {
		t.Fatalf("otp topic = %q", EventOTPRequested)
	}
	if EventUserCreated != "auth.user.created.v1" {
		t.Fatalf("user created topic = %q", EventUserCreated)
	}
	if EventAudit != "auth.audit.v1" {
		t.Fatalf("audit topic = %q", EventAudit)
	}
}
