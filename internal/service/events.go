package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Assignment lifecycle event names, appended to the base subject.
const (
	EventAssignmentCreated   = "created"
	EventAssignmentCompleted = "completed"
	EventResultRecorded      = "result_recorded"
)

// AssignmentEvent is the payload published for assignment lifecycle changes.
type AssignmentEvent struct {
	Type         string    `json:"type"`
	AssignmentID uint      `json:"assignmentId,omitempty"`
	ExamID       uint      `json:"examId"`
	StudentID    uint      `json:"studentId"`
	Status       string    `json:"status,omitempty"`
	ResultID     *uint     `json:"resultId,omitempty"`
	Score        *float64  `json:"score,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// AssignmentEventPublisher fans lifecycle events out to other services.
type AssignmentEventPublisher interface {
	Publish(ctx context.Context, event AssignmentEvent) error
}

// NATSAssignmentPublisher publishes events to "<subject>.<event type>".
type NATSAssignmentPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSAssignmentPublisher returns a publisher bound to conn. A nil
// connection yields a publisher that drops every event.
func NewNATSAssignmentPublisher(conn *nats.Conn, subject string) *NATSAssignmentPublisher {
	return &NATSAssignmentPublisher{conn: conn, subject: strings.TrimSuffix(strings.TrimSpace(subject), ".")}
}

// Subject returns the NATS subject an event type is published on.
func (p *NATSAssignmentPublisher) Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", p.subject, eventType)
}

// Publish sends the event. The context is unused because core NATS publishes
// are fire-and-forget.
func (p *NATSAssignmentPublisher) Publish(_ context.Context, event AssignmentEvent) error {
	if p == nil || p.conn == nil || p.subject == "" {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish(p.Subject(event.Type), payload)
}

func publishEvent(ctx context.Context, publisher AssignmentEventPublisher, logger zerolog.Logger, event AssignmentEvent) {
	if publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Uint("exam_id", event.ExamID).Uint("student_id", event.StudentID).Msg("failed to publish assignment event")
	}
}
