package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaReportPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaReportPublisher{writer: w, topic: "ifocus.focus-reports"}

	sid := int64(2)
	event := &entities.ReportEvent{
		JobID:        uuid.New(),
		JobType:      entities.InsightJobTypeEnrollment,
		StudentID:    &sid,
		AssignmentID: 10,
		Report:       entities.FocusReport{SampleCount: 3, TransitionCount: 1},
		GeneratedAt:  time.Now().UTC(),
	}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "assignment:10:student:2" {
		t.Fatalf("key = %s", msg.Key)
	}
	var decoded entities.ReportEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if decoded.Report.TransitionCount != 1 || decoded.JobID != event.JobID {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestKafkaReportPublisher_WrapsWriteErrors(t *testing.T) {
	p := &KafkaReportPublisher{writer: &fakeWriter{err: errors.New("leader not available")}, topic: "t"}

	err := p.Publish(context.Background(), &entities.ReportEvent{AssignmentID: 10})
	if apperrors.CodeOf(err) != apperrors.ErrorCode_INTEGRATION_MESSAGING_FAILED {
		t.Fatalf("error = %v", err)
	}
	if !apperrors.IsCollaboratorFailure(err) {
		t.Fatal("publish failure should count as a collaborator failure")
	}
}

func TestReportEvent_PartitionKeyForAggregate(t *testing.T) {
	e := &entities.ReportEvent{AssignmentID: 11}
	if got := e.PartitionKey(); got != "assignment:11" {
		t.Fatalf("PartitionKey() = %s", got)
	}
}
