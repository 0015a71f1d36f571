package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	payload []byte
}

type fakeJS struct {
	msgs []published
	err  error
}

func (f *fakeJS) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, payload: payload})
	return &jetstream.PubAck{Stream: StreamEvents}, nil
}

func TestPublisher_Publish(t *testing.T) {
	js := &fakeJS{}
	p := NewPublisher(js)
	ts := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), Event{
		Type:           TypeNotificationAdmitted,
		SessionID:      "s1",
		NotificationID: "field_tip_email",
		Priority:       3,
		Timestamp:      ts,
	})
	require.NoError(t, err)
	require.Len(t, js.msgs, 1)
	assert.Equal(t, SubjectNotification, js.msgs[0].subject)

	var got Event
	require.NoError(t, json.Unmarshal(js.msgs[0].payload, &got))
	assert.Equal(t, "field_tip_email", got.NotificationID)
	assert.True(t, got.Timestamp.Equal(ts))
}

func TestPublisher_Error(t *testing.T) {
	p := NewPublisher(&fakeJS{err: errors.New("no responders")})
	err := p.Publish(context.Background(), Event{Type: TypeChatTurn})
	require.Error(t, err)
	assert.Contains(t, err.Error(), SubjectChat)
}

func TestSubject(t *testing.T) {
	tests := map[string]string{
		TypeNotificationExpired: SubjectNotification,
		TypeNudgeEnqueued:       SubjectNudge,
		TypeSuggestionOffered:   SubjectChat,
		TypeSessionStarted:      SubjectSession,
		"unknown":               SubjectSession,
	}
	for typ, want := range tests {
		t.Run(typ, func(t *testing.T) {
			assert.Equal(t, want, Subject(typ))
		})
	}
}
