package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var email = model.Email{
	To:      "organizer@mail.com",
	Subject: "New webinar registration",
	Body:    `bob@mail.com has registered to your webinar "Clean Architecture".`,
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Send(context.Background(), email))

	sent := m.Sent()
	assert.Equal(t, []model.Email{email}, sent)

	sent[0].To = "someone@else.com"
	assert.Equal(t, "organizer@mail.com", m.Sent()[0].To)
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLog(zap.New(core))

	require.NoError(t, l.Send(context.Background(), email))

	entries := logs.FilterMessage("email").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "organizer@mail.com", entries[0].ContextMap()["to"])
	assert.Equal(t, email.Body, entries[0].ContextMap()["body"])
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafka_Send(t *testing.T) {
	w := &fakeWriter{}
	k := NewKafka(w, zaptest.NewLogger(t))

	require.NoError(t, k.Send(context.Background(), email))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "organizer@mail.com", string(msg.Key))

	var decoded model.Email
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, email, decoded)

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestKafka_SendError(t *testing.T) {
	boom := errors.New("broker down")
	k := NewKafka(&fakeWriter{err: boom}, zaptest.NewLogger(t))

	err := k.Send(context.Background(), email)
	assert.ErrorIs(t, err, boom)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"k1:9092", "k2:9092"}, "mail")
	assert.Equal(t, "mail", w.Topic)
	assert.NotNil(t, w.Addr)
}
