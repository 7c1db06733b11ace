package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventKnownType(t *testing.T) {
	frame := []byte(`{"type":"new_tell","tell":{"id":"t1","content":"soru?"}}`)

	ev, err := ParseEvent(frame)
	require.NoError(t, err)
	assert.Equal(t, EventNewTell, ev.Type)

	p, err := ev.DecodeNewTell()
	require.NoError(t, err)
	assert.Equal(t, "t1", p.Tell.ID)
	assert.Equal(t, "soru?", p.Tell.Content)
}

func TestParseEventUnknownTypeIsNotAnError(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"server_maintenance","at":"soon"}`))
	require.NoError(t, err)
	assert.Equal(t, EventType("server_maintenance"), ev.Type)
}

func TestParseEventMissingType(t *testing.T) {
	_, err := ParseEvent([]byte(`{"tell":{"id":"t1"}}`))
	assert.Error(t, err)
}

func TestParseEventMalformedJSON(t *testing.T) {
	_, err := ParseEvent([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestDecodeNewMessage(t *testing.T) {
	frame := []byte(`{"type":"new_message","chat_id":"c1","message":{"id":"m1","chat_id":"c1","sender_id":"u2","content":"hey"}}`)

	ev, err := ParseEvent(frame)
	require.NoError(t, err)
	require.Equal(t, EventNewMessage, ev.Type)

	p, err := ev.DecodeNewMessage()
	require.NoError(t, err)
	assert.Equal(t, "c1", p.ChatID)
	assert.Equal(t, "m1", p.Message.ID)
	assert.Equal(t, "u2", p.Message.SenderID)
}

func TestDecodeTellAnswered(t *testing.T) {
	frame := []byte(`{"type":"tell_answered","tell":{"id":"t1"},"answer":{"id":"a1","tell_id":"t1","content":"cevap"}}`)

	ev, err := ParseEvent(frame)
	require.NoError(t, err)

	p, err := ev.DecodeTellAnswered()
	require.NoError(t, err)
	assert.Equal(t, "t1", p.Tell.ID)
	assert.Equal(t, "a1", p.Answer.ID)
}

func TestDecodeNewReply(t *testing.T) {
	frame := []byte(`{"type":"new_reply","tell_id":"t1","reply":{"id":"r1","answer_id":"a1","content":"ek"}}`)

	ev, err := ParseEvent(frame)
	require.NoError(t, err)

	p, err := ev.DecodeNewReply()
	require.NoError(t, err)
	assert.Equal(t, "t1", p.TellID)
	assert.Equal(t, "a1", p.Reply.AnswerID)
}

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewDispatcher()
	var tells, messages int

	d.Subscribe(EventNewTell, func(Event) { tells++ })
	d.Subscribe(EventNewMessage, func(Event) { messages++ })

	ev, err := ParseEvent([]byte(`{"type":"new_tell","tell":{}}`))
	require.NoError(t, err)
	d.Dispatch(ev)
	d.Dispatch(ev)

	assert.Equal(t, 2, tells)
	assert.Zero(t, messages)
}

func TestDispatcherMultipleHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.Subscribe(EventNewTell, func(Event) { order = append(order, "first") })
	d.Subscribe(EventNewTell, func(Event) { order = append(order, "second") })

	d.Dispatch(Event{Type: EventNewTell})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	d := NewDispatcher()
	var called bool

	d.Subscribe(EventNewTell, func(Event) { panic("broken subscriber") })
	d.Subscribe(EventNewTell, func(Event) { called = true })

	assert.NotPanics(t, func() {
		d.Dispatch(Event{Type: EventNewTell})
	})
	assert.True(t, called, "panic in one handler must not starve the rest")
}

func TestDispatcherDropsUnsubscribedTypes(t *testing.T) {
	d := NewDispatcher()
	assert.NotPanics(t, func() {
		d.Dispatch(Event{Type: "unknown_event"})
	})
}
