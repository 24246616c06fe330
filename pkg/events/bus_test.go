package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var order []int
	b.Register(ListenerFunc(func(e Event) { order = append(order, 1) }))
	b.Register(ListenerFunc(func(e Event) { order = append(order, 2) }))
	b.Register(ListenerFunc(func(e Event) { order = append(order, 3) }))

	b.Emit(Event{Type: Info})

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestBus_PanickingListenerDoesNotBlockOthers(t *testing.T) {
	b := NewBus()
	var secondSaw, thirdSaw bool

	b.Register(ListenerFunc(func(e Event) { panic("boom") }))
	b.Register(ListenerFunc(func(e Event) { secondSaw = true }))
	b.Register(ListenerFunc(func(e Event) { thirdSaw = true }))

	assert.NotPanics(t, func() { b.Emit(Event{Type: Warning}) })
	assert.True(t, secondSaw)
	assert.True(t, thirdSaw)
}

func TestBus_Unregister(t *testing.T) {
	b := NewBus()
	var calls int
	h := b.Register(ListenerFunc(func(e Event) { calls++ }))
	b.Emit(Event{})
	b.Unregister(h)
	b.Emit(Event{})
	assert.Equal(t, 1, calls)
}

func TestBus_EachListenerObservesEventExactlyOnce(t *testing.T) {
	b := NewBus()
	var count1, count2 int
	b.Register(ListenerFunc(func(e Event) { count1++ }))
	b.Register(ListenerFunc(func(e Event) { count2++ }))

	b.Emit(Event{Type: PhaseStarted})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}
