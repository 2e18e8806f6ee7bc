package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct{ ID int }

func TestBusCarriesAnyEvent(t *testing.T) {
	var bus EventBus = New()
	ch := bus.Subscribe()
	bus.Publish(sample{ID: 7})
	bus.Publish("text")

	ev := <-ch
	s, ok := ev.(sample)
	assert.True(t, ok)
	assert.Equal(t, 7, s.ID)
	assert.Equal(t, "text", <-ch)
	bus.Close()
}
