package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifier(t *testing.T) {
	t.Run("Delivers To All Subscribers", func(t *testing.T) {
		n := NewNotifier()
		calls := 0
		n.Subscribe(EventSyncing, func() { calls++ })
		n.Subscribe(EventSyncing, func() { calls++ })

		n.fire(EventSyncing)
		assert.Equal(t, 2, calls)
	})

	t.Run("Events Are Independent", func(t *testing.T) {
		n := NewNotifier()
		var got []Event
		n.Subscribe(EventSynced, func() { got = append(got, EventSynced) })
		n.Subscribe(EventUpdated, func() { got = append(got, EventUpdated) })

		n.fire(EventSynced)
		assert.Equal(t, []Event{EventSynced}, got)
	})

	t.Run("Fire Without Subscribers", func(t *testing.T) {
		n := NewNotifier()
		assert.NotPanics(t, func() { n.fire(EventUpdated) })
	})

	t.Run("Subscribe During Callback Does Not Deadlock", func(t *testing.T) {
		n := NewNotifier()
		n.Subscribe(EventSyncing, func() {
			n.Subscribe(EventSynced, func() {})
		})
		assert.NotPanics(t, func() { n.fire(EventSyncing) })
	})
}
