package loader

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type stubFeature struct {
	name    string
	enabled bool
	loadErr error
	loaded  bool
}

func (f *stubFeature) Name() string { return f.name }
func (f *stubFeature) IsEnabled() bool { return f.enabled }
func (f *stubFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.loadErr
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()

	t.Run("Loads Enabled Skips Disabled", func(t *testing.T) {
		enabled := &stubFeature{name: "library", enabled: true}
		disabled := &stubFeature{name: "extras", enabled: false}

		mgr := NewManager()
		mgr.Register(enabled)
		mgr.Register(disabled)

		err := mgr.LoadAll(app)
		assert.NoError(t, err)
		assert.True(t, enabled.loaded)
		assert.False(t, disabled.loaded)
	})

	t.Run("Propagates Load Error", func(t *testing.T) {
		broken := &stubFeature{name: "broken", enabled: true, loadErr: fmt.Errorf("boom")}

		mgr := NewManager()
		mgr.Register(broken)

		err := mgr.LoadAll(app)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})
}
