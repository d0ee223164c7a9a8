//go:build !integration

package console

import (
	"os"
	"testing"
	"time"
)

func TestNewSpinner(t *testing.T) {
	spinner := NewSpinner("Test message")

	if spinner == nil {
		t.Fatal("NewSpinner returned nil")
	}

	// Test that spinner can be started and stopped without panic
	spinner.Start()
	time.Sleep(10 * time.Millisecond)
	spinner.Stop()
}

func TestSpinnerAccessibilityMode(t *testing.T) {
	// Save original environment
	origAccessible := os.Getenv("ACCESSIBLE")
	defer func() {
		if origAccessible != "" {
			os.Setenv("ACCESSIBLE", origAccessible)
		} else {
			os.Unsetenv("ACCESSIBLE")
		}
	}()

	// Test with ACCESSIBLE set
	os.Setenv("ACCESSIBLE", "1")
	spinner := NewSpinner("Test message")

	// Spinner should be disabled when ACCESSIBLE is set
	if spinner.IsEnabled() {
		t.Error("spinner should be disabled when ACCESSIBLE is set")
	}

	// Ensure no panic when starting/stopping disabled spinner
	spinner.Start()
	spinner.Stop()

	// Test with ACCESSIBLE unset
	os.Unsetenv("ACCESSIBLE")
	spinner2 := NewSpinner("Test message 2")
	spinner2.Start()
	time.Sleep(10 * time.Millisecond)
	spinner2.Stop()
}

func TestSpinnerUpdateMessage(t *testing.T) {
	spinner := NewSpinner("Initial message")

	// This should not panic even if spinner is disabled
	spinner.UpdateMessage("Updated message")

	spinner.Start()
	spinner.UpdateMessage("Running message")
	spinner.Stop()
}

func TestSpinnerDoubleStop(t *testing.T) {
	spinner := NewSpinner("Test message")
	spinner.Start()
	spinner.Stop()
	// Second stop must be a no-op.
	spinner.Stop()
}
