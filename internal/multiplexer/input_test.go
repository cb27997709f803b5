package multiplexer

import (
	"testing"
)

func TestSpecialKeyNames(t *testing.T) {
	cases := []struct {
		key  SpecialKey
		want string
	}{
		{KeyEnter, "Enter"},
		{KeyTab, "Tab"},
		{KeyBackspace, "BSpace"},
		{KeyDelete, "DC"},
		{KeyPageUp, "PPage"},
		{KeyPageDown, "NPage"},
	}
	for _, c := range cases {
		if string(c.key) != c.want {
			t.Errorf("Expected %q, got %q", c.want, string(c.key))
		}
	}
}

func TestInputForwarderQueues(t *testing.T) {
	f := NewInputForwarder(NewExecutor(nil), "cc-12345678", nil)
	// Stop the drain goroutine first so queued events stay observable.
	f.Close()

	f.SendLine("hello")
	if got := f.QueueLen(); got != 2 {
		t.Errorf("Expected text plus Enter queued, got %d", got)
	}

	f.SendControl('c')
	if got := f.QueueLen(); got != 3 {
		t.Errorf("Expected 3 queued events, got %d", got)
	}
}
