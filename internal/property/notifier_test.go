package property

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_CoalescesPendingKeys(t *testing.T) {
	n := newNotifier()
	defer n.Close()

	// Nobody is reading yet, so these pile up.
	require.True(t, n.Publish("a"))
	require.True(t, n.Publish("b", "a"))
	require.True(t, n.Publish("c"))

	var seen []string
	deadline := time.After(2 * time.Second)
	for len(seen) < 3 {
		select {
		case c := <-n.C():
			seen = append(seen, c.Keys...)
		case <-deadline:
			t.Fatalf("timed out, saw %v", seen)
		}
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestNotifier_PublishAfterClose(t *testing.T) {
	n := newNotifier()
	n.Close()
	n.Close()

	assert.False(t, n.Publish("a"))

	select {
	case _, ok := <-n.C():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestNotifier_EmptyPublishIsNoop(t *testing.T) {
	n := newNotifier()
	defer n.Close()

	assert.True(t, n.Publish())
	select {
	case c := <-n.C():
		t.Fatalf("unexpected change %v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChange_Has(t *testing.T) {
	c := Change{Keys: []string{"x", "y"}}
	assert.True(t, c.Has("y"))
	assert.False(t, c.Has("z"))
	assert.False(t, Change{}.Has("x"))
}
