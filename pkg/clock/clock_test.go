package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClock_ReturnsUTC(t *testing.T) {
	now := NewSystem().Now()
	assert.Equal(t, time.UTC, now.Location())
}

func TestManual_Advance(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewManual(start)

	assert.Equal(t, start, c.Now())
	c.Advance(15 * time.Minute)
	assert.Equal(t, start.Add(15*time.Minute), c.Now())
}

func TestManual_TickerFiresOnlyWhenDue(t *testing.T) {
	c := NewManual(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	tk := c.NewTicker(30 * time.Second)
	defer tk.Stop()

	c.Advance(10 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	c.Advance(20 * time.Second)
	select {
	case got := <-tk.C():
		assert.Equal(t, c.Now(), got)
	default:
		t.Fatal("ticker did not fire")
	}
}

func TestManual_TickerDropsTicksForSlowReceiver(t *testing.T) {
	c := NewManual(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	tk := c.NewTicker(time.Second)
	defer tk.Stop()

	c.Advance(time.Second)
	c.Advance(time.Second)
	c.Advance(time.Second)

	<-tk.C()
	select {
	case <-tk.C():
		t.Fatal("expected only one buffered tick")
	default:
	}
}

func TestManual_StopUnregisters(t *testing.T) {
	c := NewManual(time.Now())
	tk := c.NewTicker(time.Second)
	require.Equal(t, 1, c.Tickers())

	tk.Stop()
	assert.Equal(t, 0, c.Tickers())

	c.Advance(time.Minute)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}
