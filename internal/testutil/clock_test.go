// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"
	"time"
)

func TestFakeClock_DefaultStart(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	if c.Now().IsZero() {
		t.Error("Now() is zero for a zero start time")
	}
}

func TestFakeClock_After(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	short := c.After(time.Second)
	long := c.After(time.Minute)
	if c.Waiters() != 2 {
		t.Fatalf("Waiters() = %d, want 2", c.Waiters())
	}

	c.Advance(999 * time.Millisecond)
	select {
	case <-short:
		t.Fatal("fired before its deadline")
	default:
	}

	c.Advance(time.Millisecond)
	select {
	case got := <-short:
		if !got.Equal(start.Add(time.Second)) {
			t.Errorf("fired with %v", got)
		}
	default:
		t.Fatal("did not fire at its deadline")
	}
	if c.Waiters() != 1 {
		t.Errorf("Waiters() = %d, want 1", c.Waiters())
	}

	c.Advance(time.Hour)
	select {
	case <-long:
	default:
		t.Fatal("long timer did not fire")
	}
}

func TestFakeClock_AfterNonPositive(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	select {
	case <-c.After(0):
	default:
		t.Error("After(0) did not fire immediately")
	}
	if c.Waiters() != 0 {
		t.Errorf("Waiters() = %d, want 0", c.Waiters())
	}
}
