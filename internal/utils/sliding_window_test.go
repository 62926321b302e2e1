package utils

import (
	"testing"
	"time"
)

func TestSlidingWindowAdd(t *testing.T) {
	window := NewSlidingWindow(2 * time.Second)
	now := time.Now()
	if count := window.Add("u1", now); count != 1 {
		t.Fatalf("expected 1, got %d", count)
	}
	window.Add("u1", now.Add(500*time.Millisecond))
	window.Add("u2", now.Add(500*time.Millisecond))
	if count := window.Count("u1", now.Add(1*time.Second)); count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	if count := window.Count("u1", now.Add(3*time.Second)); count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
}

func TestSlidingWindowSweep(t *testing.T) {
	window := NewSlidingWindow(time.Second)
	now := time.Now()
	window.Add("u1", now)
	window.Add("u2", now.Add(2*time.Second))
	window.Sweep(now.Add(2 * time.Second))
	if len(window.hits) != 1 {
		t.Fatalf("expected one live key, got %d", len(window.hits))
	}
}
