package config

import (
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Setenv("TEST_INT", "25")
	if got := Int("TEST_INT", 10); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	t.Setenv("TEST_INT", "not-a-number")
	if got := Int("TEST_INT", 10); got != 10 {
		t.Fatalf("expected fallback 10, got %d", got)
	}
	if got := Int("TEST_INT_UNSET", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}

func TestMinutes(t *testing.T) {
	t.Setenv("TEST_MINUTES", "3")
	if got := Minutes("TEST_MINUTES", 15); got != 3*time.Minute {
		t.Fatalf("expected 3m, got %s", got)
	}
	t.Setenv("TEST_MINUTES", "-5")
	if got := Minutes("TEST_MINUTES", 15); got != 15*time.Minute {
		t.Fatalf("expected fallback 15m, got %s", got)
	}
}

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "8084")
	p, err := Port("TEST_PORT", "8080")
	if err != nil || p != "8084" {
		t.Fatalf("expected 8084, got %q (err %v)", p, err)
	}
	t.Setenv("TEST_PORT", "70000")
	if _, err := Port("TEST_PORT", "8080"); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !Bool("TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("TEST_BOOL", "0")
	if Bool("TEST_BOOL", true) {
		t.Fatal("expected false")
	}
	if !Bool("TEST_BOOL_UNSET", true) {
		t.Fatal("expected fallback true")
	}
}
