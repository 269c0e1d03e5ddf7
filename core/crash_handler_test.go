package core

import (
	"strings"
	"testing"
)

// TestRecoverReturnsPanicValue tests recovery with stack capture
func TestRecoverReturnsPanicValue(t *testing.T) {
	r, stack := Recover(func() { panic("boom") })
	if r != "boom" {
		t.Errorf("Expected recovered value boom, got %v", r)
	}
	if !strings.Contains(string(stack), "goroutine") {
		t.Error("Expected a stack trace")
	}
}

// TestRecoverNoPanic tests the normal path
func TestRecoverNoPanic(t *testing.T) {
	ran := false
	r, stack := Recover(func() { ran = true })
	if !ran {
		t.Error("Expected fn to run")
	}
	if r != nil || stack != nil {
		t.Errorf("Expected nil results, got %v and %d bytes", r, len(stack))
	}
}
