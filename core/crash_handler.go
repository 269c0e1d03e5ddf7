package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu   sync.Mutex
	crashHook func()
)

// SetCrashHook registers cleanup run before a fatal crash report (e.g. restoring the terminal)
func SetCrashHook(fn func()) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashHook = fn
}

// HandleCrash is the unified fatal panic handler: runs the hook, prints the stack trace, exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	hook := crashHook
	crashMu.Unlock()
	if hook != nil {
		hook()
	}

	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Stderr.Sync()

	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword for service goroutines so the terminal is restored on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}

// Recover runs fn and returns the recovered panic value and stack, if any
// Non-fatal counterpart of Go for code that must survive a faulty callee
func Recover(fn func()) (r any, stack []byte) {
	defer func() {
		if r = recover(); r != nil {
			stack = debug.Stack()
		}
	}()
	fn()
	return nil, nil
}
