package utils

import (
	"context"
	"runtime/debug"
	"strings"

	"golang-market-scanner/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers panics so a single failing
// task cannot take down the scan.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				debug.PrintStack()
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still live, logging once
// when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context cancelled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// CleanToValidUTF8 strips invalid UTF-8 sequences from provider-sourced text.
func CleanToValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}
