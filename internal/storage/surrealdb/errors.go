package surrealdb

import "strings"

// isNotFoundError reports whether a query failed because the record or
// table does not exist.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

// withRetry runs a write up to three times.
func withRetry(fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
