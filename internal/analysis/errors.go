package analysis

import (
	"fmt"
	"time"
)

// DuplicateSourceError reports that a source already has a measurement for
// the same URL. It carries enough context for the caller to present an
// "overwrite?" confirmation.
type DuplicateSourceError struct {
	ExistingPostID int64
	ExistingDate   time.Time
}

func (e *DuplicateSourceError) Error() string {
	return fmt.Sprintf("source already analyzed this URL on %s (post %d); re-run with force to overwrite",
		e.ExistingDate.Format("2006-01-02"), e.ExistingPostID)
}

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}
