package domain

import "errors"

var (
	// ErrSourceSchemaMismatch is returned when a job's source table or one of
	// its configured columns does not exist; the job aborts before any write
	ErrSourceSchemaMismatch = errors.New("source schema mismatch")

	// ErrAmbiguousDedupKey is returned when a dedup source has rows that tie
	// on key, recency, and tie-break, so no deterministic winner exists
	ErrAmbiguousDedupKey = errors.New("ambiguous dedup key")

	// ErrTargetTableExists is returned when a dedup target table already
	// exists and the source definition does not allow replacing it
	ErrTargetTableExists = errors.New("target table already exists")

	// ErrUnknownDedupSource is returned when the requested dedup source name
	// is not present in the registry
	ErrUnknownDedupSource = errors.New("unknown dedup source")

	// ErrDateAlreadyApplied is returned when the monthly updater is asked to
	// apply a date that already has a completed run
	ErrDateAlreadyApplied = errors.New("processing date already applied")

	// ErrOutOfOrderDate is returned when a sequential job is asked to apply
	// a partition out of order: a monthly date that is not the next
	// consecutive day within its month, or a history year older than the
	// last applied one
	ErrOutOfOrderDate = errors.New("out of order processing date")
)
