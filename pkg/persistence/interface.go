package persistence

// ITreeStore persists built merkle trees so proofs can be regenerated after a
// restart. All implementations must be thread-safe.
type ITreeStore interface {
	// SaveTree persists a tree record keyed by its ID.
	// Overwrites any existing record with the same ID.
	SaveTree(record *TreeRecord) error

	// LoadTree retrieves a tree record by ID.
	// Returns nil if the record doesn't exist, error only on storage failure.
	LoadTree(id string) (*TreeRecord, error)

	// ListTrees returns every record sorted by CreatedAt, then ID.
	// Returns empty slice if no records exist, error only on storage failure.
	ListTrees() ([]*TreeRecord, error)

	// DeleteTree removes a record by ID.
	// Idempotent - returns nil if the record doesn't exist.
	DeleteTree(id string) error

	// Close cleanly shuts down the store.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations return errors.
	Close() error

	// HealthCheck verifies the store is operational.
	HealthCheck() error
}
