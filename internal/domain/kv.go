package domain

// KeyValueStore is durable string storage that survives restarts.
// Several processes may share one store; there is no locking protocol,
// the last full write to a key wins.
type KeyValueStore interface {
	// GetItem returns the value and true, or "" and false when the key is unset.
	GetItem(key string) (string, bool, error)

	// SetItem replaces the value stored at key.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error

	Close() error
}
