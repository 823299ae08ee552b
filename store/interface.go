package store

import (
	"context"
	"time"
)

// FlowStore defines the interface for checkpointing in-flight flows.
type FlowStore interface {
	// Create persists a new flow checkpoint.
	Create(ctx context.Context, record *FlowRecord) error

	// Get retrieves a flow checkpoint by flow id.
	Get(ctx context.Context, id string) (*FlowRecord, error)

	// Update overwrites an existing flow checkpoint.
	Update(ctx context.Context, record *FlowRecord) error

	// Delete removes a flow checkpoint by flow id.
	Delete(ctx context.Context, id string) error

	// DeleteExpired deletes all checkpoints past their ExpiresAt.
	DeleteExpired(ctx context.Context) (int64, error)

	// List lists all flow checkpoints involving a given peer user id.
	List(ctx context.Context, peerUserID string, limit, offset int) ([]*FlowRecord, error)

	// UpdateActivity bumps LastEventAt to now.
	UpdateActivity(ctx context.Context, id string) error

	// Count returns the total number of unexpired flow checkpoints.
	Count(ctx context.Context) (int64, error)
}

// DedupeStore defines the interface for suppressing re-application of a
// redelivered inbound verification event.
type DedupeStore interface {
	// CheckAndStore atomically checks whether eventKey was already seen
	// and, if not, records it as seen for the given flow.
	CheckAndStore(ctx context.Context, eventKey string, flowID string, expiresAt time.Time) error

	// IsSeen reports whether eventKey has already been recorded.
	IsSeen(ctx context.Context, eventKey string) (bool, error)

	// DeleteExpired deletes all expired dedupe entries.
	DeleteExpired(ctx context.Context) (int64, error)

	// Count returns the total number of stored dedupe entries.
	Count(ctx context.Context) (int64, error)
}

// DeviceStore defines the interface for caching peer device identity
// records, backing the §6 identity lookup contract.
type DeviceStore interface {
	// Create creates a new device record.
	Create(ctx context.Context, device *DeviceRecord) error

	// Get retrieves a device record by user id and device id.
	Get(ctx context.Context, userID, deviceID string) (*DeviceRecord, error)

	// Update updates an existing device record.
	Update(ctx context.Context, device *DeviceRecord) error

	// Delete deletes a device record.
	Delete(ctx context.Context, userID, deviceID string) error

	// ListByUser lists all known devices for a user id.
	ListByUser(ctx context.Context, userID string) ([]*DeviceRecord, error)

	// Revoke marks a device record as revoked.
	Revoke(ctx context.Context, userID, deviceID string) error

	// IsRevoked checks if a device record is revoked.
	IsRevoked(ctx context.Context, userID, deviceID string) (bool, error)
}

// Store combines all storage interfaces the verification service needs.
type Store interface {
	FlowStore() FlowStore
	DedupeStore() DedupeStore
	DeviceStore() DeviceStore

	// Close closes the storage connection.
	Close() error

	// Ping checks the storage connection.
	Ping(ctx context.Context) error
}
