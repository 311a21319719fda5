package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	openDatabaseErrorTemplateConstant  = "unable to open snapshot database %s: %w"
	saveSnapshotErrorTemplateConstant  = "unable to save snapshot: %w"
	loadSnapshotErrorTemplateConstant  = "unable to load snapshot %s: %w"
	listSnapshotsErrorTemplateConstant = "unable to list snapshots: %w"
	missingSnapshotMessageTemplate     = "snapshot %s not found"
	noSnapshotsMessageConstant         = "snapshot database contains no snapshots"
	databaseFilePermissionsOctal       = 0o600
	databaseOpenTimeoutConstant        = 1 * time.Second
	createdAtTimeLayoutConstant        = time.RFC3339Nano
)

var (
	snapshotsBucketName = []byte("snapshots")
	metadataBucketName  = []byte("meta")
	eventsKeyName       = []byte("events")
	metricsKeyName      = []byte("metrics")
	createdAtKeyName    = []byte("created_at")
	latestKeyName       = []byte("latest")
)

// ErrNoSnapshots reports that the snapshot database holds no snapshots yet.
var ErrNoSnapshots = errors.New(noSnapshotsMessageConstant)

// Descriptor identifies a stored snapshot.
type Descriptor struct {
	Identifier  string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	TotalEvents int       `json:"total_events"`
}

// Dataset is a fully loaded snapshot.
type Dataset struct {
	Identifier string                 `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	Events     []catalog.Event        `json:"events"`
	Metrics    catalog.DatasetMetrics `json:"metrics"`
}

// Store wraps a bbolt database holding dataset snapshots.
type Store struct {
	database *bolt.DB
}

// OpenStore opens (or creates) the snapshot database at the provided path.
func OpenStore(databasePath string) (*Store, error) {
	database, openError := bolt.Open(databasePath, databaseFilePermissionsOctal, &bolt.Options{Timeout: databaseOpenTimeoutConstant})
	if openError != nil {
		return nil, fmt.Errorf(openDatabaseErrorTemplateConstant, databasePath, openError)
	}
	return &Store{database: database}, nil
}

// Close releases the underlying bbolt database.
func (store *Store) Close() error {
	return store.database.Close()
}

// SaveDataset stores the provided events and metrics as a new snapshot and
// marks it as the latest one. The snapshot identifier is returned.
func (store *Store) SaveDataset(executionContext context.Context, events []catalog.Event, metrics catalog.DatasetMetrics) (string, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}

	snapshotIdentifier := uuid.NewString()
	createdAt := time.Now().UTC()

	encodedEvents, eventsError := json.Marshal(events)
	if eventsError != nil {
		return "", fmt.Errorf(saveSnapshotErrorTemplateConstant, eventsError)
	}

	encodedMetrics, metricsError := json.Marshal(metrics)
	if metricsError != nil {
		return "", fmt.Errorf(saveSnapshotErrorTemplateConstant, metricsError)
	}

	updateError := store.database.Update(func(transaction *bolt.Tx) error {
		snapshotsBucket, snapshotsBucketError := transaction.CreateBucketIfNotExists(snapshotsBucketName)
		if snapshotsBucketError != nil {
			return snapshotsBucketError
		}

		snapshotBucket, snapshotBucketError := snapshotsBucket.CreateBucketIfNotExists([]byte(snapshotIdentifier))
		if snapshotBucketError != nil {
			return snapshotBucketError
		}

		if putError := snapshotBucket.Put(eventsKeyName, encodedEvents); putError != nil {
			return putError
		}
		if putError := snapshotBucket.Put(metricsKeyName, encodedMetrics); putError != nil {
			return putError
		}
		if putError := snapshotBucket.Put(createdAtKeyName, []byte(createdAt.Format(createdAtTimeLayoutConstant))); putError != nil {
			return putError
		}

		metadataBucket, metadataBucketError := transaction.CreateBucketIfNotExists(metadataBucketName)
		if metadataBucketError != nil {
			return metadataBucketError
		}

		return metadataBucket.Put(latestKeyName, []byte(snapshotIdentifier))
	})
	if updateError != nil {
		return "", fmt.Errorf(saveSnapshotErrorTemplateConstant, updateError)
	}

	return snapshotIdentifier, nil
}

// LoadDataset retrieves a snapshot by identifier.
func (store *Store) LoadDataset(executionContext context.Context, snapshotIdentifier string) (Dataset, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return Dataset{}, contextError
	}

	dataset := Dataset{Identifier: snapshotIdentifier}

	viewError := store.database.View(func(transaction *bolt.Tx) error {
		snapshotBucket, bucketError := resolveSnapshotBucket(transaction, snapshotIdentifier)
		if bucketError != nil {
			return bucketError
		}

		if encodedEvents := snapshotBucket.Get(eventsKeyName); encodedEvents != nil {
			if unmarshalError := json.Unmarshal(encodedEvents, &dataset.Events); unmarshalError != nil {
				return unmarshalError
			}
		}

		if encodedMetrics := snapshotBucket.Get(metricsKeyName); encodedMetrics != nil {
			if unmarshalError := json.Unmarshal(encodedMetrics, &dataset.Metrics); unmarshalError != nil {
				return unmarshalError
			}
		}

		if encodedCreatedAt := snapshotBucket.Get(createdAtKeyName); encodedCreatedAt != nil {
			parsedCreatedAt, parseError := time.Parse(createdAtTimeLayoutConstant, string(encodedCreatedAt))
			if parseError != nil {
				return parseError
			}
			dataset.CreatedAt = parsedCreatedAt
		}

		return nil
	})
	if viewError != nil {
		return Dataset{}, fmt.Errorf(loadSnapshotErrorTemplateConstant, snapshotIdentifier, viewError)
	}

	return dataset, nil
}

// LoadLatest retrieves the most recently saved snapshot.
func (store *Store) LoadLatest(executionContext context.Context) (Dataset, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return Dataset{}, contextError
	}

	latestIdentifier := ""
	viewError := store.database.View(func(transaction *bolt.Tx) error {
		metadataBucket := transaction.Bucket(metadataBucketName)
		if metadataBucket == nil {
			return ErrNoSnapshots
		}

		encodedIdentifier := metadataBucket.Get(latestKeyName)
		if encodedIdentifier == nil {
			return ErrNoSnapshots
		}

		latestIdentifier = string(encodedIdentifier)
		return nil
	})
	if viewError != nil {
		return Dataset{}, viewError
	}

	return store.LoadDataset(executionContext, latestIdentifier)
}

// ListSnapshots enumerates stored snapshot descriptors.
func (store *Store) ListSnapshots(executionContext context.Context) ([]Descriptor, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	descriptors := []Descriptor{}

	viewError := store.database.View(func(transaction *bolt.Tx) error {
		snapshotsBucket := transaction.Bucket(snapshotsBucketName)
		if snapshotsBucket == nil {
			return nil
		}

		return snapshotsBucket.ForEachBucket(func(bucketName []byte) error {
			snapshotBucket := snapshotsBucket.Bucket(bucketName)
			if snapshotBucket == nil {
				return nil
			}

			descriptor := Descriptor{Identifier: string(bucketName)}

			if encodedCreatedAt := snapshotBucket.Get(createdAtKeyName); encodedCreatedAt != nil {
				parsedCreatedAt, parseError := time.Parse(createdAtTimeLayoutConstant, string(encodedCreatedAt))
				if parseError == nil {
					descriptor.CreatedAt = parsedCreatedAt
				}
			}

			if encodedMetrics := snapshotBucket.Get(metricsKeyName); encodedMetrics != nil {
				metrics := catalog.DatasetMetrics{}
				if unmarshalError := json.Unmarshal(encodedMetrics, &metrics); unmarshalError == nil {
					descriptor.TotalEvents = metrics.TotalEvents
				}
			}

			descriptors = append(descriptors, descriptor)
			return nil
		})
	})
	if viewError != nil {
		return nil, fmt.Errorf(listSnapshotsErrorTemplateConstant, viewError)
	}

	return descriptors, nil
}

func resolveSnapshotBucket(transaction *bolt.Tx, snapshotIdentifier string) (*bolt.Bucket, error) {
	snapshotsBucket := transaction.Bucket(snapshotsBucketName)
	if snapshotsBucket == nil {
		return nil, fmt.Errorf(missingSnapshotMessageTemplate, snapshotIdentifier)
	}

	snapshotBucket := snapshotsBucket.Bucket([]byte(snapshotIdentifier))
	if snapshotBucket == nil {
		return nil, fmt.Errorf(missingSnapshotMessageTemplate, snapshotIdentifier)
	}

	return snapshotBucket, nil
}
