package snapshot_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/quakeset/internal/catalog"
	"github.com/temirov/quakeset/internal/snapshot"
)

const (
	storeDatabaseFileNameConstant = "snapshots.db"
	missingIdentifierConstant     = "missing-snapshot"
)

func openTestStore(testInstance *testing.T) *snapshot.Store {
	testInstance.Helper()

	databasePath := filepath.Join(testInstance.TempDir(), storeDatabaseFileNameConstant)
	store, openError := snapshot.OpenStore(databasePath)
	require.NoError(testInstance, openError)
	testInstance.Cleanup(func() {
		require.NoError(testInstance, store.Close())
	})
	return store
}

func sampleEvents() []catalog.Event {
	return []catalog.Event{
		{
			Identifier:     "EQ_000001",
			OccurrenceTime: time.Date(2010, time.May, 1, 12, 30, 0, 0, time.UTC),
			Magnitude:      4.2,
			SampleWeight:   catalog.DefaultSampleWeight,
			Method:         catalog.MethodReal,
			LogEnergy:      catalog.ComputeLogEnergy(4.2),
			FoldIndex:      2,
		},
	}
}

func sampleMetrics() catalog.DatasetMetrics {
	return catalog.DatasetMetrics{
		TotalEvents:  1,
		RealEvents:   1,
		MethodCounts: map[string]int{"real": 1},
		FoldCount:    7,
	}
}

func TestStoreSaveAndLoadDataset(testInstance *testing.T) {
	store := openTestStore(testInstance)

	snapshotIdentifier, saveError := store.SaveDataset(context.Background(), sampleEvents(), sampleMetrics())
	require.NoError(testInstance, saveError)
	require.NotEmpty(testInstance, snapshotIdentifier)

	loadedDataset, loadError := store.LoadDataset(context.Background(), snapshotIdentifier)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, snapshotIdentifier, loadedDataset.Identifier)
	require.Equal(testInstance, sampleEvents(), loadedDataset.Events)
	require.Equal(testInstance, sampleMetrics(), loadedDataset.Metrics)
	require.False(testInstance, loadedDataset.CreatedAt.IsZero())
}

func TestStoreLoadLatestReturnsMostRecentSnapshot(testInstance *testing.T) {
	store := openTestStore(testInstance)

	_, firstSaveError := store.SaveDataset(context.Background(), sampleEvents(), sampleMetrics())
	require.NoError(testInstance, firstSaveError)

	secondIdentifier, secondSaveError := store.SaveDataset(context.Background(), sampleEvents(), sampleMetrics())
	require.NoError(testInstance, secondSaveError)

	latestDataset, loadError := store.LoadLatest(context.Background())
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, secondIdentifier, latestDataset.Identifier)
}

func TestStoreLoadLatestOnEmptyStore(testInstance *testing.T) {
	store := openTestStore(testInstance)

	_, loadError := store.LoadLatest(context.Background())
	require.ErrorIs(testInstance, loadError, snapshot.ErrNoSnapshots)
}

func TestStoreLoadDatasetRejectsUnknownIdentifier(testInstance *testing.T) {
	store := openTestStore(testInstance)

	_, loadError := store.LoadDataset(context.Background(), missingIdentifierConstant)
	require.Error(testInstance, loadError)
}

func TestStoreListSnapshots(testInstance *testing.T) {
	store := openTestStore(testInstance)

	firstIdentifier, firstSaveError := store.SaveDataset(context.Background(), sampleEvents(), sampleMetrics())
	require.NoError(testInstance, firstSaveError)
	secondIdentifier, secondSaveError := store.SaveDataset(context.Background(), sampleEvents(), sampleMetrics())
	require.NoError(testInstance, secondSaveError)

	descriptors, listError := store.ListSnapshots(context.Background())
	require.NoError(testInstance, listError)
	require.Len(testInstance, descriptors, 2)

	descriptorIdentifiers := make([]string, 0, len(descriptors))
	for _, descriptor := range descriptors {
		descriptorIdentifiers = append(descriptorIdentifiers, descriptor.Identifier)
		require.Equal(testInstance, 1, descriptor.TotalEvents)
	}
	require.Contains(testInstance, descriptorIdentifiers, firstIdentifier)
	require.Contains(testInstance, descriptorIdentifiers, secondIdentifier)
}

func TestStoreHonorsCancelledContext(testInstance *testing.T) {
	store := openTestStore(testInstance)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, saveError := store.SaveDataset(cancelledContext, sampleEvents(), sampleMetrics())
	require.Error(testInstance, saveError)
}
