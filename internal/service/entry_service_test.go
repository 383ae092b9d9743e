package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntryFixture(vehicles *mockVehicleRepo, entries *mockEntryRepo, logs *mockLogRepo) *entryService {
	svc := NewEntryService(passThroughTx{}, entries, vehicles, logs, nullLogger()).(*entryService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRegisterEntry_Success(t *testing.T) {
	owner := uuid.New()
	vehicle := &models.Vehicle{ID: uuid.New(), PlateNumber: "RAB123A", UserID: owner}
	vehicles := &mockVehicleRepo{
		findByPlateFn: func(ctx context.Context, plate string) (*models.Vehicle, error) {
			assert.Equal(t, "RAB123A", plate)
			return vehicle, nil
		},
	}
	entries := &mockEntryRepo{}
	logs := &mockLogRepo{}
	svc := newEntryFixture(vehicles, entries, logs)

	entry, err := svc.RegisterEntry(context.Background(), testUser, " rab 123a")

	require.NoError(t, err)
	assert.Regexp(t, `^[0-9A-F]{8}$`, entry.ParkingCode)
	assert.Equal(t, owner, entry.UserID)
	assert.Equal(t, vehicle.ID, entry.VehicleID)
	assert.Equal(t, testNow, entry.EntryDateTime)
	assert.Nil(t, entry.ExitDateTime)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.ActionVehicleEntryRegistered, logs.entries[0].Action)
	assert.Equal(t, entry.ParkingCode, logs.entries[0].Details["parkingCode"])
}

func TestRegisterEntry_Errors(t *testing.T) {
	svc := newEntryFixture(&mockVehicleRepo{}, &mockEntryRepo{}, &mockLogRepo{})

	_, err := svc.RegisterEntry(context.Background(), testUser, "   ")
	assert.ErrorIs(t, err, ErrPlateRequired)

	_, err = svc.RegisterEntry(context.Background(), testUser, "UNKNOWN1")
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	vehicles := &mockVehicleRepo{
		findByPlateFn: func(ctx context.Context, plate string) (*models.Vehicle, error) {
			return &models.Vehicle{ID: uuid.New(), PlateNumber: plate}, nil
		},
	}
	svc = newEntryFixture(vehicles, &mockEntryRepo{}, &mockLogRepo{})
	svc.codes = func() (string, error) { return "", errors.New("entropy exhausted") }
	_, err = svc.RegisterEntry(context.Background(), testUser, "RAB123A")
	assert.ErrorContains(t, err, "entropy exhausted")
}

func TestRegisterExit(t *testing.T) {
	entries := &mockEntryRepo{
		entry: &models.VehicleEntry{
			ID:            uuid.New(),
			PlateNumber:   "RAB123A",
			EntryDateTime: testNow.Add(-150 * time.Minute),
		},
	}
	logs := &mockLogRepo{}
	svc := newEntryFixture(&mockVehicleRepo{}, entries, logs)

	entry, err := svc.RegisterExit(context.Background(), testUser, entries.entry.ID)

	require.NoError(t, err)
	require.NotNil(t, entry.ExitDateTime)
	assert.Equal(t, testNow, *entry.ExitDateTime)
	assert.Equal(t, int64(6000), entry.ChargedAmount)
	assert.Equal(t, []models.LogAction{models.ActionVehicleExitUpdated}, logs.actions())
}

func TestRegisterExit_Errors(t *testing.T) {
	svc := newEntryFixture(&mockVehicleRepo{}, &mockEntryRepo{}, &mockLogRepo{})
	_, err := svc.RegisterExit(context.Background(), testUser, uuid.New())
	assert.ErrorIs(t, err, ErrEntryNotFound)

	exited := testNow.Add(-time.Hour)
	svc = newEntryFixture(&mockVehicleRepo{}, &mockEntryRepo{
		entry: &models.VehicleEntry{ID: uuid.New(), EntryDateTime: testNow.Add(-2 * time.Hour), ExitDateTime: &exited},
	}, &mockLogRepo{})
	_, err = svc.RegisterExit(context.Background(), testUser, uuid.New())
	assert.ErrorIs(t, err, ErrAlreadyExited)

	// A concurrent exit won the conditional update.
	logs := &mockLogRepo{}
	svc = newEntryFixture(&mockVehicleRepo{}, &mockEntryRepo{
		entry: &models.VehicleEntry{ID: uuid.New(), EntryDateTime: testNow.Add(-time.Hour)},
		closeFn: func(ctx context.Context, id uuid.UUID, exitAt time.Time, amount int64) (bool, error) {
			return false, nil
		},
	}, logs)
	_, err = svc.RegisterExit(context.Background(), testUser, uuid.New())
	assert.ErrorIs(t, err, ErrAlreadyExited)
	assert.Empty(t, logs.entries)
}
