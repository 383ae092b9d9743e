package service

import (
	"context"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

// --- Transactor ---

type passThroughTx struct{}

func (passThroughTx) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	createFn            func(ctx context.Context, b *models.Booking) error
	findByIDFn          func(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	findOverlappingFn   func(ctx context.Context, slotID uuid.UUID, start, end time.Time) (*models.Booking, error)
	countActiveBySlotFn func(ctx context.Context, slotID uuid.UUID) (int64, error)
	countActiveByVehFn  func(ctx context.Context, vehicleID uuid.UUID) (int64, error)
	listFn              func(ctx context.Context, filter repository.BookingFilter, page repository.Pagination) ([]models.Booking, int64, error)
	countByStatusFn     func(ctx context.Context) (map[models.BookingStatus]int64, error)
	countSinceFn        func(ctx context.Context, since time.Time) (int64, error)

	statusUpdates   []models.BookingStatus
	updateStatusErr error
	markedPaid      bool
}

func (m *mockBookingRepo) Create(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}
func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockBookingRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockBookingRepo) FindOverlapping(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, start, end time.Time) (*models.Booking, error) {
	if m.findOverlappingFn != nil {
		return m.findOverlappingFn(ctx, slotID, start, end)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockBookingRepo) CountActiveBySlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) (int64, error) {
	if m.countActiveBySlotFn != nil {
		return m.countActiveBySlotFn(ctx, slotID)
	}
	return 0, nil
}
func (m *mockBookingRepo) CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	if m.countActiveByVehFn != nil {
		return m.countActiveByVehFn(ctx, vehicleID)
	}
	return 0, nil
}
func (m *mockBookingRepo) List(ctx context.Context, filter repository.BookingFilter, page repository.Pagination) ([]models.Booking, int64, error) {
	return m.listFn(ctx, filter, page)
}
func (m *mockBookingRepo) ListAll(ctx context.Context) ([]models.Booking, error) {
	bookings, _, err := m.listFn(ctx, repository.BookingFilter{}, repository.Pagination{})
	return bookings, err
}
func (m *mockBookingRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.BookingStatus) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}
func (m *mockBookingRepo) MarkPaid(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	m.markedPaid = true
	return nil
}
func (m *mockBookingRepo) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	return m.countByStatusFn(ctx)
}
func (m *mockBookingRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return m.countSinceFn(ctx, since)
}

// --- Mock SlotRepository ---

type mockSlotRepo struct {
	findByIDFn     func(ctx context.Context, id uuid.UUID) (*models.ParkingSlot, error)
	findByNumberFn func(ctx context.Context, number string) (*models.ParkingSlot, error)
	createFn       func(ctx context.Context, slot *models.ParkingSlot) error
	countFn        func(ctx context.Context, availableOnly bool) (int64, error)

	updated *models.ParkingSlot
	deleted uuid.UUID
}

func (m *mockSlotRepo) Create(ctx context.Context, tx *gorm.DB, slot *models.ParkingSlot) error {
	if m.createFn != nil {
		return m.createFn(ctx, slot)
	}
	slot.ID = uuid.New()
	return nil
}
func (m *mockSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingSlot, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockSlotRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ParkingSlot, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockSlotRepo) FindBySlotNumber(ctx context.Context, number string) (*models.ParkingSlot, error) {
	if m.findByNumberFn != nil {
		return m.findByNumberFn(ctx, number)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockSlotRepo) List(ctx context.Context, filter repository.SlotFilter, page repository.Pagination) ([]models.ParkingSlot, int64, error) {
	return nil, 0, nil
}
func (m *mockSlotRepo) ListAvailable(ctx context.Context, start, end time.Time, filter repository.SlotFilter) ([]models.ParkingSlot, error) {
	return []models.ParkingSlot{}, nil
}
func (m *mockSlotRepo) Update(ctx context.Context, tx *gorm.DB, slot *models.ParkingSlot) error {
	m.updated = slot
	return nil
}
func (m *mockSlotRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	m.deleted = id
	return nil
}
func (m *mockSlotRepo) Count(ctx context.Context, availableOnly bool) (int64, error) {
	return m.countFn(ctx, availableOnly)
}

// --- Mock VehicleRepository ---

type mockVehicleRepo struct {
	findByIDFn    func(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	findByPlateFn func(ctx context.Context, plate string) (*models.Vehicle, error)
	createFn      func(ctx context.Context, v *models.Vehicle) error
	countFn       func(ctx context.Context) (int64, error)

	deleted uuid.UUID
}

func (m *mockVehicleRepo) Create(ctx context.Context, v *models.Vehicle) error {
	if m.createFn != nil {
		return m.createFn(ctx, v)
	}
	v.ID = uuid.New()
	return nil
}
func (m *mockVehicleRepo) Update(ctx context.Context, v *models.Vehicle) error { return nil }
func (m *mockVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleted = id
	return nil
}
func (m *mockVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockVehicleRepo) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	if m.findByPlateFn != nil {
		return m.findByPlateFn(ctx, plate)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockVehicleRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Vehicle, error) {
	return nil, nil
}
func (m *mockVehicleRepo) Count(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}

// --- Mock PaymentRepository ---

type mockPaymentRepo struct {
	payment  *models.Payment
	created  *models.Payment
	statuses []models.PaymentStatus
	sumFn    func(ctx context.Context, status models.PaymentStatus) (int64, error)
}

func (m *mockPaymentRepo) Create(ctx context.Context, tx *gorm.DB, p *models.Payment) error {
	p.ID = uuid.New()
	m.created = p
	return nil
}
func (m *mockPaymentRepo) FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error) {
	if m.payment == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.payment, nil
}
func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.PaymentStatus) error {
	m.statuses = append(m.statuses, status)
	return nil
}
func (m *mockPaymentRepo) SumByStatus(ctx context.Context, status models.PaymentStatus) (int64, error) {
	return m.sumFn(ctx, status)
}

// --- Mock LogRepository ---

type mockLogRepo struct {
	entries []*models.Log
}

func (m *mockLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *models.Log) error {
	m.entries = append(m.entries, entry)
	return nil
}
func (m *mockLogRepo) List(ctx context.Context, action models.LogAction, page repository.Pagination) ([]models.Log, int64, error) {
	return nil, 0, nil
}

func (m *mockLogRepo) actions() []models.LogAction {
	out := make([]models.LogAction, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

// --- Mock EntryRepository ---

type mockEntryRepo struct {
	entry     *models.VehicleEntry
	created   *models.VehicleEntry
	closeFn   func(ctx context.Context, id uuid.UUID, exitAt time.Time, amount int64) (bool, error)
	countOpen int64
}

func (m *mockEntryRepo) Create(ctx context.Context, tx *gorm.DB, e *models.VehicleEntry) error {
	e.ID = uuid.New()
	m.created = e
	return nil
}
func (m *mockEntryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.VehicleEntry, error) {
	if m.entry == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.entry, nil
}
func (m *mockEntryRepo) CloseExit(ctx context.Context, tx *gorm.DB, id uuid.UUID, exitAt time.Time, amount int64) (bool, error) {
	if m.closeFn != nil {
		return m.closeFn(ctx, id, exitAt, amount)
	}
	return true, nil
}
func (m *mockEntryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.VehicleEntry, error) {
	return nil, nil
}
func (m *mockEntryRepo) CountOpen(ctx context.Context) (int64, error) {
	return m.countOpen, nil
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	byEmail map[string]*models.User
	created *models.User
	updated *models.User
	count   int64
	all     []models.User
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.created = u
	return nil
}
func (m *mockUserRepo) Update(ctx context.Context, u *models.User) error {
	m.updated = u
	return nil
}
func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockUserRepo) FindAdmins(ctx context.Context) ([]models.User, error) { return nil, nil }
func (m *mockUserRepo) List(ctx context.Context, filter repository.UserFilter, page repository.Pagination) ([]models.User, int64, error) {
	return m.all, int64(len(m.all)), nil
}
func (m *mockUserRepo) ListAll(ctx context.Context) ([]models.User, error) { return m.all, nil }
func (m *mockUserRepo) Count(ctx context.Context) (int64, error)           { return m.count, nil }

// --- Notifier and renderer ---

type mockNotifier struct {
	created   int
	changed   []string
	ticketErr error
	tickets   int
}

func (m *mockNotifier) BookingCreated(ctx context.Context, b *models.Booking) { m.created++ }
func (m *mockNotifier) BookingChanged(ctx context.Context, key string, b *models.Booking) {
	m.changed = append(m.changed, key)
}
func (m *mockNotifier) TicketApproved(ctx context.Context, b *models.Booking) error {
	m.tickets++
	return m.ticketErr
}

type mockRenderer struct {
	err error
}

func (m mockRenderer) Render(b *models.Booking) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.3"), nil
}
