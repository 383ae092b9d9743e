package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/parking-service/internal/auth"
	"github.com/Eursukkul/parking-service/internal/dto"
	"github.com/Eursukkul/parking-service/internal/middleware"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/notify"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn       func(ctx context.Context, p auth.Principal, in service.CreateBookingInput) (*models.Booking, error)
	getFn          func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)
	listFn         func(ctx context.Context, p auth.Principal, status models.BookingStatus, page repository.Pagination) ([]models.Booking, int64, error)
	approveFn      func(ctx context.Context, p auth.Principal, id uuid.UUID) (*service.ApprovalResult, error)
	updateStatusFn func(ctx context.Context, p auth.Principal, id uuid.UUID, status models.BookingStatus) (*models.Booking, error)
	cancelFn       func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)
	completeFn     func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)
	payFn          func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)
	ticketFn       func(ctx context.Context, p auth.Principal, id uuid.UUID) ([]byte, error)
}

func (m *mockBookingService) Create(ctx context.Context, p auth.Principal, in service.CreateBookingInput) (*models.Booking, error) {
	return m.createFn(ctx, p, in)
}
func (m *mockBookingService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
	return m.getFn(ctx, p, id)
}
func (m *mockBookingService) List(ctx context.Context, p auth.Principal, status models.BookingStatus, page repository.Pagination) ([]models.Booking, int64, error) {
	return m.listFn(ctx, p, status, page)
}
func (m *mockBookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	return nil, nil
}
func (m *mockBookingService) Approve(ctx context.Context, p auth.Principal, id uuid.UUID) (*service.ApprovalResult, error) {
	return m.approveFn(ctx, p, id)
}
func (m *mockBookingService) UpdateStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status models.BookingStatus) (*models.Booking, error) {
	return m.updateStatusFn(ctx, p, id, status)
}
func (m *mockBookingService) Cancel(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
	return m.cancelFn(ctx, p, id)
}
func (m *mockBookingService) Complete(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
	return m.completeFn(ctx, p, id)
}
func (m *mockBookingService) Pay(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
	return m.payFn(ctx, p, id)
}
func (m *mockBookingService) Ticket(ctx context.Context, p auth.Principal, id uuid.UUID) ([]byte, error) {
	return m.ticketFn(ctx, p, id)
}

// --- Helpers ---

var (
	testUser  = auth.Principal{UserID: uuid.New(), Role: models.RoleUser}
	testAdmin = auth.Principal{UserID: uuid.New(), Role: models.RoleAdmin}
)

// newContext builds an echo context with the validator installed and p
// attached as the authenticated caller.
func newContext(method, target, body string, p *auth.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = middleware.NewRequestValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		middleware.SetPrincipal(c, *p)
	}
	return c, rec
}

func withID(c echo.Context, name string, id uuid.UUID) {
	c.SetParamNames(name)
	c.SetParamValues(id.String())
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, code, he.Code)
}

// --- Tests ---

func TestCreateBooking_Handler_Success(t *testing.T) {
	vehicleID, slotID := uuid.New(), uuid.New()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	svc := &mockBookingService{
		createFn: func(ctx context.Context, p auth.Principal, in service.CreateBookingInput) (*models.Booking, error) {
			assert.Equal(t, testUser.UserID, p.UserID)
			assert.Equal(t, vehicleID, in.VehicleID)
			assert.Equal(t, slotID, in.SlotID)
			assert.True(t, in.StartTime.Equal(start))
			return &models.Booking{
				ID:        uuid.New(),
				UserID:    p.UserID,
				VehicleID: in.VehicleID,
				SlotID:    in.SlotID,
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
				Status:    models.BookingPending,
			}, nil
		},
	}

	body := fmt.Sprintf(`{"vehicleId":%q,"slotId":%q,"startTime":"2026-03-01T10:00:00Z","endTime":"2026-03-01T12:00:00Z"}`, vehicleID, slotID)
	c, rec := newContext(http.MethodPost, "/api/v1/bookings", body, &testUser)

	err := NewBookingHandler(svc).CreateBooking(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.BookingPending, resp.Status)
	assert.Equal(t, slotID, resp.SlotID)
}

func TestCreateBooking_Handler_ValidationFailure(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/api/v1/bookings", `{"vehicleId":"not-a-uuid","slotId":""}`, &testUser)

	err := NewBookingHandler(nil).CreateBooking(c)

	assertHTTPError(t, err, http.StatusBadRequest)
}

func TestCreateBooking_Handler_Unauthenticated(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/api/v1/bookings", `{}`, nil)

	err := NewBookingHandler(nil).CreateBooking(c)

	assertHTTPError(t, err, http.StatusUnauthorized)
}

func TestCreateBooking_Handler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"slot conflict", service.ErrSlotConflict, http.StatusBadRequest},
		{"invalid range", service.ErrInvalidTimeRange, http.StatusBadRequest},
		{"vehicle not owned", service.ErrVehicleNotOwned, http.StatusForbidden},
		{"slot not found", service.ErrSlotNotFound, http.StatusNotFound},
	}

	body := fmt.Sprintf(`{"vehicleId":%q,"slotId":%q,"startTime":"2026-03-01T10:00:00Z","endTime":"2026-03-01T12:00:00Z"}`, uuid.New(), uuid.New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				createFn: func(ctx context.Context, p auth.Principal, in service.CreateBookingInput) (*models.Booking, error) {
					return nil, tt.err
				},
			}
			c, _ := newContext(http.MethodPost, "/api/v1/bookings", body, &testUser)

			err := NewBookingHandler(svc).CreateBooking(c)

			assertHTTPError(t, err, tt.code)
		})
	}
}

func TestCreateBooking_Handler_UnclassifiedErrorPassesThrough(t *testing.T) {
	boom := errors.New("db down")
	svc := &mockBookingService{
		createFn: func(ctx context.Context, p auth.Principal, in service.CreateBookingInput) (*models.Booking, error) {
			return nil, boom
		},
	}
	body := fmt.Sprintf(`{"vehicleId":%q,"slotId":%q,"startTime":"2026-03-01T10:00:00Z","endTime":"2026-03-01T12:00:00Z"}`, uuid.New(), uuid.New())
	c, _ := newContext(http.MethodPost, "/api/v1/bookings", body, &testUser)

	err := NewBookingHandler(svc).CreateBooking(c)

	assert.ErrorIs(t, err, boom)
}

func TestGetBooking_Handler_InvalidID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/v1/bookings/abc", "", &testUser)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := NewBookingHandler(nil).GetBooking(c)

	assertHTTPError(t, err, http.StatusBadRequest)
}

func TestGetBooking_Handler_NotFound(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
			return nil, service.ErrBookingNotFound
		},
	}
	c, _ := newContext(http.MethodGet, "/api/v1/bookings/x", "", &testUser)
	withID(c, "id", uuid.New())

	err := NewBookingHandler(svc).GetBooking(c)

	assertHTTPError(t, err, http.StatusNotFound)
}

func TestListBookings_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		listFn: func(ctx context.Context, p auth.Principal, status models.BookingStatus, page repository.Pagination) ([]models.Booking, int64, error) {
			assert.Equal(t, models.BookingApproved, status)
			assert.Equal(t, 2, page.Page)
			assert.Equal(t, 1, page.Limit)
			return []models.Booking{{ID: uuid.New(), Status: models.BookingApproved}}, 3, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/v1/bookings?status=APPROVED&page=2&limit=1", "", &testUser)

	err := NewBookingHandler(svc).ListBookings(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.Page[models.Booking]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 3, resp.TotalPages)
}

func TestUpdateStatus_Handler(t *testing.T) {
	t.Run("invalid status", func(t *testing.T) {
		c, _ := newContext(http.MethodPut, "/api/v1/bookings/x", `{"status":"PARKED"}`, &testUser)
		withID(c, "id", uuid.New())

		err := NewBookingHandler(nil).UpdateStatus(c)

		assertHTTPError(t, err, http.StatusBadRequest)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		svc := &mockBookingService{
			updateStatusFn: func(ctx context.Context, p auth.Principal, id uuid.UUID, status models.BookingStatus) (*models.Booking, error) {
				return nil, service.ErrForbidden
			},
		}
		c, _ := newContext(http.MethodPut, "/api/v1/bookings/x", `{"status":"CANCELLED"}`, &testUser)
		withID(c, "id", uuid.New())

		err := NewBookingHandler(svc).UpdateStatus(c)

		assertHTTPError(t, err, http.StatusForbidden)
	})

	t.Run("success", func(t *testing.T) {
		id := uuid.New()
		svc := &mockBookingService{
			updateStatusFn: func(ctx context.Context, p auth.Principal, gotID uuid.UUID, status models.BookingStatus) (*models.Booking, error) {
				assert.Equal(t, id, gotID)
				return &models.Booking{ID: gotID, Status: status}, nil
			},
		}
		c, rec := newContext(http.MethodPut, "/api/v1/bookings/x", `{"status":"CANCELLED"}`, &testUser)
		withID(c, "id", id)

		err := NewBookingHandler(svc).UpdateStatus(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"CANCELLED"`)
	})
}

func TestTransitions_Handler(t *testing.T) {
	done := func(status models.BookingStatus) func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
		return func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
			return &models.Booking{ID: id, Status: status}, nil
		}
	}
	svc := &mockBookingService{
		cancelFn:   done(models.BookingCancelled),
		completeFn: done(models.BookingCompleted),
		payFn: func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
			return nil, service.ErrBookingNotApproved
		},
	}
	h := NewBookingHandler(svc)

	c, rec := newContext(http.MethodPost, "/api/v1/bookings/x/cancel", "", &testUser)
	withID(c, "id", uuid.New())
	require.NoError(t, h.CancelBooking(c))
	assert.Contains(t, rec.Body.String(), `"status":"CANCELLED"`)

	c, rec = newContext(http.MethodPost, "/api/v1/bookings/x/complete", "", &testUser)
	withID(c, "id", uuid.New())
	require.NoError(t, h.CompleteBooking(c))
	assert.Contains(t, rec.Body.String(), `"status":"COMPLETED"`)

	c, _ = newContext(http.MethodPost, "/api/v1/bookings/x/pay", "", &testUser)
	withID(c, "id", uuid.New())
	assertHTTPError(t, h.PayBooking(c), http.StatusBadRequest)
}

func TestApproveBooking_Handler(t *testing.T) {
	tests := []struct {
		name      string
		ticketErr error
		code      int
		message   string
	}{
		{"ticket sent", nil, http.StatusOK, msgApproved},
		{"pdf failed", fmt.Errorf("%w: font missing", notify.ErrTicketRender), http.StatusInternalServerError, msgApprovedNoPDF},
		{"email failed", fmt.Errorf("%w: dial tcp", notify.ErrMailDelivery), http.StatusInternalServerError, msgApprovedNoEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			svc := &mockBookingService{
				approveFn: func(ctx context.Context, p auth.Principal, gotID uuid.UUID) (*service.ApprovalResult, error) {
					return &service.ApprovalResult{
						Booking:   &models.Booking{ID: gotID, Status: models.BookingApproved},
						TicketErr: tt.ticketErr,
					}, nil
				},
			}
			c, rec := newContext(http.MethodPost, "/api/v1/bookings/x/approve", "", &testAdmin)
			withID(c, "id", id)

			err := NewBookingHandler(svc).ApproveBooking(c)

			require.NoError(t, err)
			assert.Equal(t, tt.code, rec.Code)

			var resp dto.BookingMessageResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Message)
			require.NotNil(t, resp.Booking)
			assert.Equal(t, models.BookingApproved, resp.Booking.Status)
		})
	}
}

func TestApproveBooking_Handler_NotPending(t *testing.T) {
	svc := &mockBookingService{
		approveFn: func(ctx context.Context, p auth.Principal, id uuid.UUID) (*service.ApprovalResult, error) {
			return nil, service.ErrBookingNotPending
		},
	}
	c, _ := newContext(http.MethodPost, "/api/v1/bookings/x/approve", "", &testAdmin)
	withID(c, "id", uuid.New())

	err := NewBookingHandler(svc).ApproveBooking(c)

	assertHTTPError(t, err, http.StatusBadRequest)
}

func TestDownloadTicket_Handler(t *testing.T) {
	id := uuid.New()
	svc := &mockBookingService{
		ticketFn: func(ctx context.Context, p auth.Principal, gotID uuid.UUID) ([]byte, error) {
			return []byte("%PDF-1.3 fake"), nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/v1/bookings/x/pdf", "", &testUser)
	withID(c, "id", id)

	err := NewBookingHandler(svc).DownloadTicket(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "attachment; filename=ticket-"+id.String()+".pdf", rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "%PDF-1.3 fake", rec.Body.String())
}
