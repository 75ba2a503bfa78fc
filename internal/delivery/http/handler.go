package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soundlane/studio-booking-backend/internal/domain"
	"github.com/soundlane/studio-booking-backend/internal/repository"
	"github.com/soundlane/studio-booking-backend/internal/service"
)

// Handler handles HTTP requests for the application.
type Handler struct {
	bookingSvc *service.BookingService
}

func NewHandler(bookingSvc *service.BookingService) *Handler {
	return &Handler{
		bookingSvc: bookingSvc,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/bookings", h.handleCreateBooking)
	mux.HandleFunc("GET /api/bookings", h.handleListBookings)
	mux.HandleFunc("GET /api/bookings/{id}", h.handleGetBooking)
	mux.HandleFunc("POST /api/bookings/{id}/confirm", h.handleConfirm)
	mux.HandleFunc("POST /api/bookings/{id}/cancel", h.handleCancel)
	mux.HandleFunc("POST /api/bookings/{id}/complete", h.handleComplete)
	mux.HandleFunc("POST /api/bookings/{id}/reschedule", h.handleReschedule)
	mux.HandleFunc("POST /api/bookings/{id}/payment/pay", h.handlePay)
	mux.HandleFunc("POST /api/bookings/{id}/payment/fail", h.handleFail)
}

type CreateBookingRequest struct {
	StudioID           uuid.UUID            `json:"studio_id"`
	ClientID           uuid.UUID            `json:"client_id"`
	AssignedEmployeeID uuid.UUID            `json:"assigned_employee_id"`
	ServiceType        domain.ServiceType   `json:"service_type"`
	Start              time.Time            `json:"start"`
	End                time.Time            `json:"end"`
	ProjectID          *uuid.UUID           `json:"project_id,omitempty"`
	Amount             decimal.Decimal      `json:"amount"`
	Currency           domain.Currency      `json:"currency"`
	PaymentMethod      domain.PaymentMethod `json:"payment_method"`
}

type orderResponse struct {
	OrderID         uuid.UUID            `json:"order_id"`
	BookingID       uuid.UUID            `json:"booking_id"`
	PaymentID       uuid.UUID            `json:"payment_id"`
	BookingStatus   domain.BookingStatus `json:"booking_status"`
	PaymentStatus   domain.PaymentStatus `json:"payment_status"`
	ServiceType     domain.ServiceType   `json:"service_type"`
	Start           time.Time            `json:"start"`
	End             time.Time            `json:"end"`
	RescheduleCount int                  `json:"reschedule_count"`
	Amount          decimal.Decimal      `json:"amount"`
	Currency        domain.Currency      `json:"currency"`
}

func toOrderResponse(order *domain.BookingOrder) orderResponse {
	booking := order.Booking()
	payment := order.Payment()
	return orderResponse{
		OrderID:         order.ID(),
		BookingID:       booking.ID(),
		PaymentID:       payment.ID(),
		BookingStatus:   booking.Status(),
		PaymentStatus:   payment.Status(),
		ServiceType:     booking.ServiceType(),
		Start:           booking.TimeRange().Start(),
		End:             booking.TimeRange().End(),
		RescheduleCount: booking.RescheduleCount(),
		Amount:          payment.Amount(),
		Currency:        payment.Currency(),
	}
}

func (h *Handler) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.bookingSvc.CreateBooking(r.Context(), service.CreateBookingRequest{
		StudioID:           req.StudioID,
		ClientID:           req.ClientID,
		AssignedEmployeeID: req.AssignedEmployeeID,
		ServiceType:        req.ServiceType,
		Start:              req.Start,
		End:                req.End,
		ProjectID:          req.ProjectID,
		Amount:             req.Amount,
		Currency:           req.Currency,
		PaymentMethod:      req.PaymentMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) handleListBookings(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.bookingSvc.RecentOrders(r.Context(), 50)
	if err != nil {
		slog.Error("Failed to list bookings", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.bookingSvc.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookingSvc.Confirm)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	if r.Body != nil {
		// A missing body means an unstated reason, not a bad request.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if err := h.bookingSvc.CancelWithRefund(r.Context(), orderID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookingSvc.Complete)
}

type rescheduleRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (h *Handler) handleReschedule(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.bookingSvc.Reschedule(r.Context(), orderID, req.Start, req.End); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rescheduled"})
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookingSvc.MarkPaid)
}

func (h *Handler) handleFail(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookingSvc.MarkFailed)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) error) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), orderID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain failures to HTTP statuses: construction problems
// are the client's fault, guard violations are conflicts with current state.
func writeError(w http.ResponseWriter, err error) {
	var (
		invalidRange  *domain.InvalidRangeError
		unsupported   *domain.UnsupportedServiceError
		invalidAmount *domain.InvalidAmountError

		cannotConfirm    *domain.CannotConfirmError
		cannotCancel     *domain.CannotCancelError
		cannotComplete   *domain.CannotCompleteError
		cannotReschedule *domain.CannotRescheduleError
		rescheduleLimit  *domain.RescheduleLimitError
		alreadyPaid      *domain.AlreadyPaidError
		cannotFail       *domain.CannotFailError
		cannotRefund     *domain.CannotRefundError
	)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "booking order not found", http.StatusNotFound)
	case errors.Is(err, service.ErrScheduleConflict),
		errors.Is(err, repository.ErrVersionConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrMissingTimezone),
		errors.As(err, &invalidRange),
		errors.As(err, &unsupported),
		errors.As(err, &invalidAmount):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &cannotConfirm),
		errors.As(err, &cannotCancel),
		errors.As(err, &cannotComplete),
		errors.As(err, &cannotReschedule),
		errors.As(err, &rescheduleLimit),
		errors.As(err, &alreadyPaid),
		errors.As(err, &cannotFail),
		errors.As(err, &cannotRefund),
		errors.Is(err, domain.ErrRefundBeforePayment):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("Unhandled error", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// EnableCORS is a middleware to allow the web frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
