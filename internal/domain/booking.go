package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus tracks a booking through its lifecycle.
type BookingStatus string

const (
	BookingStatusCreated     BookingStatus = "created"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusRescheduled BookingStatus = "rescheduled"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusCompleted   BookingStatus = "completed"
)

// ServiceType is a studio service a client can book (mixing, mastering,
// recording and so on). Which values are bookable is the studio's decision,
// supplied at construction through a ServiceRegistry.
type ServiceType string

// ServiceRegistry is the studio's allow-list of bookable services. The core
// treats it as an opaque predicate.
type ServiceRegistry interface {
	Allows(service ServiceType) bool
}

// ServiceSet is a set-backed ServiceRegistry.
type ServiceSet map[ServiceType]struct{}

func NewServiceSet(services ...ServiceType) ServiceSet {
	s := make(ServiceSet, len(services))
	for _, svc := range services {
		s[svc] = struct{}{}
	}
	return s
}

func (s ServiceSet) Allows(service ServiceType) bool {
	_, ok := s[service]
	return ok
}

const (
	// RescheduleLimit is the maximum number of times a single booking may
	// have its time range changed.
	RescheduleLimit = 2

	// CancellationCutoff is the window before a booking's start during
	// which cancellation is disallowed, regardless of status.
	CancellationCutoff = 24 * time.Hour
)

// Booking schedules a single studio service for a client within a fixed time
// range. It owns its status transitions, a reschedule counter and the
// cancellation cutoff rule. It never reads the wall clock: every transition
// takes the current instant as a parameter. It performs no I/O and never
// publishes the events it returns.
type Booking struct {
	id                 uuid.UUID
	studioID           uuid.UUID
	clientID           uuid.UUID
	assignedEmployeeID uuid.UUID
	serviceType        ServiceType
	timeRange          TimeRange
	status             BookingStatus
	rescheduleCount    int
	projectID          *uuid.UUID
	createdAt          time.Time
	confirmedAt        *time.Time
	cancelledAt        *time.Time
	completedAt        *time.Time
	rescheduledAt      *time.Time
}

// NewBookingParams carries the inputs for a fresh booking.
type NewBookingParams struct {
	ID                 uuid.UUID
	StudioID           uuid.UUID
	ClientID           uuid.UUID
	AssignedEmployeeID uuid.UUID
	ServiceType        ServiceType
	TimeRange          TimeRange
	ProjectID          *uuid.UUID
	CreatedAt          time.Time
}

// NewBooking constructs a booking in CREATED status, validating the service
// type against the studio's allow-list.
func NewBooking(p NewBookingParams, allowed ServiceRegistry) (*Booking, error) {
	if allowed == nil || !allowed.Allows(p.ServiceType) {
		return nil, &UnsupportedServiceError{Service: p.ServiceType}
	}
	return &Booking{
		id:                 p.ID,
		studioID:           p.StudioID,
		clientID:           p.ClientID,
		assignedEmployeeID: p.AssignedEmployeeID,
		serviceType:        p.ServiceType,
		timeRange:          p.TimeRange,
		status:             BookingStatusCreated,
		projectID:          p.ProjectID,
		createdAt:          p.CreatedAt,
	}, nil
}

// BookingSnapshot is the persisted form of a booking, used by the repository
// layer to rehydrate entities that were validated when first created.
type BookingSnapshot struct {
	ID                 uuid.UUID
	StudioID           uuid.UUID
	ClientID           uuid.UUID
	AssignedEmployeeID uuid.UUID
	ServiceType        ServiceType
	TimeRange          TimeRange
	Status             BookingStatus
	RescheduleCount    int
	ProjectID          *uuid.UUID
	CreatedAt          time.Time
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	CompletedAt        *time.Time
	RescheduledAt      *time.Time
}

// RestoreBooking rebuilds a booking from its snapshot without revalidating
// construction rules.
func RestoreBooking(s BookingSnapshot) *Booking {
	return &Booking{
		id:                 s.ID,
		studioID:           s.StudioID,
		clientID:           s.ClientID,
		assignedEmployeeID: s.AssignedEmployeeID,
		serviceType:        s.ServiceType,
		timeRange:          s.TimeRange,
		status:             s.Status,
		rescheduleCount:    s.RescheduleCount,
		projectID:          s.ProjectID,
		createdAt:          s.CreatedAt,
		confirmedAt:        s.ConfirmedAt,
		cancelledAt:        s.CancelledAt,
		completedAt:        s.CompletedAt,
		rescheduledAt:      s.RescheduledAt,
	}
}

// Snapshot returns the persisted form of the booking.
func (b *Booking) Snapshot() BookingSnapshot {
	return BookingSnapshot{
		ID:                 b.id,
		StudioID:           b.studioID,
		ClientID:           b.clientID,
		AssignedEmployeeID: b.assignedEmployeeID,
		ServiceType:        b.serviceType,
		TimeRange:          b.timeRange,
		Status:             b.status,
		RescheduleCount:    b.rescheduleCount,
		ProjectID:          b.projectID,
		CreatedAt:          b.createdAt,
		ConfirmedAt:        b.confirmedAt,
		CancelledAt:        b.cancelledAt,
		CompletedAt:        b.completedAt,
		RescheduledAt:      b.rescheduledAt,
	}
}

func (b *Booking) ID() uuid.UUID                 { return b.id }
func (b *Booking) StudioID() uuid.UUID           { return b.studioID }
func (b *Booking) ClientID() uuid.UUID           { return b.clientID }
func (b *Booking) AssignedEmployeeID() uuid.UUID { return b.assignedEmployeeID }
func (b *Booking) ServiceType() ServiceType      { return b.serviceType }
func (b *Booking) TimeRange() TimeRange          { return b.timeRange }
func (b *Booking) Status() BookingStatus         { return b.status }
func (b *Booking) RescheduleCount() int          { return b.rescheduleCount }
func (b *Booking) ProjectID() *uuid.UUID         { return b.projectID }
func (b *Booking) CreatedAt() time.Time          { return b.createdAt }
func (b *Booking) ConfirmedAt() *time.Time       { return b.confirmedAt }
func (b *Booking) CancelledAt() *time.Time       { return b.cancelledAt }
func (b *Booking) CompletedAt() *time.Time       { return b.completedAt }
func (b *Booking) RescheduledAt() *time.Time     { return b.rescheduledAt }

// IsActive reports whether the booking is in a non-terminal state.
func (b *Booking) IsActive() bool {
	switch b.status {
	case BookingStatusCreated, BookingStatusConfirmed, BookingStatusRescheduled:
		return true
	}
	return false
}

// IsPending reports whether the booking is awaiting confirmation.
func (b *Booking) IsPending() bool {
	return b.status == BookingStatusCreated || b.status == BookingStatusRescheduled
}

// Confirm moves a pending booking to CONFIRMED.
func (b *Booking) Confirm(now time.Time) (Event, error) {
	if !b.IsPending() {
		return nil, &CannotConfirmError{Status: b.status}
	}
	b.status = BookingStatusConfirmed
	b.confirmedAt = &now
	return BookingConfirmed{
		EventMeta: newEventMeta(now),
		BookingID: b.id,
		StudioID:  b.studioID,
		ClientID:  b.clientID,
		Start:     b.timeRange.Start(),
		End:       b.timeRange.End(),
	}, nil
}

// Cancel moves an active booking to CANCELLED. Cancellation is rejected
// inside the cutoff window before the booking starts, whatever the status.
func (b *Booking) Cancel(now time.Time, reason string) (Event, error) {
	if !b.IsActive() {
		return nil, &CannotCancelError{Status: b.status, Reason: "booking is not active"}
	}
	if b.timeRange.Start().Sub(now) <= CancellationCutoff {
		return nil, &CannotCancelError{Status: b.status, Reason: "inside cancellation cutoff"}
	}
	b.status = BookingStatusCancelled
	b.cancelledAt = &now
	return BookingCancelled{
		EventMeta: newEventMeta(now),
		BookingID: b.id,
		StudioID:  b.studioID,
		ClientID:  b.clientID,
		Reason:    reason,
	}, nil
}

// Complete moves a confirmed booking to COMPLETED. The temporal gate (only
// after the range has ended) belongs to the calling scheduler, which may
// legitimately complete a session slightly before its nominal end.
func (b *Booking) Complete(now time.Time) (Event, error) {
	if b.status != BookingStatusConfirmed {
		return nil, &CannotCompleteError{Status: b.status}
	}
	b.status = BookingStatusCompleted
	b.completedAt = &now
	return BookingCompleted{
		EventMeta: newEventMeta(now),
		BookingID: b.id,
		StudioID:  b.studioID,
		ClientID:  b.clientID,
	}, nil
}

// Reschedule moves an active booking to a new range. The booking drops back
// to RESCHEDULED and requires re-confirmation even if it was confirmed. The
// caller is responsible for conflict-checking the new range first; the
// entity has no visibility into other bookings.
func (b *Booking) Reschedule(newRange TimeRange, now time.Time) (Event, error) {
	if !b.IsActive() {
		return nil, &CannotRescheduleError{Status: b.status}
	}
	if b.rescheduleCount >= RescheduleLimit {
		return nil, &RescheduleLimitError{Count: b.rescheduleCount, Limit: RescheduleLimit}
	}
	b.timeRange = newRange
	b.rescheduleCount++
	b.status = BookingStatusRescheduled
	b.rescheduledAt = &now
	return BookingRescheduled{
		EventMeta: newEventMeta(now),
		BookingID: b.id,
		StudioID:  b.studioID,
		ClientID:  b.clientID,
		Start:     newRange.Start(),
		End:       newRange.End(),
	}, nil
}
