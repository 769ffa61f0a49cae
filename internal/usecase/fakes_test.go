package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"ferienpass/internal/data/entity"
	"ferienpass/internal/data/repository"
	"ferienpass/pkg/apperrors"

	"github.com/google/uuid"
)

// fakeStore is a shared in-memory backend for all fake repositories.
// One mutex covers every table so the reservation guard sees the same
// consistency a database transaction would.
type fakeStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*entity.User
	sessions   map[string]*entity.Session
	periods    map[uuid.UUID]*entity.Period
	activities map[uuid.UUID]*entity.Activity
	occasions  map[uuid.UUID]*entity.Occasion
	attendees  map[uuid.UUID]*entity.Attendee
	bookings   map[uuid.UUID]*entity.Booking
	invoices   map[uuid.UUID]*entity.Invoice
	items      map[uuid.UUID]*entity.InvoiceItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uuid.UUID]*entity.User),
		sessions:   make(map[string]*entity.Session),
		periods:    make(map[uuid.UUID]*entity.Period),
		activities: make(map[uuid.UUID]*entity.Activity),
		occasions:  make(map[uuid.UUID]*entity.Occasion),
		attendees:  make(map[uuid.UUID]*entity.Attendee),
		bookings:   make(map[uuid.UUID]*entity.Booking),
		invoices:   make(map[uuid.UUID]*entity.Invoice),
		items:      make(map[uuid.UUID]*entity.InvoiceItem),
	}
}

func newTestRepo() (*repository.Repository, *fakeStore) {
	store := newFakeStore()
	return &repository.Repository{
		User:        &fakeUserRepo{store},
		Session:     &fakeSessionRepo{store},
		Period:      &fakePeriodRepo{store},
		Activity:    &fakeActivityRepo{store},
		Occasion:    &fakeOccasionRepo{store},
		Attendee:    &fakeAttendeeRepo{store},
		Booking:     &fakeBookingRepo{store},
		Invoice:     &fakeInvoiceRepo{store},
		InvoiceItem: &fakeInvoiceItemRepo{store},
	}, store
}

func sortBookings(bookings []*entity.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
		}
		return bookings[i].ID.String() < bookings[j].ID.String()
	})
}

// ---- users ----

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByPeriodWithBookings(_ context.Context, periodID uuid.UUID) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []*entity.User
	for _, b := range r.s.bookings {
		if b.PeriodID == periodID && b.State != entity.BookingStateCancelled && !seen[b.UserID] {
			seen[b.UserID] = true
			if u, ok := r.s.users[b.UserID]; ok {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = user
	return nil
}

// ---- sessions ----

type fakeSessionRepo struct{ s *fakeStore }

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.Token.String()] = session
	return nil
}

func (r *fakeSessionRepo) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[token]
	if !ok || !session.Valid(time.Now()) {
		return nil, nil
	}
	return session, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if session, ok := r.s.sessions[token]; ok {
		now := time.Now()
		session.RevokedAt = &now
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, session := range r.s.sessions {
		if session.UserID == userID {
			session.RevokedAt = &now
		}
	}
	return nil
}

// ---- periods ----

type fakePeriodRepo struct{ s *fakeStore }

func (r *fakePeriodRepo) Create(_ context.Context, period *entity.Period) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.periods[period.ID] = period
	return nil
}

func (r *fakePeriodRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.periods[id], nil
}

func (r *fakePeriodRepo) FindActive(_ context.Context) (*entity.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.periods {
		if p.Active {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePeriodRepo) FindAll(_ context.Context) ([]*entity.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Period, 0, len(r.s.periods))
	for _, p := range r.s.periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePeriodRepo) Update(_ context.Context, period *entity.Period) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.periods[period.ID] = period
	return nil
}

// ---- activities ----

type fakeActivityRepo struct{ s *fakeStore }

func (r *fakeActivityRepo) Create(_ context.Context, activity *entity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.activities[activity.ID] = activity
	return nil
}

func (r *fakeActivityRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.activities[id], nil
}

func (r *fakeActivityRepo) FindTitlesByPeriod(_ context.Context, periodID uuid.UUID) (map[uuid.UUID]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	titles := make(map[uuid.UUID]string)
	for _, o := range r.s.occasions {
		if o.PeriodID != periodID {
			continue
		}
		if a, ok := r.s.activities[o.ActivityID]; ok {
			titles[o.ID] = a.Title
		}
	}
	return titles, nil
}

func (r *fakeActivityRepo) Update(_ context.Context, activity *entity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.activities[activity.ID] = activity
	return nil
}

// ---- occasions ----

type fakeOccasionRepo struct{ s *fakeStore }

func (r *fakeOccasionRepo) Create(_ context.Context, occasion *entity.Occasion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.occasions[occasion.ID] = occasion
	return nil
}

func (r *fakeOccasionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Occasion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.occasions[id], nil
}

func (r *fakeOccasionRepo) FindByPeriodID(_ context.Context, periodID uuid.UUID) ([]*entity.Occasion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Occasion
	for _, o := range r.s.occasions {
		if o.PeriodID == periodID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *fakeOccasionRepo) Update(_ context.Context, occasion *entity.Occasion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.occasions[occasion.ID] = occasion
	return nil
}

func (r *fakeOccasionRepo) SetFlagged(_ context.Context, ids []uuid.UUID, flagged bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if o, ok := r.s.occasions[id]; ok {
			o.Flagged = flagged
		}
	}
	return nil
}

func (r *fakeOccasionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.occasions, id)
	return nil
}

// ---- attendees ----

type fakeAttendeeRepo struct{ s *fakeStore }

func (r *fakeAttendeeRepo) Create(_ context.Context, attendee *entity.Attendee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.attendees[attendee.ID] = attendee
	return nil
}

func (r *fakeAttendeeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Attendee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.attendees[id], nil
}

func (r *fakeAttendeeRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Attendee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Attendee
	for _, a := range r.s.attendees {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *fakeAttendeeRepo) FindByName(_ context.Context, userID uuid.UUID, firstName, lastName string) (*entity.Attendee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attendees {
		if a.UserID == userID && a.FirstName == firstName && a.LastName == lastName {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendeeRepo) FindByPeriodID(_ context.Context, periodID uuid.UUID) ([]*entity.Attendee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []*entity.Attendee
	for _, b := range r.s.bookings {
		if b.PeriodID == periodID && !seen[b.AttendeeID] {
			seen[b.AttendeeID] = true
			if a, ok := r.s.attendees[b.AttendeeID]; ok {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (r *fakeAttendeeRepo) Update(_ context.Context, attendee *entity.Attendee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.attendees[attendee.ID] = attendee
	return nil
}

func (r *fakeAttendeeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.attendees, id)
	return nil
}

// ---- bookings ----

type fakeBookingRepo struct{ s *fakeStore }

func (r *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.bookings[id], nil
}

func (r *fakeBookingRepo) FindByPeriodID(_ context.Context, periodID uuid.UUID) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.PeriodID == periodID && b.State != entity.BookingStateCancelled {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *fakeBookingRepo) FindByUserAndPeriod(_ context.Context, userID, periodID uuid.UUID) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.UserID == userID && b.PeriodID == periodID {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *fakeBookingRepo) FindBlocking(_ context.Context, attendeeID, occasionID uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.findBlockingLocked(attendeeID, occasionID), nil
}

func (r *fakeBookingRepo) findBlockingLocked(attendeeID, occasionID uuid.UUID) *entity.Booking {
	for _, b := range r.s.bookings {
		if b.AttendeeID == attendeeID && b.OccasionID == occasionID && b.BlocksRegistration() {
			return b
		}
	}
	return nil
}

func (r *fakeBookingRepo) CountAcceptedByOccasion(_ context.Context, occasionID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.countAcceptedByOccasionLocked(occasionID), nil
}

func (r *fakeBookingRepo) countAcceptedByOccasionLocked(occasionID uuid.UUID) int {
	count := 0
	for _, b := range r.s.bookings {
		if b.OccasionID == occasionID && b.State == entity.BookingStateAccepted {
			count++
		}
	}
	return count
}

func (r *fakeBookingRepo) countAcceptedByAttendeeLocked(attendeeID, periodID uuid.UUID) int {
	count := 0
	for _, b := range r.s.bookings {
		if b.AttendeeID == attendeeID && b.PeriodID == periodID && b.State == entity.BookingStateAccepted {
			count++
		}
	}
	return count
}

func (r *fakeBookingRepo) CountStarred(_ context.Context, attendeeID, periodID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, b := range r.s.bookings {
		if b.AttendeeID == attendeeID && b.PeriodID == periodID && b.Starred() && b.BlocksRegistration() {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) CountNonCancelledByOccasion(_ context.Context, occasionID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, b := range r.s.bookings {
		if b.OccasionID == occasionID && b.State != entity.BookingStateCancelled {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) Update(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) UpdateState(_ context.Context, bookingID uuid.UUID, state entity.BookingState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bookings[bookingID]; ok {
		b.State = state
		b.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeBookingRepo) UpdateStatesBatch(_ context.Context, ids []uuid.UUID, state entity.BookingState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if b, ok := r.s.bookings[id]; ok {
			b.State = state
		}
	}
	return nil
}

func (r *fakeBookingRepo) DenyOpenByPeriod(_ context.Context, periodID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var denied []uuid.UUID
	for _, b := range r.s.bookings {
		if b.PeriodID == periodID && b.State == entity.BookingStateOpen {
			b.State = entity.BookingStateDenied
			denied = append(denied, b.ID)
		}
	}
	return denied, nil
}

// ReserveAccepted mirrors the transactional guard: duplicate, capacity
// and attendee limit are re-checked under the same lock that inserts
// the row.
func (r *fakeBookingRepo) ReserveAccepted(_ context.Context, booking *entity.Booking, maxSpots, attendeeLimit int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.findBlockingLocked(booking.AttendeeID, booking.OccasionID) != nil {
		return apperrors.DuplicateRegistration(booking.AttendeeID.String(), booking.OccasionID.String())
	}
	if r.countAcceptedByOccasionLocked(booking.OccasionID) >= maxSpots {
		return apperrors.CapacityExceeded(booking.OccasionID.String())
	}
	if attendeeLimit > 0 && r.countAcceptedByAttendeeLocked(booking.AttendeeID, booking.PeriodID) >= attendeeLimit {
		return apperrors.Conflict("attendee booking limit reached")
	}

	r.s.bookings[booking.ID] = booking
	return nil
}

// ---- invoices ----

type fakeInvoiceRepo struct{ s *fakeStore }

func (r *fakeInvoiceRepo) Create(_ context.Context, invoice *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.invoices[invoice.ID] = invoice
	return nil
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.invoices[id], nil
}

func (r *fakeInvoiceRepo) FindByPayerAndPeriod(_ context.Context, userID, periodID uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.UserID == userID && inv.PeriodID == periodID {
			found = append(found, inv)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, apperrors.InvariantViolation("payer has multiple invoices in period")
	}
}

func (r *fakeInvoiceRepo) FindByPeriodID(_ context.Context, periodID uuid.UUID) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.PeriodID == periodID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out, nil
}

func (r *fakeInvoiceRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// ---- invoice items ----

type fakeInvoiceItemRepo struct{ s *fakeStore }

func (r *fakeInvoiceItemRepo) Create(_ context.Context, item *entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[item.ID] = item
	return nil
}

func (r *fakeInvoiceItemRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.InvoiceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.items[id], nil
}

func (r *fakeInvoiceItemRepo) FindByInvoiceID(_ context.Context, invoiceID uuid.UUID) ([]*entity.InvoiceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InvoiceItem
	for _, item := range r.s.items {
		if item.InvoiceID == invoiceID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Text < out[j].Text
	})
	return out, nil
}

func (r *fakeInvoiceItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, id)
	return nil
}

func (r *fakeInvoiceItemRepo) SetPaid(_ context.Context, id uuid.UUID, paid bool, paymentDate *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if item, ok := r.s.items[id]; ok {
		item.Paid = paid
		item.PaymentDate = paymentDate
	}
	return nil
}
