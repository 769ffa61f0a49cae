package usecase

import (
	"time"

	"ferienpass/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixture helpers seed the fake store directly. They run before the
// service under test, so plain map writes are fine.

func seedPeriod(store *fakeStore, phase entity.PeriodPhase) *entity.Period {
	now := time.Now()
	p := &entity.Period{
		Base:            entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Title:           "Sommer 2026",
		Phase:           phase,
		Active:          true,
		Finalizable:     true,
		PrebookingStart: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		PrebookingEnd:   time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		BookingStart:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		BookingEnd:      time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		ExecutionStart:  time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
		ExecutionEnd:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		PassSystem:      entity.PassSystemOpen,
		BookingCost:     decimal.Zero,
	}
	store.periods[p.ID] = p
	return p
}

func seedGuardian(store *fakeStore) *entity.User {
	now := time.Now()
	u := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username: "guardian-" + u8(),
		Email:    "guardian-" + u8() + "@example.com",
		Role:     entity.RoleGuardian,
		IsActive: true,
	}
	store.users[u.ID] = u
	return u
}

// seedAttendee creates a child born in 2016, aged 10 at the fixture
// period's execution start.
func seedAttendee(store *fakeStore, userID uuid.UUID) *entity.Attendee {
	now := time.Now()
	a := &entity.Attendee{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:    userID,
		FirstName: "Kind",
		LastName:  u8(),
		BirthDate: time.Date(2016, 3, 10, 0, 0, 0, 0, time.UTC),
		Gender:    entity.GenderOther,
	}
	store.attendees[a.ID] = a
	return a
}

func seedOccasion(store *fakeStore, period *entity.Period, maxSpots int) *entity.Occasion {
	now := time.Now()
	activity := &entity.Activity{
		Base:  entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Title: "Kanufahren",
	}
	store.activities[activity.ID] = activity

	cost := decimal.RequireFromString("10")
	o := &entity.Occasion{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ActivityID: activity.ID,
		PeriodID:   period.ID,
		Dates: []entity.DateRange{{
			Start: period.ExecutionStart.Add(9 * time.Hour),
			End:   period.ExecutionStart.Add(12 * time.Hour),
		}},
		MinAge:   6,
		MaxAge:   14,
		MaxSpots: maxSpots,
		Cost:     &cost,
	}
	store.occasions[o.ID] = o
	return o
}

func seedBooking(store *fakeStore, period *entity.Period, occasion *entity.Occasion, attendee *entity.Attendee, state entity.BookingState) *entity.Booking {
	now := time.Now()
	b := &entity.Booking{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		AttendeeID: attendee.ID,
		OccasionID: occasion.ID,
		PeriodID:   period.ID,
		UserID:     attendee.UserID,
		State:      state,
		Cost:       decimal.Zero,
	}
	store.bookings[b.ID] = b
	return b
}

func u8() string {
	return uuid.New().String()[:8]
}
