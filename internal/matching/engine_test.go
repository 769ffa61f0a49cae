package matching

import (
	"testing"
	"time"

	"ferienpass/internal/data/entity"

	"github.com/google/uuid"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testPeriod() *entity.Period {
	return &entity.Period{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: baseTime},
		Phase:      entity.PhaseWishlist,
		PassSystem: entity.PassSystemOpen,
	}
}

func fixedPeriod(limit int) *entity.Period {
	p := testPeriod()
	p.PassSystem = entity.PassSystemFixed
	p.FixedSystemLimit = &limit
	return p
}

func testOccasion(periodID uuid.UUID, maxSpots int, created time.Time) *entity.Occasion {
	return &entity.Occasion{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: created},
		PeriodID: periodID,
		MinAge:   6,
		MaxAge:   14,
		MaxSpots: maxSpots,
	}
}

func openBooking(occasion *entity.Occasion, attendeeID uuid.UUID, created time.Time) *entity.Booking {
	return &entity.Booking{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: created},
		AttendeeID: attendeeID,
		OccasionID: occasion.ID,
		PeriodID:   occasion.PeriodID,
		State:      entity.BookingStateOpen,
	}
}

func agesFor(age int, bookings ...*entity.Booking) map[uuid.UUID]int {
	ages := make(map[uuid.UUID]int)
	for _, b := range bookings {
		ages[b.AttendeeID] = age
	}
	return ages
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func TestRunRespectsCapacity(t *testing.T) {
	period := testPeriod()
	occasion := testOccasion(period.ID, 2, baseTime)

	b1 := openBooking(occasion, uuid.New(), baseTime)
	b2 := openBooking(occasion, uuid.New(), baseTime.Add(time.Minute))
	b3 := openBooking(occasion, uuid.New(), baseTime.Add(2*time.Minute))
	bookings := []*entity.Booking{b1, b2, b3}

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasion},
		Bookings:  bookings,
		Ages:      agesFor(10, bookings...),
	})

	if len(result.Accepted) != 2 {
		t.Fatalf("expected 2 accepted, got %d", len(result.Accepted))
	}
	if len(result.Denied) != 1 {
		t.Fatalf("expected 1 denied, got %d", len(result.Denied))
	}
	if !containsID(result.Denied, b3.ID) {
		t.Error("the last-created booking should lose the spot race")
	}
}

func TestRunPriorityBeatsCreationOrder(t *testing.T) {
	period := testPeriod()
	occasion := testOccasion(period.ID, 1, baseTime)

	early := openBooking(occasion, uuid.New(), baseTime)
	starred := openBooking(occasion, uuid.New(), baseTime.Add(time.Hour))
	starred.Priority = 1
	bookings := []*entity.Booking{early, starred}

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasion},
		Bookings:  bookings,
		Ages:      agesFor(10, bookings...),
	})

	if !containsID(result.Accepted, starred.ID) {
		t.Error("starred booking should win the only spot")
	}
	if !containsID(result.Denied, early.ID) {
		t.Error("unstarred booking should be denied")
	}
}

func TestRunPrefersAttendeesWithFewerAcceptances(t *testing.T) {
	period := testPeriod()
	occasionA := testOccasion(period.ID, 1, baseTime)
	occasionB := testOccasion(period.ID, 1, baseTime.Add(time.Minute))

	lucky := uuid.New()
	unlucky := uuid.New()

	// lucky books occasion A alone, then both race for B's single spot.
	a1 := openBooking(occasionA, lucky, baseTime)
	b1 := openBooking(occasionB, lucky, baseTime)
	b2 := openBooking(occasionB, unlucky, baseTime.Add(time.Hour))
	bookings := []*entity.Booking{a1, b1, b2}

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasionA, occasionB},
		Bookings:  bookings,
		Ages:      agesFor(10, bookings...),
	})

	if !containsID(result.Accepted, a1.ID) {
		t.Error("uncontested booking should be accepted")
	}
	if !containsID(result.Accepted, b2.ID) {
		t.Error("attendee without an acceptance should win over one who already has a spot")
	}
	if !containsID(result.Denied, b1.ID) {
		t.Error("second acceptance should lose to a first acceptance")
	}
}

func TestRunFixedSystemLimitCapsAcceptances(t *testing.T) {
	period := fixedPeriod(1)
	occasionA := testOccasion(period.ID, 5, baseTime)
	occasionB := testOccasion(period.ID, 5, baseTime.Add(time.Minute))

	attendee := uuid.New()
	a := openBooking(occasionA, attendee, baseTime)
	b := openBooking(occasionB, attendee, baseTime)
	bookings := []*entity.Booking{a, b}

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasionA, occasionB},
		Bookings:  bookings,
		Ages:      agesFor(10, bookings...),
	})

	if len(result.Accepted) != 1 {
		t.Fatalf("expected exactly 1 acceptance under limit 1, got %d", len(result.Accepted))
	}
	if !containsID(result.Accepted, a.ID) || !containsID(result.Denied, b.ID) {
		t.Error("the earlier-processed occasion should hold the single allowed acceptance")
	}
}

func TestRunGroupCodePullsGroupTogether(t *testing.T) {
	period := testPeriod()
	occasion := testOccasion(period.ID, 2, baseTime)

	code := "team-red"
	leader := openBooking(occasion, uuid.New(), baseTime)
	leader.Priority = 1
	leader.GroupCode = &code

	between := openBooking(occasion, uuid.New(), baseTime.Add(time.Minute))
	between.Priority = 1

	follower := openBooking(occasion, uuid.New(), baseTime.Add(2*time.Hour))
	follower.GroupCode = &code

	bookings := []*entity.Booking{leader, between, follower}

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasion},
		Bookings:  bookings,
		Ages:      agesFor(10, bookings...),
	})

	if !containsID(result.Accepted, leader.ID) || !containsID(result.Accepted, follower.ID) {
		t.Error("group members should be placed together at the leader's rank")
	}
	if !containsID(result.Denied, between.ID) {
		t.Error("booking ranked between group members should be displaced")
	}
}

func TestRunAgeMismatchDeniesWithoutConsumingSpot(t *testing.T) {
	period := testPeriod()
	occasion := testOccasion(period.ID, 1, baseTime)

	tooYoung := openBooking(occasion, uuid.New(), baseTime)
	tooYoung.Priority = 1
	fitting := openBooking(occasion, uuid.New(), baseTime.Add(time.Minute))

	ages := map[uuid.UUID]int{
		tooYoung.AttendeeID: 4,
		fitting.AttendeeID:  10,
	}

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasion},
		Bookings:  []*entity.Booking{tooYoung, fitting},
		Ages:      ages,
	})

	if !containsID(result.Denied, tooYoung.ID) {
		t.Error("attendee outside the age range should be denied")
	}
	if !containsID(result.Accepted, fitting.ID) {
		t.Error("the freed spot should go to the next candidate")
	}
}

func TestRunIgnoreAgeOverridesRange(t *testing.T) {
	period := testPeriod()
	occasion := testOccasion(period.ID, 1, baseTime)

	b := openBooking(occasion, uuid.New(), baseTime)
	b.IgnoreAge = true

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasion},
		Bookings:  []*entity.Booking{b},
		Ages:      map[uuid.UUID]int{b.AttendeeID: 4},
	})

	if !containsID(result.Accepted, b.ID) {
		t.Error("ignore_age booking should bypass the range check")
	}
}

func TestRunDeniesAllOnCancelledOccasion(t *testing.T) {
	period := testPeriod()
	occasion := testOccasion(period.ID, 5, baseTime)
	occasion.Cancelled = true

	b1 := openBooking(occasion, uuid.New(), baseTime)
	b2 := openBooking(occasion, uuid.New(), baseTime)

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasion},
		Bookings:  []*entity.Booking{b1, b2},
		Ages:      agesFor(10, b1, b2),
	})

	if len(result.Accepted) != 0 {
		t.Fatalf("cancelled occasion must not accept, got %d acceptances", len(result.Accepted))
	}
	if len(result.Denied) != 2 {
		t.Fatalf("expected 2 denials, got %d", len(result.Denied))
	}
	if containsID(result.FlaggedOccasions, occasion.ID) {
		t.Error("cancelled occasions are not flagged for undersubscription")
	}
}

func TestRunFlagsUndersubscribedOccasions(t *testing.T) {
	period := testPeriod()
	occasion := testOccasion(period.ID, 10, baseTime)
	occasion.MinSpots = 3

	b := openBooking(occasion, uuid.New(), baseTime)

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasion},
		Bookings:  []*entity.Booking{b},
		Ages:      agesFor(10, b),
	})

	if !containsID(result.Accepted, b.ID) {
		t.Fatal("the single candidate should still be accepted")
	}
	if !containsID(result.FlaggedOccasions, occasion.ID) {
		t.Error("occasion below min_spots should be flagged")
	}
}

func TestRunCountsExistingAcceptances(t *testing.T) {
	period := testPeriod()
	occasion := testOccasion(period.ID, 2, baseTime)

	taken := openBooking(occasion, uuid.New(), baseTime)
	taken.State = entity.BookingStateAccepted
	b1 := openBooking(occasion, uuid.New(), baseTime.Add(time.Minute))
	b2 := openBooking(occasion, uuid.New(), baseTime.Add(2*time.Minute))
	bookings := []*entity.Booking{taken, b1, b2}

	result := Run(Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasion},
		Bookings:  bookings,
		Ages:      agesFor(10, bookings...),
	})

	if len(result.Accepted) != 1 {
		t.Fatalf("only one spot is left, got %d acceptances", len(result.Accepted))
	}
	if !containsID(result.Accepted, b1.ID) || !containsID(result.Denied, b2.ID) {
		t.Error("remaining spot should go to the earlier open booking")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	period := fixedPeriod(2)
	occasionA := testOccasion(period.ID, 2, baseTime)
	occasionB := testOccasion(period.ID, 1, baseTime.Add(time.Minute))

	var bookings []*entity.Booking
	for i := 0; i < 4; i++ {
		bookings = append(bookings,
			openBooking(occasionA, uuid.New(), baseTime.Add(time.Duration(i)*time.Minute)))
	}
	bookings = append(bookings, openBooking(occasionB, bookings[0].AttendeeID, baseTime))

	in := Input{
		Period:    period,
		Occasions: []*entity.Occasion{occasionA, occasionB},
		Bookings:  bookings,
		Ages:      agesFor(10, bookings...),
	}

	first := Run(in)
	second := Run(in)

	if len(first.Accepted) != len(second.Accepted) || len(first.Denied) != len(second.Denied) {
		t.Fatal("re-running on the same snapshot must produce the same outcome")
	}
	for i := range first.Accepted {
		if first.Accepted[i] != second.Accepted[i] {
			t.Fatal("acceptance order must be stable across runs")
		}
	}
}
