package entity

import "testing"

func TestBookingCanTransition(t *testing.T) {
	cases := []struct {
		from BookingState
		to   BookingState
		want bool
	}{
		{BookingStateOpen, BookingStateAccepted, true},
		{BookingStateOpen, BookingStateDenied, true},
		{BookingStateOpen, BookingStateCancelled, true},
		{BookingStateOpen, BookingStateBlocked, false},
		{BookingStateAccepted, BookingStateCancelled, true},
		{BookingStateAccepted, BookingStateBlocked, true},
		{BookingStateAccepted, BookingStateDenied, false},
		{BookingStateBlocked, BookingStateAccepted, true},
		{BookingStateBlocked, BookingStateCancelled, false},
		{BookingStateDenied, BookingStateAccepted, false},
		{BookingStateCancelled, BookingStateOpen, false},
	}

	for _, tc := range cases {
		b := &Booking{State: tc.from}
		if got := b.CanTransition(tc.to); got != tc.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestBookingBlocksRegistration(t *testing.T) {
	blocking := []BookingState{BookingStateOpen, BookingStateAccepted}
	for _, state := range blocking {
		if !(&Booking{State: state}).BlocksRegistration() {
			t.Errorf("state %s should block a second registration", state)
		}
	}

	free := []BookingState{BookingStateDenied, BookingStateCancelled, BookingStateBlocked}
	for _, state := range free {
		if (&Booking{State: state}).BlocksRegistration() {
			t.Errorf("state %s should allow re-registration", state)
		}
	}
}
