package entity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOccasionAgeOK(t *testing.T) {
	o := &Occasion{MinAge: 6, MaxAge: 12}

	for age, want := range map[int]bool{5: false, 6: true, 9: true, 12: true, 13: false} {
		if got := o.AgeOK(age); got != want {
			t.Errorf("AgeOK(%d) = %v, want %v", age, got, want)
		}
	}
}

func TestOccasionTotalCost(t *testing.T) {
	cost := decimal.RequireFromString("20")
	o := &Occasion{Cost: &cost}

	itemized := &Period{BookingCost: decimal.RequireFromString("5")}
	if got := o.TotalCost(itemized); !got.Equal(decimal.RequireFromString("25")) {
		t.Errorf("itemized total should include the surcharge, got %s", got)
	}

	allInclusive := &Period{AllInclusive: true, BookingCost: decimal.RequireFromString("100")}
	if got := o.TotalCost(allInclusive); !got.Equal(cost) {
		t.Errorf("all-inclusive total must not fold in the pass fee, got %s", got)
	}

	free := &Occasion{}
	if got := free.TotalCost(allInclusive); !got.IsZero() {
		t.Errorf("free occasion should cost zero, got %s", got)
	}
}
