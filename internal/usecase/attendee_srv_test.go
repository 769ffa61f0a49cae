package usecase

import (
	"context"
	"testing"

	"ferienpass/internal/dto/request"
	"ferienpass/pkg/apperrors"

	"go.uber.org/zap"
)

func newAttendeeFixture(t *testing.T) (AttendeeService, *fakeStore) {
	t.Helper()
	repo, store := newTestRepo()
	return NewAttendeeService(repo, zap.NewNop()), store
}

func TestCreateAttendeeRejectsDuplicateName(t *testing.T) {
	svc, store := newAttendeeFixture(t)
	guardian := seedGuardian(store)

	req := &request.CreateAttendeeRequest{
		FirstName: "Mila",
		LastName:  "Schmidt",
		BirthDate: "2016-03-10",
	}
	if _, err := svc.CreateAttendee(context.Background(), guardian.ID.String(), req); err != nil {
		t.Fatalf("CreateAttendee failed: %v", err)
	}

	_, err := svc.CreateAttendee(context.Background(), guardian.ID.String(), req)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict for duplicate name, got %v", err)
	}

	// The same name under a different guardian is fine.
	other := seedGuardian(store)
	if _, err := svc.CreateAttendee(context.Background(), other.ID.String(), req); err != nil {
		t.Errorf("name uniqueness is per guardian, got %v", err)
	}
}

func TestCreateAttendeeRejectsFutureBirthDate(t *testing.T) {
	svc, store := newAttendeeFixture(t)
	guardian := seedGuardian(store)

	_, err := svc.CreateAttendee(context.Background(), guardian.ID.String(), &request.CreateAttendeeRequest{
		FirstName: "Mila",
		LastName:  "Schmidt",
		BirthDate: "2099-01-01",
	})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error for future birth date, got %v", err)
	}
}

func TestAttendeeOwnershipEnforced(t *testing.T) {
	svc, store := newAttendeeFixture(t)
	guardian := seedGuardian(store)
	child := seedAttendee(store, guardian.ID)
	stranger := seedGuardian(store)

	_, err := svc.GetAttendee(context.Background(), stranger.ID.String(), child.ID.String())
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden reading a foreign attendee, got %v", err)
	}

	name := "Max"
	_, err = svc.UpdateAttendee(context.Background(), stranger.ID.String(), child.ID.String(), &request.UpdateAttendeeRequest{
		FirstName: &name,
	})
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden updating a foreign attendee, got %v", err)
	}

	err = svc.DeleteAttendee(context.Background(), stranger.ID.String(), child.ID.String())
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden deleting a foreign attendee, got %v", err)
	}

	if _, err := svc.GetAttendee(context.Background(), guardian.ID.String(), child.ID.String()); err != nil {
		t.Errorf("owner should read their attendee, got %v", err)
	}
}

func TestUpdateAttendeeRenameChecksCollision(t *testing.T) {
	svc, store := newAttendeeFixture(t)
	guardian := seedGuardian(store)
	first := seedAttendee(store, guardian.ID)
	second := seedAttendee(store, guardian.ID)

	_, err := svc.UpdateAttendee(context.Background(), guardian.ID.String(), second.ID.String(), &request.UpdateAttendeeRequest{
		FirstName: &first.FirstName,
		LastName:  &first.LastName,
	})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict renaming onto a sibling, got %v", err)
	}

	// Renaming to an unused name goes through.
	name := "Jonas"
	resp, err := svc.UpdateAttendee(context.Background(), guardian.ID.String(), second.ID.String(), &request.UpdateAttendeeRequest{
		FirstName: &name,
	})
	if err != nil {
		t.Fatalf("UpdateAttendee failed: %v", err)
	}
	if resp.FirstName != "Jonas" {
		t.Errorf("expected renamed attendee, got %s", resp.FirstName)
	}
}

func TestDeleteAttendeeRemovesRecord(t *testing.T) {
	svc, store := newAttendeeFixture(t)
	guardian := seedGuardian(store)
	child := seedAttendee(store, guardian.ID)

	if err := svc.DeleteAttendee(context.Background(), guardian.ID.String(), child.ID.String()); err != nil {
		t.Fatalf("DeleteAttendee failed: %v", err)
	}
	if _, ok := store.attendees[child.ID]; ok {
		t.Error("attendee should be gone from the store")
	}
}
