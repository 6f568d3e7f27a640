// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/pawmart/go-backend/internal/auth"
	"github.com/pawmart/go-backend/internal/core"
)

type recordingRepo struct {
	Repository

	updatedPhone *string
}

func (r *recordingRepo) UpdateProfile(
	_ context.Context,
	_ string,
	_, _, phone, _ *string,
) error {
	r.updatedPhone = phone
	return nil
}

type recordingProfiles struct {
	ProfileRepository

	syncedPhone *string
	noRow       bool
	calls       int
}

func (p *recordingProfiles) UpdateProfileFields(
	_ context.Context,
	_ string,
	phone, _ *string,
) error {
	p.calls++
	if p.noRow {
		return fmt.Errorf("update customer profile: %w", core.ErrNotFound)
	}
	p.syncedPhone = phone
	return nil
}

func newSyncTestService(
	repo *recordingRepo,
	profiles *recordingProfiles,
) *Service {
	return NewService(repo, profiles, slog.New(slog.DiscardHandler))
}

func TestUpdateProfile_SyncsPhoneToCustomerProfile(t *testing.T) {
	repo := &recordingRepo{}
	profiles := &recordingProfiles{}
	svc := newSyncTestService(repo, profiles)

	phone := "555-0100"
	err := svc.UpdateProfile(context.Background(), "user-1", auth.ProfileUpdate{
		Phone: &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if repo.updatedPhone == nil || *repo.updatedPhone != phone {
		t.Fatal("user row must receive the new phone")
	}
	if profiles.syncedPhone == nil || *profiles.syncedPhone != phone {
		t.Fatal("customer profile must receive the new phone")
	}
}

func TestUpdateProfile_NoPhoneNoSync(t *testing.T) {
	repo := &recordingRepo{}
	profiles := &recordingProfiles{}
	svc := newSyncTestService(repo, profiles)

	name := "Dana"
	err := svc.UpdateProfile(context.Background(), "user-1", auth.ProfileUpdate{
		FirstName: &name,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if profiles.calls != 0 {
		t.Fatal("profile sync must only run when the phone changes")
	}
}

func TestUpdateProfile_MissingProfileRowIsNotAnError(t *testing.T) {
	repo := &recordingRepo{}
	profiles := &recordingProfiles{noRow: true}
	svc := newSyncTestService(repo, profiles)

	phone := "555-0100"
	err := svc.UpdateProfile(context.Background(), "admin-1", auth.ProfileUpdate{
		Phone: &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile must swallow the missing profile row: %v", err)
	}
}
