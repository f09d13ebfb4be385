package bookings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/caterkita/caterkita-backend/internal/memberships"
	"github.com/caterkita/caterkita-backend/pkg/db/models"
	"github.com/caterkita/caterkita-backend/pkg/enums"
	pkgerrors "github.com/caterkita/caterkita-backend/pkg/errors"
	"github.com/caterkita/caterkita-backend/pkg/pagination"
)

type stubBookingRepo struct {
	byID       map[uuid.UUID]*models.Booking
	listParams *listBookingsParams
	listRows   []models.Booking
	created    *models.Booking
	updated    *models.Booking
	statusRows int64
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{byID: map[uuid.UUID]*models.Booking{}, statusRows: 1}
}

func (s *stubBookingRepo) List(ctx context.Context, params listBookingsParams) ([]models.Booking, *pagination.Cursor, error) {
	s.listParams = &params
	return s.listRows, nil, nil
}

func (s *stubBookingRepo) FindByID(ctx context.Context, providerID, id uuid.UUID) (*models.Booking, error) {
	if b, ok := s.byID[id]; ok && b.ProviderID == providerID {
		copied := *b
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = uuid.New()
	s.created = booking
	return nil
}

func (s *stubBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	s.updated = booking
	return nil
}

func (s *stubBookingRepo) UpdateStatus(ctx context.Context, providerID, id uuid.UUID, from, to enums.BookingStatus) (int64, error) {
	return s.statusRows, nil
}

func newBookingService(t *testing.T, repo bookingRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func member(providerID uuid.UUID, role enums.MemberRole, teamID *uuid.UUID) *memberships.Membership {
	return &memberships.Membership{
		ProviderID:   providerID,
		UserID:       uuid.New(),
		Role:         role,
		Status:       enums.MembershipStatusActive,
		TeamID:       teamID,
		Capabilities: memberships.DeriveCapabilities(role),
	}
}

func TestListStaffWithoutTeamEmpty(t *testing.T) {
	repo := newStubBookingRepo()
	repo.listRows = []models.Booking{{ID: uuid.New()}}
	svc := newBookingService(t, repo)
	staff := member(uuid.New(), enums.MemberRoleStaff, nil)

	result, err := svc.List(context.Background(), staff, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("staff without a team must see nothing, got %d", len(result.Items))
	}
	if repo.listParams != nil {
		t.Fatal("the repository must not be queried")
	}
}

func TestListStaffWithTeamFiltered(t *testing.T) {
	repo := newStubBookingRepo()
	svc := newBookingService(t, repo)
	teamID := uuid.New()
	staff := member(uuid.New(), enums.MemberRoleStaff, &teamID)

	if _, err := svc.List(context.Background(), staff, ListParams{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listParams == nil || repo.listParams.TeamID == nil || *repo.listParams.TeamID != teamID {
		t.Fatalf("expected a team filter, got %+v", repo.listParams)
	}
}

func TestListAdminUnfiltered(t *testing.T) {
	repo := newStubBookingRepo()
	svc := newBookingService(t, repo)
	admin := member(uuid.New(), enums.MemberRoleAdmin, nil)

	if _, err := svc.List(context.Background(), admin, ListParams{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listParams == nil || repo.listParams.TeamID != nil {
		t.Fatalf("admins see all bookings, got %+v", repo.listParams)
	}
}

func TestCreateBookingComputesTotal(t *testing.T) {
	repo := newStubBookingRepo()
	svc := newBookingService(t, repo)
	admin := member(uuid.New(), enums.MemberRoleAdmin, nil)

	dto, err := svc.Create(context.Background(), admin, CreateBookingInput{
		CustomerName: "  Liza Cruz ",
		Headcount:    150,
		PricePerHead: decimal.RequireFromString("450.50"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.CustomerName != "Liza Cruz" {
		t.Fatalf("name not trimmed: %q", dto.CustomerName)
	}
	if dto.Status != enums.BookingStatusPending {
		t.Fatalf("new bookings start pending, got %s", dto.Status)
	}
	want := decimal.RequireFromString("67575")
	if !dto.QuoteTotal.Equal(want) {
		t.Fatalf("quote total %s, want %s", dto.QuoteTotal, want)
	}
}

func TestCreateBookingNegativePriceRejected(t *testing.T) {
	repo := newStubBookingRepo()
	svc := newBookingService(t, repo)
	admin := member(uuid.New(), enums.MemberRoleAdmin, nil)

	_, err := svc.Create(context.Background(), admin, CreateBookingInput{
		CustomerName: "Liza",
		PricePerHead: decimal.RequireFromString("-1"),
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateBookingForbiddenForStaff(t *testing.T) {
	repo := newStubBookingRepo()
	svc := newBookingService(t, repo)
	staff := member(uuid.New(), enums.MemberRoleStaff, nil)

	_, err := svc.Create(context.Background(), staff, CreateBookingInput{CustomerName: "Liza"})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateRecomputesTotal(t *testing.T) {
	repo := newStubBookingRepo()
	svc := newBookingService(t, repo)
	providerID := uuid.New()
	admin := member(providerID, enums.MemberRoleAdmin, nil)
	booking := &models.Booking{
		ID:           uuid.New(),
		ProviderID:   providerID,
		CustomerName: "Liza",
		Headcount:    100,
		PricePerHead: decimal.RequireFromString("300"),
		QuoteTotal:   decimal.RequireFromString("30000"),
		Status:       enums.BookingStatusPending,
	}
	repo.byID[booking.ID] = booking

	newHeadcount := 120
	dto, err := svc.Update(context.Background(), admin, booking.ID, UpdateBookingInput{Headcount: &newHeadcount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := decimal.RequireFromString("36000")
	if !dto.QuoteTotal.Equal(want) {
		t.Fatalf("quote total %s, want %s", dto.QuoteTotal, want)
	}
}

func TestUpdateCompletedBookingRejected(t *testing.T) {
	repo := newStubBookingRepo()
	svc := newBookingService(t, repo)
	providerID := uuid.New()
	admin := member(providerID, enums.MemberRoleAdmin, nil)
	booking := &models.Booking{
		ID:         uuid.New(),
		ProviderID: providerID,
		Status:     enums.BookingStatusCompleted,
	}
	repo.byID[booking.ID] = booking

	name := "New name"
	_, err := svc.Update(context.Background(), admin, booking.ID, UpdateBookingInput{CustomerName: &name})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestChangeStatusTransitions(t *testing.T) {
	cases := []struct {
		from    enums.BookingStatus
		to      enums.BookingStatus
		allowed bool
	}{
		{enums.BookingStatusPending, enums.BookingStatusConfirmed, true},
		{enums.BookingStatusPending, enums.BookingStatusCompleted, false},
		{enums.BookingStatusConfirmed, enums.BookingStatusInProgress, true},
		{enums.BookingStatusInProgress, enums.BookingStatusCompleted, true},
		{enums.BookingStatusCompleted, enums.BookingStatusPending, false},
		{enums.BookingStatusCancelled, enums.BookingStatusConfirmed, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			repo := newStubBookingRepo()
			svc := newBookingService(t, repo)
			providerID := uuid.New()
			admin := member(providerID, enums.MemberRoleAdmin, nil)
			booking := &models.Booking{ID: uuid.New(), ProviderID: providerID, Status: tc.from}
			repo.byID[booking.ID] = booking

			dto, err := svc.ChangeStatus(context.Background(), admin, booking.ID, tc.to)
			if tc.allowed {
				if err != nil {
					t.Fatalf("transition %s -> %s: %v", tc.from, tc.to, err)
				}
				if dto.Status != tc.to {
					t.Fatalf("status %s, want %s", dto.Status, tc.to)
				}
				return
			}
			if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
				t.Fatalf("transition %s -> %s should fail with state conflict, got %v", tc.from, tc.to, err)
			}
		})
	}
}

func TestChangeStatusConcurrentLoss(t *testing.T) {
	repo := newStubBookingRepo()
	repo.statusRows = 0
	svc := newBookingService(t, repo)
	providerID := uuid.New()
	admin := member(providerID, enums.MemberRoleAdmin, nil)
	booking := &models.Booking{ID: uuid.New(), ProviderID: providerID, Status: enums.BookingStatusPending}
	repo.byID[booking.ID] = booking

	_, err := svc.ChangeStatus(context.Background(), admin, booking.ID, enums.BookingStatusConfirmed)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestGetTeamScoped(t *testing.T) {
	repo := newStubBookingRepo()
	svc := newBookingService(t, repo)
	providerID := uuid.New()
	teamID := uuid.New()
	otherTeam := uuid.New()
	booking := &models.Booking{ID: uuid.New(), ProviderID: providerID, TeamID: &otherTeam, Status: enums.BookingStatusPending}
	repo.byID[booking.ID] = booking

	staff := member(providerID, enums.MemberRoleStaff, &teamID)
	_, err := svc.Get(context.Background(), staff, booking.ID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-team reads must look like not found, got %v", err)
	}
}
