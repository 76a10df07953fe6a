package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

type stubReportRepo struct {
	byID   map[string]*domain.Report
	nextID int
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{byID: make(map[string]*domain.Report)}
}

func (r *stubReportRepo) Create(_ context.Context, report *domain.Report) (*domain.Report, error) {
	r.nextID++
	clone := *report
	clone.ID = fmt.Sprintf("report_%d", r.nextID)
	r.byID[clone.ID] = &clone
	return &clone, nil
}

func (r *stubReportRepo) List(_ context.Context, _, _ int64) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, report := range r.byID {
		clone := *report
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubReportRepo) Resolve(_ context.Context, id string) (*domain.Report, error) {
	report, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	report.Resolved = true
	clone := *report
	return &clone, nil
}

func newTestAdminService() (*AdminService, *stubUserRepo, *stubConnectionRepo, *stubTagRepo, *stubReportRepo, *stubEnqueuer) {
	users := newStubUserRepo(testClient(), testTherapist())
	conns := newStubConnectionRepo()
	tags := newStubTagRepo()
	reports := newStubReportRepo()
	notify := &stubEnqueuer{}
	svc := NewAdminService(users, conns, tags, reports, notify, zerolog.Nop())
	return svc, users, conns, tags, reports, notify
}

func TestAdminService_ApproveUser_MarksVerified(t *testing.T) {
	svc, _, _, _, _, notify := newTestAdminService()

	user, err := svc.ApproveUser(context.Background(), "therapist_1", true)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !user.AdminApproved || user.Verified != domain.Verified {
		t.Fatalf("expected approved+verified, got approved=%v verified=%s", user.AdminApproved, user.Verified)
	}
	if len(notify.sent) != 1 {
		t.Fatalf("expected an approval email, got %d", len(notify.sent))
	}
}

func TestAdminService_ApproveUser_RejectKeepsVerification(t *testing.T) {
	svc, _, _, _, _, _ := newTestAdminService()

	user, err := svc.ApproveUser(context.Background(), "therapist_1", false)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if user.AdminApproved {
		t.Fatal("expected approval flag cleared")
	}
	if user.Verified == domain.Verified {
		t.Fatal("rejection must not mark the account verified")
	}
}

func TestAdminService_SetBlocked(t *testing.T) {
	svc, _, _, _, _, _ := newTestAdminService()

	user, err := svc.SetBlocked(context.Background(), "client_1", true)
	if err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if !user.BlockedByAdmin {
		t.Fatal("expected blocked flag set")
	}

	user, err = svc.SetBlocked(context.Background(), "client_1", false)
	if err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if user.BlockedByAdmin {
		t.Fatal("expected blocked flag cleared")
	}
}

func TestAdminService_DeleteUser_CascadesConnections(t *testing.T) {
	svc, users, conns, _, _, _ := newTestAdminService()
	ctx := context.Background()

	// Wire up an existing connection between the pair the way the workflow
	// would: a row plus a membership entry on both sides.
	conn, _ := conns.Create(ctx, "client_1", "therapist_1")
	_ = users.PushConnection(ctx, "client_1", conn.ID)
	_ = users.PushConnection(ctx, "therapist_1", conn.ID)

	if err := svc.DeleteUser(ctx, "client_1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := users.FindByID(ctx, "client_1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	if _, err := conns.GetByID(ctx, conn.ID); !errors.Is(err, domain.ErrConnectionNotFound) {
		t.Fatalf("expected connection gone, got %v", err)
	}
	therapist, _ := users.FindByID(ctx, "therapist_1")
	if len(therapist.FriendRequests) != 0 {
		t.Fatalf("counterpart membership list not trimmed: %v", therapist.FriendRequests)
	}
}

func TestAdminService_DeleteUser_SkipsStaleCacheEntries(t *testing.T) {
	svc, users, _, _, _, _ := newTestAdminService()
	ctx := context.Background()

	// A membership entry whose connection row no longer exists.
	_ = users.PushConnection(ctx, "client_1", "conn_gone")

	if err := svc.DeleteUser(ctx, "client_1"); err != nil {
		t.Fatalf("delete should skip stale entries, got %v", err)
	}
}

func TestAdminService_Stats(t *testing.T) {
	svc, users, _, _, _, _ := newTestAdminService()

	users.byID["client_2"] = &domain.User{ID: "client_2", Role: domain.RoleClient, AdminApproved: true}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalClients != 2 || stats.ApprovedClients != 1 || stats.PendingClients != 1 {
		t.Fatalf("unexpected client counters: %+v", stats)
	}
	if stats.TotalTherapists != 1 || stats.ApprovedTherapists != 1 || stats.PendingTherapists != 0 {
		t.Fatalf("unexpected therapist counters: %+v", stats)
	}
}

func TestAdminService_CreateTag_GetOrCreate(t *testing.T) {
	svc, _, _, tags, _, _ := newTestAdminService()

	first, err := svc.CreateTag(context.Background(), "anxiety")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := svc.CreateTag(context.Background(), "anxiety")
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same tag back, got %s and %s", first.ID, second.ID)
	}
	if len(tags.byID) != 1 {
		t.Fatalf("expected a single stored tag, got %d", len(tags.byID))
	}
}

func TestAdminService_ReportLifecycle(t *testing.T) {
	svc, _, _, _, _, _ := newTestAdminService()
	ctx := context.Background()

	if _, err := svc.ReportUser(ctx, "client_1", "ghost", "spam"); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference for unknown target, got %v", err)
	}

	report, err := svc.ReportUser(ctx, "client_1", "therapist_1", "inappropriate behavior")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if report.Resolved {
		t.Fatal("new reports must start unresolved")
	}

	resolved, err := svc.ResolveReport(ctx, report.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !resolved.Resolved {
		t.Fatal("expected resolved flag set")
	}
}
