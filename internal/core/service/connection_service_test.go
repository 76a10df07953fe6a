package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID     map[string]*domain.User
	pushErr  error // if set, PushConnection returns this error
	pullErr  error
	pushed   []string // "<userID>:<connID>" in call order
	pulled   []string
	searched *ports.TherapistSearchFilter
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	clone := *u
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("user_%d", len(r.byID)+1)
	}
	r.byID[clone.ID] = &clone
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.PrimaryPhone == phone {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.AdminApproved != nil {
		u.AdminApproved = *upd.AdminApproved
	}
	if upd.BlockedByAdmin != nil {
		u.BlockedByAdmin = *upd.BlockedByAdmin
	}
	if upd.Verified != nil {
		u.Verified = *upd.Verified
	}
	if upd.LastLogin != nil {
		u.LastLogin = *upd.LastLogin
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) PushConnection(_ context.Context, userID, connectionID string) error {
	if r.pushErr != nil {
		return r.pushErr
	}
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FriendRequests = append(u.FriendRequests, connectionID)
	r.pushed = append(r.pushed, userID+":"+connectionID)
	return nil
}

func (r *stubUserRepo) PullConnection(_ context.Context, userID, connectionID string) error {
	if r.pullErr != nil {
		return r.pullErr
	}
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	kept := u.FriendRequests[:0]
	for _, id := range u.FriendRequests {
		if id != connectionID {
			kept = append(kept, id)
		}
	}
	u.FriendRequests = kept
	r.pulled = append(r.pulled, userID+":"+connectionID)
	return nil
}

func (r *stubUserRepo) ListByRole(_ context.Context, f ports.RoleListFilter) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.byID {
		if u.Role != f.Role {
			continue
		}
		if f.Approved != nil && u.AdminApproved != *f.Approved {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role domain.Role, approved *bool) (int64, error) {
	var n int64
	for _, u := range r.byID {
		if u.Role != role {
			continue
		}
		if approved != nil && u.AdminApproved != *approved {
			continue
		}
		n++
	}
	return n, nil
}

func (r *stubUserRepo) SearchTherapists(_ context.Context, f ports.TherapistSearchFilter) ([]*domain.User, error) {
	r.searched = &f
	var out []*domain.User
	for _, u := range r.byID {
		if u.Role != domain.RoleTherapist || u.BlockedByAdmin || !u.AdminApproved {
			continue
		}
		excluded := false
		for _, id := range f.Excluded {
			if id == u.ID {
				excluded = true
			}
		}
		if excluded {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

type stubConnectionRepo struct {
	byID      map[string]*domain.Connection
	nextID    int
	createErr error
	deleteErr error
}

func newStubConnectionRepo() *stubConnectionRepo {
	return &stubConnectionRepo{byID: make(map[string]*domain.Connection)}
}

func (r *stubConnectionRepo) Create(_ context.Context, clientID, therapistID string) (*domain.Connection, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	conn := &domain.Connection{
		ID:          fmt.Sprintf("conn_%d", r.nextID),
		ClientID:    clientID,
		TherapistID: therapistID,
		Status:      domain.ConnectionPending,
		CreatedAt:   time.Now(),
	}
	r.byID[conn.ID] = conn
	clone := *conn
	return &clone, nil
}

func (r *stubConnectionRepo) GetByID(_ context.Context, id string) (*domain.Connection, error) {
	conn, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	clone := *conn
	return &clone, nil
}

func (r *stubConnectionRepo) GetByIDForUser(_ context.Context, id, userID string, role domain.Role) (*domain.Connection, error) {
	conn, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	switch role {
	case domain.RoleClient:
		if conn.ClientID != userID {
			return nil, domain.ErrConnectionNotFound
		}
	case domain.RoleTherapist:
		if conn.TherapistID != userID {
			return nil, domain.ErrConnectionNotFound
		}
	}
	clone := *conn
	return &clone, nil
}

func (r *stubConnectionRepo) UpdateStatus(_ context.Context, id string, status domain.ConnectionStatus) (*domain.Connection, error) {
	conn, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	conn.Status = status
	clone := *conn
	return &clone, nil
}

func (r *stubConnectionRepo) Delete(_ context.Context, id string) (*domain.Connection, error) {
	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	conn, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	delete(r.byID, id)
	clone := *conn
	return &clone, nil
}

func (r *stubConnectionRepo) ListByTherapist(_ context.Context, therapistID string, _ ports.ConnectionPage) ([]*domain.Connection, error) {
	var out []*domain.Connection
	for _, conn := range r.byID {
		if conn.TherapistID == therapistID && conn.Status != domain.ConnectionRejected {
			clone := *conn
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubConnectionRepo) ListByClient(_ context.Context, clientID string, _ ports.ConnectionPage) ([]*domain.Connection, error) {
	var out []*domain.Connection
	for _, conn := range r.byID {
		if conn.ClientID == clientID {
			clone := *conn
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubConnectionRepo) ListSentByClient(_ context.Context, clientID string) ([]*domain.Connection, error) {
	var out []*domain.Connection
	for _, conn := range r.byID {
		if conn.ClientID == clientID && conn.Status != domain.ConnectionRejected {
			clone := *conn
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubConnectionRepo) ListApprovedByTherapist(_ context.Context, therapistID string) ([]*domain.Connection, error) {
	var out []*domain.Connection
	for _, conn := range r.byID {
		if conn.TherapistID == therapistID && conn.Status == domain.ConnectionApproved {
			clone := *conn
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubConnectionRepo) FindApproved(_ context.Context, clientID, therapistID string) (*domain.Connection, error) {
	for _, conn := range r.byID {
		if conn.ClientID == clientID && conn.TherapistID == therapistID && conn.Status == domain.ConnectionApproved {
			clone := *conn
			return &clone, nil
		}
	}
	return nil, domain.ErrConnectionNotFound
}

func (r *stubConnectionRepo) FindAny(_ context.Context, clientID, therapistID string) ([]*domain.Connection, error) {
	var out []*domain.Connection
	for _, conn := range r.byID {
		if conn.ClientID == clientID && conn.TherapistID == therapistID {
			clone := *conn
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubConnectionRepo) DeleteAllForClient(_ context.Context, clientID string) (int64, error) {
	var n int64
	for id, conn := range r.byID {
		if conn.ClientID == clientID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *stubConnectionRepo) DeleteAllForTherapist(_ context.Context, therapistID string) (int64, error) {
	var n int64
	for id, conn := range r.byID {
		if conn.TherapistID == therapistID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

type stubGuard struct {
	held       map[string]bool
	acquireErr error
	acquires   int
	releases   int
}

func newStubGuard() *stubGuard {
	return &stubGuard{held: make(map[string]bool)}
}

func (g *stubGuard) Acquire(_ context.Context, clientID, therapistID string) (bool, error) {
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	g.acquires++
	key := clientID + ":" + therapistID
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, clientID, therapistID string) error {
	g.releases++
	delete(g.held, clientID+":"+therapistID)
	return nil
}

type stubEnqueuer struct {
	sent []ports.Notification
}

func (e *stubEnqueuer) Enqueue(n ports.Notification) {
	e.sent = append(e.sent, n)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func testClient() *domain.User {
	return &domain.User{
		ID:        "client_1",
		Role:      domain.RoleClient,
		FirstName: "Alice",
		LastName:  "Client",
		Email:     "alice@example.com",
	}
}

func testTherapist() *domain.User {
	return &domain.User{
		ID:            "therapist_1",
		Role:          domain.RoleTherapist,
		FirstName:     "Tom",
		LastName:      "Therapist",
		Email:         "tom@example.com",
		AdminApproved: true,
	}
}

func newTestConnectionService() (*ConnectionService, *stubConnectionRepo, *stubUserRepo, *stubGuard, *stubEnqueuer) {
	users := newStubUserRepo(testClient(), testTherapist())
	conns := newStubConnectionRepo()
	guard := newStubGuard()
	notify := &stubEnqueuer{}
	svc := NewConnectionService(conns, users, guard, notify, zerolog.Nop())
	return svc, conns, users, guard, notify
}

// ---------------------------------------------------------------------------
// Request
// ---------------------------------------------------------------------------

func TestConnectionService_Request_CreatesPendingAndUpdatesBothLists(t *testing.T) {
	svc, conns, users, _, notify := newTestConnectionService()

	conn, err := svc.Request(context.Background(), "client_1", "therapist_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn.Status != domain.ConnectionPending {
		t.Fatalf("expected PENDING, got %s", conn.Status)
	}

	found, err := conns.FindAny(context.Background(), "client_1", "therapist_1")
	if err != nil || len(found) != 1 {
		t.Fatalf("expected exactly one stored connection, got %d (err=%v)", len(found), err)
	}

	client, _ := users.FindByID(context.Background(), "client_1")
	therapist, _ := users.FindByID(context.Background(), "therapist_1")
	if len(client.FriendRequests) != 1 || client.FriendRequests[0] != conn.ID {
		t.Fatalf("client membership list not updated: %v", client.FriendRequests)
	}
	if len(therapist.FriendRequests) != 1 || therapist.FriendRequests[0] != conn.ID {
		t.Fatalf("therapist membership list not updated: %v", therapist.FriendRequests)
	}

	if len(notify.sent) != 1 || notify.sent[0].To != "tom@example.com" {
		t.Fatalf("expected one notification to the therapist, got %+v", notify.sent)
	}
}

func TestConnectionService_Request_UnknownTherapist(t *testing.T) {
	svc, _, _, _, _ := newTestConnectionService()

	if _, err := svc.Request(context.Background(), "client_1", "nope"); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestConnectionService_Request_TargetNotATherapist(t *testing.T) {
	svc, _, users, _, _ := newTestConnectionService()
	users.byID["other_client"] = &domain.User{ID: "other_client", Role: domain.RoleClient}

	if _, err := svc.Request(context.Background(), "client_1", "other_client"); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestConnectionService_Request_DuplicatePairRejected(t *testing.T) {
	svc, conns, _, _, notify := newTestConnectionService()

	if _, err := svc.Request(context.Background(), "client_1", "therapist_1"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.Request(context.Background(), "client_1", "therapist_1"); !errors.Is(err, domain.ErrConnectionExists) {
		t.Fatalf("expected ErrConnectionExists, got %v", err)
	}

	found, _ := conns.FindAny(context.Background(), "client_1", "therapist_1")
	if len(found) != 1 {
		t.Fatalf("expected a single stored connection, got %d", len(found))
	}
	if len(notify.sent) != 1 {
		t.Fatalf("expected a single notification, got %d", len(notify.sent))
	}
}

func TestConnectionService_Request_GuardClosesConcurrentWindow(t *testing.T) {
	// Simulate a concurrent duplicate: the pair key is already held, so the
	// second request loses the guard race even though FindAny saw nothing.
	svc, _, _, guard, _ := newTestConnectionService()
	guard.held["client_1:therapist_1"] = true

	if _, err := svc.Request(context.Background(), "client_1", "therapist_1"); !errors.Is(err, domain.ErrConnectionExists) {
		t.Fatalf("expected ErrConnectionExists, got %v", err)
	}
}

func TestConnectionService_Request_GuardOutageDoesNotBlock(t *testing.T) {
	svc, _, _, guard, _ := newTestConnectionService()
	guard.acquireErr = errors.New("redis down")

	if _, err := svc.Request(context.Background(), "client_1", "therapist_1"); err != nil {
		t.Fatalf("request should survive a guard outage, got %v", err)
	}
}

func TestConnectionService_Request_MembershipFailureSurfaces(t *testing.T) {
	svc, _, users, _, _ := newTestConnectionService()
	users.pushErr = errors.New("write concern failed")

	if _, err := svc.Request(context.Background(), "client_1", "therapist_1"); !errors.Is(err, domain.ErrMembershipUpdate) {
		t.Fatalf("expected ErrMembershipUpdate, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Respond
// ---------------------------------------------------------------------------

func TestConnectionService_Respond_ApproveMakesPairConnected(t *testing.T) {
	svc, _, _, _, _ := newTestConnectionService()

	conn, err := svc.Request(context.Background(), "client_1", "therapist_1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	updated, err := svc.Respond(context.Background(), conn.ID, "therapist_1", domain.ConnectionApproved)
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if updated.Status != domain.ConnectionApproved {
		t.Fatalf("expected APPROVED, got %s", updated.Status)
	}

	connected, err := svc.IsConnected(context.Background(), "client_1", domain.RoleClient, "therapist_1")
	if err != nil || !connected {
		t.Fatalf("expected connected=true, got %v (err=%v)", connected, err)
	}

	// Direction-normalized: the therapist side sees the same answer.
	connected, err = svc.IsConnected(context.Background(), "therapist_1", domain.RoleTherapist, "client_1")
	if err != nil || !connected {
		t.Fatalf("expected connected=true from therapist side, got %v (err=%v)", connected, err)
	}
}

func TestConnectionService_Respond_RejectLeavesPairDisconnected(t *testing.T) {
	svc, _, _, _, _ := newTestConnectionService()

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if _, err := svc.Respond(context.Background(), conn.ID, "therapist_1", domain.ConnectionRejected); err != nil {
		t.Fatalf("respond failed: %v", err)
	}

	connected, err := svc.IsConnected(context.Background(), "client_1", domain.RoleClient, "therapist_1")
	if err != nil || connected {
		t.Fatalf("expected connected=false, got %v (err=%v)", connected, err)
	}
}

func TestConnectionService_Respond_TerminalStateRefusesTransition(t *testing.T) {
	svc, _, _, _, _ := newTestConnectionService()

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if _, err := svc.Respond(context.Background(), conn.ID, "therapist_1", domain.ConnectionApproved); err != nil {
		t.Fatalf("first respond failed: %v", err)
	}
	if _, err := svc.Respond(context.Background(), conn.ID, "therapist_1", domain.ConnectionRejected); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestConnectionService_Respond_PendingIsNotAValidTarget(t *testing.T) {
	svc, _, _, _, _ := newTestConnectionService()

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if _, err := svc.Respond(context.Background(), conn.ID, "therapist_1", domain.ConnectionPending); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestConnectionService_Respond_OnlyOwningTherapist(t *testing.T) {
	svc, _, users, _, _ := newTestConnectionService()
	users.byID["therapist_2"] = &domain.User{ID: "therapist_2", Role: domain.RoleTherapist}

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if _, err := svc.Respond(context.Background(), conn.ID, "therapist_2", domain.ConnectionApproved); !errors.Is(err, domain.ErrConnectionNotFound) {
		t.Fatalf("expected ErrConnectionNotFound for foreign therapist, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Remove / Unfriend
// ---------------------------------------------------------------------------

func TestConnectionService_Remove_ClearsRowAndBothLists(t *testing.T) {
	svc, conns, users, _, _ := newTestConnectionService()

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if err := svc.Remove(context.Background(), conn.ID, "client_1", domain.RoleClient); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if _, err := conns.GetByID(context.Background(), conn.ID); !errors.Is(err, domain.ErrConnectionNotFound) {
		t.Fatalf("expected row gone, got %v", err)
	}

	client, _ := users.FindByID(context.Background(), "client_1")
	therapist, _ := users.FindByID(context.Background(), "therapist_1")
	if len(client.FriendRequests) != 0 || len(therapist.FriendRequests) != 0 {
		t.Fatalf("membership lists not trimmed: client=%v therapist=%v", client.FriendRequests, therapist.FriendRequests)
	}
}

func TestConnectionService_Remove_SecondCallFailsWithoutMutation(t *testing.T) {
	svc, _, users, _, _ := newTestConnectionService()

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if err := svc.Remove(context.Background(), conn.ID, "client_1", domain.RoleClient); err != nil {
		t.Fatalf("first remove failed: %v", err)
	}

	pullsBefore := len(users.pulled)
	if err := svc.Remove(context.Background(), conn.ID, "client_1", domain.RoleClient); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference on second remove, got %v", err)
	}
	if len(users.pulled) != pullsBefore {
		t.Fatalf("second remove must not touch membership lists")
	}
}

func TestConnectionService_Remove_NonPartyCannotRemove(t *testing.T) {
	svc, _, users, _, _ := newTestConnectionService()
	users.byID["client_2"] = &domain.User{ID: "client_2", Role: domain.RoleClient}

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if err := svc.Remove(context.Background(), conn.ID, "client_2", domain.RoleClient); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference for non-party, got %v", err)
	}
}

func TestConnectionService_Remove_ReleasesPairGuard(t *testing.T) {
	svc, _, _, guard, _ := newTestConnectionService()

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if err := svc.Remove(context.Background(), conn.ID, "client_1", domain.RoleClient); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if guard.held["client_1:therapist_1"] {
		t.Fatal("pair guard still held after remove")
	}

	// The pair can request again once the old connection is gone.
	if _, err := svc.Request(context.Background(), "client_1", "therapist_1"); err != nil {
		t.Fatalf("re-request after remove failed: %v", err)
	}
}

func TestConnectionService_Unfriend_NotifiesOtherParty(t *testing.T) {
	svc, _, _, _, notify := newTestConnectionService()

	conn, _ := svc.Request(context.Background(), "client_1", "therapist_1")
	if _, err := svc.Respond(context.Background(), conn.ID, "therapist_1", domain.ConnectionApproved); err != nil {
		t.Fatalf("respond failed: %v", err)
	}

	notify.sent = nil
	deleted, err := svc.Unfriend(context.Background(), conn.ID, "client_1", domain.RoleClient)
	if err != nil {
		t.Fatalf("unfriend failed: %v", err)
	}
	if deleted.ID != conn.ID {
		t.Fatalf("expected deleted connection %s, got %s", conn.ID, deleted.ID)
	}
}

// ---------------------------------------------------------------------------
// Full lifecycle
// ---------------------------------------------------------------------------

func TestConnectionService_FullLifecycle(t *testing.T) {
	svc, conns, users, _, _ := newTestConnectionService()
	ctx := context.Background()

	conn, err := svc.Request(ctx, "client_1", "therapist_1")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	pending, _ := svc.ListForRole(ctx, "therapist_1", domain.RoleTherapist, ports.ConnectionPage{})
	if len(pending) != 1 {
		t.Fatalf("therapist should see one pending request, got %d", len(pending))
	}

	if _, err := svc.Respond(ctx, conn.ID, "therapist_1", domain.ConnectionApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	connected, _ := svc.IsConnected(ctx, "client_1", domain.RoleClient, "therapist_1")
	if !connected {
		t.Fatal("pair should be connected after approval")
	}

	if _, err := svc.Unfriend(ctx, conn.ID, "client_1", domain.RoleClient); err != nil {
		t.Fatalf("unfriend: %v", err)
	}

	connected, _ = svc.IsConnected(ctx, "client_1", domain.RoleClient, "therapist_1")
	if connected {
		t.Fatal("pair should be disconnected after unfriend")
	}

	history, _ := conns.FindAny(ctx, "client_1", "therapist_1")
	if len(history) != 0 {
		t.Fatalf("expected no remaining connection rows, got %d", len(history))
	}

	client, _ := users.FindByID(ctx, "client_1")
	if len(client.FriendRequests) != 0 {
		t.Fatalf("client membership list should be empty, got %v", client.FriendRequests)
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestConnectionService_IsConnected_UnknownOtherUser(t *testing.T) {
	svc, _, _, _, _ := newTestConnectionService()

	if _, err := svc.IsConnected(context.Background(), "client_1", domain.RoleClient, "ghost"); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestConnectionService_ListForRole_RejectsUnknownRole(t *testing.T) {
	svc, _, _, _, _ := newTestConnectionService()

	if _, err := svc.ListForRole(context.Background(), "client_1", domain.RoleSuperAdmin, ports.ConnectionPage{}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestConnectionService_PairHistory_ValidatesBothParties(t *testing.T) {
	svc, _, _, _, _ := newTestConnectionService()
	ctx := context.Background()

	conn, _ := svc.Request(ctx, "client_1", "therapist_1")
	_, _ = svc.Respond(ctx, conn.ID, "therapist_1", domain.ConnectionRejected)

	history, err := svc.PairHistory(ctx, "client_1", "therapist_1")
	if err != nil {
		t.Fatalf("pair history failed: %v", err)
	}
	if len(history) != 1 || history[0].Status != domain.ConnectionRejected {
		t.Fatalf("expected the rejected record in history, got %+v", history)
	}

	if _, err := svc.PairHistory(ctx, "client_1", "ghost"); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference for unknown therapist, got %v", err)
	}
}
