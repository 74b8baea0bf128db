package accessrequests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lifetag-access/internal/adapters/directory/memdir"
	"lifetag-access/internal/ports/auth"
	"lifetag-access/internal/ports/directory"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu   sync.Mutex
	byID map[string]AccessRequest
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]AccessRequest{}}
}

func (r *testRepo) CreatePending(ctx context.Context, req AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		return errors.New("repo: id required")
	}
	for _, existing := range r.byID {
		if existing.DoctorID == req.DoctorID && existing.PatientID == req.PatientID && existing.ActiveAt(req.RequestedAt) {
			return ErrConflict
		}
	}
	r.byID[req.ID] = req
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return AccessRequest{}, ErrNotFound
	}
	return req, nil
}

func (r *testRepo) TransitionFromPending(ctx context.Context, id string, to Status, respondedAt time.Time, expiresAt *time.Time) (AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return AccessRequest{}, ErrNotFound
	}
	if req.Status != StatusPending {
		return AccessRequest{}, ErrConflict
	}

	req.Status = to
	t := respondedAt
	req.RespondedAt = &t
	req.ExpiresAt = expiresAt
	r.byID[id] = req
	return req, nil
}

func (r *testRepo) TransitionFromApproved(ctx context.Context, id string) (AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return AccessRequest{}, ErrNotFound
	}
	if req.Status != StatusApproved {
		return AccessRequest{}, ErrConflict
	}

	req.Status = StatusRevoked
	r.byID[id] = req
	return req, nil
}

func (r *testRepo) FindApproved(ctx context.Context, doctorID, patientID string) (AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range r.byID {
		if req.DoctorID == doctorID && req.PatientID == patientID && req.Status == StatusApproved {
			return req, nil
		}
	}
	return AccessRequest{}, ErrNotFound
}

func (r *testRepo) ListByDoctor(ctx context.Context, doctorID string) ([]AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]AccessRequest, 0)
	for _, req := range r.byID {
		if req.DoctorID == doctorID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) ([]AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]AccessRequest, 0)
	for _, req := range r.byID {
		if req.PatientID == patientID {
			out = append(out, req)
		}
	}
	return out, nil
}

// -------------------------
// Test notifier
// -------------------------

type testNotifier struct {
	mu     sync.Mutex
	events map[string][]ChangeEvent
}

func newTestNotifier() *testNotifier {
	return &testNotifier{events: map[string][]ChangeEvent{}}
}

func (n *testNotifier) Publish(userID string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if ev, ok := payload.(ChangeEvent); ok {
		n.events[userID] = append(n.events[userID], ev)
	}
}

func (n *testNotifier) count(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events[userID])
}

// -------------------------
// Tests
// -------------------------

func newTestService(repo Repository) *Service {
	return NewService(repo, memdir.NewPermissive(), DefaultDurationPolicy())
}

func TestService_Submit_CreatesPending(t *testing.T) {
	repo := newTestRepo()
	notifier := newTestNotifier()
	svc := newTestService(repo).WithNotifier(notifier)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	r, err := svc.Submit(context.Background(), "doc-1", "pat-1", "control anual")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if r.Status != StatusPending {
		t.Fatalf("expected pending, got %s", r.Status)
	}
	if r.RequestedAt != now {
		t.Fatalf("expected RequestedAt = now")
	}
	if r.RespondedAt != nil || r.ExpiresAt != nil {
		t.Fatalf("expected nil RespondedAt/ExpiresAt on a fresh request")
	}
	if notifier.count("pat-1") != 1 {
		t.Fatalf("expected 1 notification to patient, got %d", notifier.count("pat-1"))
	}
}

func TestService_Submit_DuplicateActivePair_Conflicts(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Submit(context.Background(), "doc-1", "pat-1", ""); err != nil {
		t.Fatalf("Submit #1 error: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "doc-1", "pat-1", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate, got %v", err)
	}

	// otro par no conflictúa
	if _, err := svc.Submit(context.Background(), "doc-1", "pat-2", ""); err != nil {
		t.Fatalf("Submit to another patient error: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "doc-2", "pat-1", ""); err != nil {
		t.Fatalf("Submit from another doctor error: %v", err)
	}
}

func TestService_Submit_AllowedAgainAfterGrantExpires(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	r, err := svc.Submit(context.Background(), "doc-1", "pat-1", "")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, 60); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	// mientras el grant está vigente, sigue bloqueando
	svc.now = func() time.Time { return t0.Add(30 * time.Minute) }
	if _, err := svc.Submit(context.Background(), "doc-1", "pat-1", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while grant active, got %v", err)
	}

	// vencido el grant, se puede volver a solicitar sin ningún write previo
	svc.now = func() time.Time { return t0.Add(61 * time.Minute) }
	if _, err := svc.Submit(context.Background(), "doc-1", "pat-1", ""); err != nil {
		t.Fatalf("expected new submit after expiry, got %v", err)
	}
}

func TestService_Submit_BlockedDoctor_Forbidden(t *testing.T) {
	repo := newTestRepo()
	dir := memdir.New()
	dir.AddDoctor(directory.Person{ID: "doc-1", FullName: "Dr. Test", Blocked: true})
	dir.AddPatient(directory.Person{ID: "pat-1"})

	svc := NewService(repo, dir, DefaultDurationPolicy())

	if _, err := svc.Submit(context.Background(), "doc-1", "pat-1", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for blocked doctor, got %v", err)
	}
}

func TestService_Submit_UnknownPatient_NotFound(t *testing.T) {
	repo := newTestRepo()
	dir := memdir.New()
	dir.AddDoctor(directory.Person{ID: "doc-1"})

	svc := NewService(repo, dir, DefaultDurationPolicy())

	if _, err := svc.Submit(context.Background(), "doc-1", "ghost", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown patient, got %v", err)
	}
}

func TestService_Respond_Approve_SetsExpiry(t *testing.T) {
	repo := newTestRepo()
	notifier := newTestNotifier()
	svc := newTestService(repo).WithNotifier(notifier)

	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	r, err := svc.Submit(context.Background(), "doc-1", "pat-1", "")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	t1 := t0.Add(5 * time.Minute)
	svc.now = func() time.Time { return t1 }

	approved, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, 60)
	if err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.ExpiresAt == nil || !approved.ExpiresAt.Equal(t1.Add(60*time.Minute)) {
		t.Fatalf("expected ExpiresAt = responded_at + 60m, got %v", approved.ExpiresAt)
	}
	if approved.RespondedAt == nil || !approved.RespondedAt.Equal(t1) {
		t.Fatalf("expected RespondedAt = t1, got %v", approved.RespondedAt)
	}
	if notifier.count("doc-1") != 1 {
		t.Fatalf("expected 1 notification to doctor, got %d", notifier.count("doc-1"))
	}
}

func TestService_Respond_Reject_NoExpiry(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")

	rejected, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionReject, 0)
	if err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.ExpiresAt != nil {
		t.Fatalf("reject must not set ExpiresAt")
	}
}

func TestService_Respond_WrongPatient_Forbidden(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")

	if _, err := svc.Respond(context.Background(), "pat-2", r.ID, DecisionApprove, 60); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-referenced patient, got %v", err)
	}
}

func TestService_Respond_DurationOutOfPolicy(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, memdir.NewPermissive(), DurationPolicy{MinMinutes: 10, MaxMinutes: 120})

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")

	for _, minutes := range []int{0, -5, 9, 121} {
		if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, minutes); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("duration %d: expected ErrInvalidInput, got %v", minutes, err)
		}
	}

	if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, 10); err != nil {
		t.Fatalf("duration at policy minimum should pass, got %v", err)
	}
}

func TestService_Respond_AlreadyResponded_Conflicts(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")
	if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionReject, 0); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, 60); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on second respond, got %v", err)
	}
}

func TestService_Respond_ConcurrentResponders_OneWinner(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		decision := DecisionApprove
		if i%2 == 1 {
			decision = DecisionReject
		}
		go func(d Decision) {
			defer wg.Done()
			_, err := svc.Respond(context.Background(), "pat-1", r.ID, d, 60)
			results <- err
		}(decision)
	}
	wg.Wait()
	close(results)

	winners, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d (conflicts=%d)", winners, conflicts)
	}

	final, err := repo.GetByID(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if final.Status != StatusApproved && final.Status != StatusRejected {
		t.Fatalf("final status must be a respond outcome, got %s", final.Status)
	}
}

func TestService_Revoke_ApprovedGrant(t *testing.T) {
	repo := newTestRepo()
	notifier := newTestNotifier()
	svc := newTestService(repo).WithNotifier(notifier)

	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")
	if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, 60); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	revoked, err := svc.Revoke(context.Background(), "pat-1", r.ID)
	if err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if revoked.Status != StatusRevoked {
		t.Fatalf("expected revoked, got %s", revoked.Status)
	}

	// idempotente: revocar de nuevo devuelve el estado terminal, sin error
	again, err := svc.Revoke(context.Background(), "pat-1", r.ID)
	if err != nil {
		t.Fatalf("Revoke #2 error: %v", err)
	}
	if again.Status != StatusRevoked {
		t.Fatalf("expected revoked after idempotent revoke, got %s", again.Status)
	}
}

func TestService_Revoke_PendingRequest_Conflicts(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")

	if _, err := svc.Revoke(context.Background(), "pat-1", r.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict revoking a pending request, got %v", err)
	}
}

func TestService_Revoke_ExpiredGrant_NoOp(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")
	if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, 60); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	svc.now = func() time.Time { return t0.Add(2 * time.Hour) }

	got, err := svc.Revoke(context.Background(), "pat-1", r.ID)
	if err != nil {
		t.Fatalf("Revoke on expired grant should be a no-op, got %v", err)
	}
	// el estado almacenado sigue approved; el efectivo es expired
	if got.Status != StatusApproved {
		t.Fatalf("expected stored status untouched, got %s", got.Status)
	}
	if got.EffectiveStatus(svc.now()) != StatusExpired {
		t.Fatalf("expected effective expired, got %s", got.EffectiveStatus(svc.now()))
	}
}

func TestService_IsGranted(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	// sin solicitud: false sin error
	granted, err := svc.IsGranted(context.Background(), "doc-1", "pat-1")
	if err != nil || granted {
		t.Fatalf("expected (false, nil) with no grant, got (%v, %v)", granted, err)
	}

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")

	// pendiente no otorga acceso
	granted, _ = svc.IsGranted(context.Background(), "doc-1", "pat-1")
	if granted {
		t.Fatalf("pending must not grant access")
	}

	svc.now = func() time.Time { return t0.Add(5 * time.Minute) }
	if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, 60); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	// vigente
	svc.now = func() time.Time { return t0.Add(64 * time.Minute) }
	granted, _ = svc.IsGranted(context.Background(), "doc-1", "pat-1")
	if !granted {
		t.Fatalf("expected granted 1 min before expiry")
	}

	// vencido: el gate corta solo con el reloj, sin ningún write
	svc.now = func() time.Time { return t0.Add(66 * time.Minute) }
	granted, err = svc.IsGranted(context.Background(), "doc-1", "pat-1")
	if err != nil {
		t.Fatalf("IsGranted error: %v", err)
	}
	if granted {
		t.Fatalf("expected not granted after expiry")
	}

	// y el status almacenado sigue siendo approved
	stored, _ := repo.GetByID(context.Background(), r.ID)
	if stored.Status != StatusApproved {
		t.Fatalf("gate must not mutate stored status, got %s", stored.Status)
	}
}

func TestService_IsGranted_RevokedCutsAccess(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	r, _ := svc.Submit(context.Background(), "doc-1", "pat-1", "")
	if _, err := svc.Respond(context.Background(), "pat-1", r.ID, DecisionApprove, 60); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	granted, _ := svc.IsGranted(context.Background(), "doc-1", "pat-1")
	if !granted {
		t.Fatalf("expected granted after approve")
	}

	if _, err := svc.Revoke(context.Background(), "pat-1", r.ID); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	granted, _ = svc.IsGranted(context.Background(), "doc-1", "pat-1")
	if granted {
		t.Fatalf("expected access cut immediately after revoke")
	}
}

func TestService_ListActive_FiltersByEffectiveStatus(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	// pendiente
	if _, err := svc.Submit(context.Background(), "doc-1", "pat-1", ""); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	// aprobada vigente
	r2, _ := svc.Submit(context.Background(), "doc-1", "pat-2", "")
	if _, err := svc.Respond(context.Background(), "pat-2", r2.ID, DecisionApprove, 120); err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	// aprobada que vencerá
	r3, _ := svc.Submit(context.Background(), "doc-1", "pat-3", "")
	if _, err := svc.Respond(context.Background(), "pat-3", r3.ID, DecisionApprove, 30); err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	// rechazada
	r4, _ := svc.Submit(context.Background(), "doc-1", "pat-4", "")
	if _, err := svc.Respond(context.Background(), "pat-4", r4.ID, DecisionReject, 0); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	svc.now = func() time.Time { return t0.Add(60 * time.Minute) }

	active, err := svc.ListActive(context.Background(), "doc-1", auth.RoleDoctor)
	if err != nil {
		t.Fatalf("ListActive error: %v", err)
	}
	// queda la pendiente y la aprobada de 120m; la de 30m ya venció
	if len(active) != 2 {
		t.Fatalf("expected 2 active requests, got %d", len(active))
	}

	all, err := svc.ListAll(context.Background(), "doc-1", auth.RoleDoctor)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 in history, got %d", len(all))
	}
}

func TestService_ListActive_UnknownRole_Forbidden(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	if _, err := svc.ListActive(context.Background(), "user-1", auth.Role("admin")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for role without a side, got %v", err)
	}
}
