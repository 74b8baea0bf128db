package records

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]MedicalRecord
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]MedicalRecord{}}
}

func (r *testRepo) Create(ctx context.Context, rec MedicalRecord) error {
	if rec.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[rec.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (MedicalRecord, error) {
	rec, ok := r.byID[id]
	if !ok {
		return MedicalRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) ([]MedicalRecord, error) {
	out := make([]MedicalRecord, 0)
	for _, rec := range r.byID {
		if rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *testRepo) Void(ctx context.Context, id string) error {
	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Status == RecordStatusVoided {
		return nil
	}
	now := time.Now()
	rec.Status = RecordStatusVoided
	rec.VoidedAt = &now
	r.byID[id] = rec
	return nil
}

func TestService_Add_SetsDefaults(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	rec, err := svc.Add(context.Background(), "pat-1", "pat-1", UploaderPatient, AddInput{
		Title:       "  Radiografía de tórax  ",
		Description: "control",
		FileName:    "rx.pdf",
		ContentType: "application/pdf",
		FileURL:     "https://files.example/rx.pdf",
	})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if rec.Title != "Radiografía de tórax" {
		t.Fatalf("expected trimmed title, got %q", rec.Title)
	}
	if rec.Status != RecordStatusActive {
		t.Fatalf("expected active, got %s", rec.Status)
	}
	if rec.CreatedAt != now {
		t.Fatalf("expected CreatedAt = now")
	}
}

func TestService_Add_Validation(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	cases := []struct {
		name      string
		patientID string
		uploader  string
		role      UploaderRole
		in        AddInput
	}{
		{"missing patient", "", "pat-1", UploaderPatient, AddInput{Title: "x"}},
		{"missing uploader", "pat-1", "", UploaderPatient, AddInput{Title: "x"}},
		{"bad role", "pat-1", "u-1", UploaderRole("admin"), AddInput{Title: "x"}},
		{"missing title", "pat-1", "pat-1", UploaderPatient, AddInput{Title: "   "}},
	}
	for _, tc := range cases {
		if _, err := svc.Add(context.Background(), tc.patientID, tc.uploader, tc.role, tc.in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestService_Void_Idempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	rec, err := svc.Add(context.Background(), "pat-1", "pat-1", UploaderPatient, AddInput{Title: "nota"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	voided, err := svc.Void(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Void error: %v", err)
	}
	if voided.Status != RecordStatusVoided || voided.VoidedAt == nil {
		t.Fatalf("expected voided with timestamp, got %s %v", voided.Status, voided.VoidedAt)
	}

	again, err := svc.Void(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Void #2 error: %v", err)
	}
	if again.Status != RecordStatusVoided {
		t.Fatalf("expected voided after idempotent void, got %s", again.Status)
	}
}

func TestService_Void_UnknownRecord(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Void(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
