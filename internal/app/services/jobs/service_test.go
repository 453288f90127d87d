package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/storage/memory"
	"github.com/campusworks/workstudy/internal/errors"
)

func validSpec() job.Spec {
	return job.Spec{
		Title:               "Library Assistant",
		Description:         "Shelving and front desk duties.",
		Department:          "Library",
		Location:            "Main Library",
		HourlyRate:          12.50,
		MaxHoursPerWeek:     15,
		TotalPositions:      2,
		ApplicationDeadline: "2026-12-01",
	}
}

func TestService_CreateAndGet(t *testing.T) {
	svc := New(memory.New(), nil)

	created, err := svc.Create(context.Background(), validSpec(), "admin-1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if created.Status != job.StatusActive {
		t.Fatalf("expected new job ACTIVE, got %s", created.Status)
	}
	if created.FilledPositions != 0 {
		t.Fatalf("expected zero filled positions, got %d", created.FilledPositions)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Title != "Library Assistant" || got.PostedBy != "admin-1" {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)

	cases := []struct {
		name   string
		mutate func(*job.Spec)
	}{
		{"missing title", func(s *job.Spec) { s.Title = "" }},
		{"missing department", func(s *job.Spec) { s.Department = "  " }},
		{"negative rate", func(s *job.Spec) { s.HourlyRate = -1 }},
		{"zero max hours", func(s *job.Spec) { s.MaxHoursPerWeek = 0 }},
		{"excessive max hours", func(s *job.Spec) { s.MaxHoursPerWeek = 41 }},
		{"zero positions", func(s *job.Spec) { s.TotalPositions = 0 }},
		{"bad deadline", func(s *job.Spec) { s.ApplicationDeadline = "soon" }},
	}
	for _, tc := range cases {
		spec := validSpec()
		tc.mutate(&spec)
		if _, err := svc.Create(context.Background(), spec, "admin-1"); !errors.IsCode(err, errors.CodeInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}
}

func TestService_CloseIsIdempotent(t *testing.T) {
	svc := New(memory.New(), nil)
	created, err := svc.Create(context.Background(), validSpec(), "admin-1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	closed, err := svc.Close(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("close job: %v", err)
	}
	if closed.Status != job.StatusClosed {
		t.Fatalf("expected CLOSED, got %s", closed.Status)
	}

	again, err := svc.Close(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("second close: %v", err)
	}
	if again.Status != job.StatusClosed {
		t.Fatalf("expected CLOSED after repeat close, got %s", again.Status)
	}
}

func TestService_IncrementFilledFlipsToFilled(t *testing.T) {
	svc := New(memory.New(), nil)
	spec := validSpec()
	spec.TotalPositions = 1
	created, err := svc.Create(context.Background(), spec, "admin-1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	filled, err := svc.IncrementFilled(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("increment filled: %v", err)
	}
	if filled.FilledPositions != 1 || filled.Status != job.StatusFilled {
		t.Fatalf("expected 1 filled and FILLED status, got %+v", filled)
	}

	if _, err := svc.IncrementFilled(context.Background(), created.ID); !errors.IsCode(err, errors.CodeConflict) {
		t.Fatalf("expected conflict on exhausted posting, got %v", err)
	}
}

func TestService_IncrementFilledConcurrent(t *testing.T) {
	svc := New(memory.New(), nil)
	spec := validSpec()
	spec.TotalPositions = 3
	created, err := svc.Create(context.Background(), spec, "admin-1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.IncrementFilled(context.Background(), created.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.IsCode(err, errors.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded > 3 {
		t.Fatalf("filled more positions than exist: %d", succeeded)
	}
	if succeeded == 0 {
		t.Fatal("expected at least one successful fill")
	}
	if conflicts == 0 {
		t.Fatal("expected at least one conflict")
	}

	final, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if final.FilledPositions != succeeded {
		t.Fatalf("filled count %d does not match %d successful fills", final.FilledPositions, succeeded)
	}
	if final.FilledPositions == 3 && final.Status != job.StatusFilled {
		t.Fatalf("expected FILLED status at capacity, got %s", final.Status)
	}
}

func TestService_UpdatePreservesCounters(t *testing.T) {
	svc := New(memory.New(), nil)
	created, err := svc.Create(context.Background(), validSpec(), "admin-1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if _, err := svc.IncrementFilled(context.Background(), created.ID); err != nil {
		t.Fatalf("increment filled: %v", err)
	}

	spec := validSpec()
	spec.Title = "Senior Library Assistant"
	updated, err := svc.Update(context.Background(), created.ID, spec)
	if err != nil {
		t.Fatalf("update job: %v", err)
	}
	if updated.Title != "Senior Library Assistant" {
		t.Fatalf("title not updated: %+v", updated)
	}
	if updated.FilledPositions != 1 || updated.PostedBy != "admin-1" {
		t.Fatalf("update must not touch counters or poster: %+v", updated)
	}
}

func TestService_UpdateCannotDropTotalBelowFilled(t *testing.T) {
	svc := New(memory.New(), nil)

	spec := validSpec()
	spec.TotalPositions = 3
	created, err := svc.Create(context.Background(), spec, "admin-1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.IncrementFilled(context.Background(), created.ID); err != nil {
			t.Fatalf("increment filled: %v", err)
		}
	}

	shrunk := validSpec()
	shrunk.TotalPositions = 1
	if _, err := svc.Update(context.Background(), created.ID, shrunk); !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected invalid input shrinking below filled count, got %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.TotalPositions != 3 || got.FilledPositions != 2 {
		t.Fatalf("rejected update must leave the posting untouched: %+v", got)
	}

	// Shrinking down to exactly the filled count is allowed.
	exact := validSpec()
	exact.TotalPositions = 2
	updated, err := svc.Update(context.Background(), created.ID, exact)
	if err != nil {
		t.Fatalf("update to filled count: %v", err)
	}
	if updated.TotalPositions != 2 {
		t.Fatalf("total not updated: %+v", updated)
	}
}
