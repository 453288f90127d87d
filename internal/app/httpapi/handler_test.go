package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/campusworks/workstudy/internal/app"
	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/auth"
	"github.com/campusworks/workstudy/internal/middleware"
)

func newTestHandler(t *testing.T) (http.Handler, *app.Application) {
	t.Helper()
	core, err := app.New(app.Stores{}, app.Options{}, nil)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	tokens := auth.NewManager("test-secret", "workstudy", time.Hour)
	return NewHandler(core, tokens), core
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, as *user.User) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if as != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), as.ID, as.Username, string(as.Role)))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func registerUser(t *testing.T, h http.Handler, username, kind string) user.User {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/auth/register/"+kind, map[string]string{
		"username":  username,
		"password":  "secret123",
		"email":     username + "@campus.edu",
		"full_name": "Test " + username,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var u user.User
	decodeBody(t, rec, &u)
	return u
}

func createJob(t *testing.T, h http.Handler, admin user.User) job.Posting {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/jobs", map[string]interface{}{
		"title":                "Library Assistant",
		"description":          "Front desk duties.",
		"department":           "Library",
		"location":             "Main Library",
		"hourly_rate":          12.5,
		"max_hours_per_week":   15,
		"total_positions":      1,
		"application_deadline": "2026-12-01",
	}, &admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create job: status %d body %s", rec.Code, rec.Body.String())
	}
	var p job.Posting
	decodeBody(t, rec, &p)
	return p
}

func TestHandler_RegisterAndLogin(t *testing.T) {
	h, _ := newTestHandler(t)
	registerUser(t, h, "jdoe", "student")

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "jdoe",
		"password": "secret123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" || resp.User.Username != "jdoe" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "jdoe",
		"password": "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestHandler_JobLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := registerUser(t, h, "boss", "admin")
	student := registerUser(t, h, "jdoe", "student")

	posting := createJob(t, h, admin)

	// Students cannot create jobs.
	rec := doJSON(t, h, http.MethodPost, "/api/jobs", map[string]interface{}{
		"title": "x", "description": "x", "department": "x", "location": "x",
		"hourly_rate": 1, "max_hours_per_week": 5, "total_positions": 1,
		"application_deadline": "2026-12-01",
	}, &student)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student job create, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/jobs/active", nil, &student)
	if rec.Code != http.StatusOK {
		t.Fatalf("list active: status %d", rec.Code)
	}
	var active []job.Posting
	decodeBody(t, rec, &active)
	if len(active) != 1 || active[0].ID != posting.ID {
		t.Fatalf("unexpected active jobs %+v", active)
	}

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/jobs/%s/close", posting.ID), nil, &admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("close job: status %d body %s", rec.Code, rec.Body.String())
	}
	var closed job.Posting
	decodeBody(t, rec, &closed)
	if closed.Status != job.StatusClosed {
		t.Fatalf("expected CLOSED, got %s", closed.Status)
	}
}

func TestHandler_ApplicationFlow(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := registerUser(t, h, "boss", "admin")
	student := registerUser(t, h, "jdoe", "student")
	posting := createJob(t, h, admin)

	rec := doJSON(t, h, http.MethodPost, "/api/applications", map[string]string{
		"job_id":       posting.ID,
		"cover_letter": "I would like this job.",
	}, &student)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status %d body %s", rec.Code, rec.Body.String())
	}
	var submitted application.Record
	decodeBody(t, rec, &submitted)

	// Duplicate application.
	rec = doJSON(t, h, http.MethodPost, "/api/applications", map[string]string{
		"job_id":       posting.ID,
		"cover_letter": "Again.",
	}, &student)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}

	// Students cannot review.
	rec = doJSON(t, h, http.MethodPut, "/api/applications/"+submitted.ID+"/review", map[string]string{
		"status": "APPROVED",
	}, &student)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student review, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/applications/"+submitted.ID+"/review", map[string]string{
		"status": "approved",
		"notes":  "welcome aboard",
	}, &admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("review: status %d body %s", rec.Code, rec.Body.String())
	}
	var approved application.Record
	decodeBody(t, rec, &approved)
	if approved.Status != application.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", approved.Status)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/jobs/"+posting.ID, nil, &admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("get job: status %d", rec.Code)
	}
	var filled job.Posting
	decodeBody(t, rec, &filled)
	if filled.Status != job.StatusFilled || filled.FilledPositions != 1 {
		t.Fatalf("expected filled posting, got %+v", filled)
	}
}

func TestHandler_WorkHoursFlow(t *testing.T) {
	h, core := newTestHandler(t)
	admin := registerUser(t, h, "boss", "admin")
	student := registerUser(t, h, "jdoe", "student")
	posting := createJob(t, h, admin)

	rec := doJSON(t, h, http.MethodPost, "/api/workhours", map[string]string{
		"job_id":      posting.ID,
		"work_date":   "2026-03-02",
		"start_time":  "09:00",
		"end_time":    "12:30",
		"description": "shift",
	}, &student)
	if rec.Code != http.StatusCreated {
		t.Fatalf("log hours: status %d body %s", rec.Code, rec.Body.String())
	}
	var entry struct {
		ID          string  `json:"id"`
		HoursWorked float64 `json:"hours_worked"`
	}
	decodeBody(t, rec, &entry)
	if entry.HoursWorked != 3.50 {
		t.Fatalf("expected 3.50 hours, got %v", entry.HoursWorked)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/workhours/"+entry.ID+"/review", map[string]string{
		"status": "APPROVED",
	}, &admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("review hours: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/workhours/my/total", nil, &student)
	if rec.Code != http.StatusOK {
		t.Fatalf("total: status %d", rec.Code)
	}
	var total map[string]float64
	decodeBody(t, rec, &total)
	if total["total_approved_hours"] != 3.50 {
		t.Fatalf("expected 3.50 total, got %v", total)
	}

	// Reviewed entries are locked.
	rec = doJSON(t, h, http.MethodDelete, "/api/workhours/"+entry.ID, nil, &student)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 deleting reviewed entry, got %d", rec.Code)
	}

	// Sanity check through the service layer too.
	got, err := core.WorkHours.Get(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got.ApprovedBy != admin.ID {
		t.Fatalf("expected reviewer %s, got %q", admin.ID, got.ApprovedBy)
	}
}

func TestHandler_Dashboards(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := registerUser(t, h, "boss", "admin")
	student := registerUser(t, h, "jdoe", "student")
	createJob(t, h, admin)

	rec := doJSON(t, h, http.MethodGet, "/api/dashboard/admin", nil, &admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin dashboard: status %d", rec.Code)
	}
	var dash map[string]interface{}
	decodeBody(t, rec, &dash)
	if dash["total_students"] != float64(1) || dash["active_jobs"] != float64(1) {
		t.Fatalf("unexpected dashboard %+v", dash)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/dashboard/admin", nil, &student)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student on admin dashboard, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/dashboard/student", nil, &student)
	if rec.Code != http.StatusOK {
		t.Fatalf("student dashboard: status %d", rec.Code)
	}
}

func TestHandler_UnknownFieldRejected(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "jdoe",
		"password": "secret123",
		"extra":    "field",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}
