// Package httpapi exposes the application services as a REST API.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	app "github.com/campusworks/workstudy/internal/app"
	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/domain/workhours"
	feedbacksvc "github.com/campusworks/workstudy/internal/app/services/feedback"
	"github.com/campusworks/workstudy/internal/app/services/users"
	workhourssvc "github.com/campusworks/workstudy/internal/app/services/workhours"
	"github.com/campusworks/workstudy/internal/auth"
	"github.com/campusworks/workstudy/internal/errors"
	"github.com/campusworks/workstudy/internal/httputil"
	"github.com/campusworks/workstudy/internal/middleware"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app    *app.Application
	tokens *auth.Manager
}

// NewHandler returns a mux exposing the REST API.
func NewHandler(application *app.Application, tokens *auth.Manager) http.Handler {
	h := &handler{app: application, tokens: tokens}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/api/auth/", h.authRoutes)
	mux.HandleFunc("/api/users/", h.userRoutes)
	mux.HandleFunc("/api/jobs", h.jobCollection)
	mux.HandleFunc("/api/jobs/", h.jobResources)
	mux.HandleFunc("/api/applications", h.applicationCollection)
	mux.HandleFunc("/api/applications/", h.applicationResources)
	mux.HandleFunc("/api/workhours", h.workHoursCollection)
	mux.HandleFunc("/api/workhours/", h.workHoursResources)
	mux.HandleFunc("/api/feedback", h.feedbackCollection)
	mux.HandleFunc("/api/feedback/", h.feedbackResources)
	mux.HandleFunc("/api/dashboard/", h.dashboardRoutes)
	return mux
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- auth -------------------------------------------------------------------

func (h *handler) authRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/auth/")
	if path == "me" {
		h.currentUser(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch path {
	case "login":
		h.login(w, r)
	case "register/student":
		h.register(w, r, user.RoleStudent)
	case "register/admin":
		h.register(w, r, user.RoleAdmin)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidInput("invalid request body: %v", err))
		return
	}

	u, err := h.app.Users.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, expires, err := h.tokens.Generate(u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expires,
		"user":       u,
	})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request, role user.Role) {
	var payload users.Registration
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidInput("invalid request body: %v", err))
		return
	}

	var (
		u   user.User
		err error
	)
	if role == user.RoleAdmin {
		u, err = h.app.Users.RegisterAdmin(r.Context(), payload)
	} else {
		u, err = h.app.Users.RegisterStudent(r.Context(), payload)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// --- users ------------------------------------------------------------------

func (h *handler) userRoutes(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "me":
		h.currentUser(w, r)
	case "students":
		if !h.requireAdmin(w, r) {
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.Users.ListStudents(r.Context()) })
	case "admins":
		if !h.requireAdmin(w, r) {
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.Users.ListAdmins(r.Context()) })
	default:
		h.userByID(w, r, parts[0])
	}
}

func (h *handler) currentUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := h.app.Users.Get(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)

	case http.MethodPut:
		var payload users.ProfileUpdate
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, errors.InvalidInput("invalid request body: %v", err))
			return
		}
		u, err := h.app.Users.UpdateProfile(r.Context(), userID, payload)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) userByID(w http.ResponseWriter, r *http.Request, id string) {
	if !h.requireAdmin(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := h.app.Users.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)

	case http.MethodDelete:
		if _, err := h.app.Users.Deactivate(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- jobs -------------------------------------------------------------------

func (h *handler) jobCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		postings, err := h.app.Jobs.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, postings)

	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var payload job.Spec
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, errors.InvalidInput("invalid request body: %v", err))
			return
		}
		posting, err := h.app.Jobs.Create(r.Context(), payload, middleware.GetUserID(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, posting)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) jobResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/jobs"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "active":
		h.list(w, r, func() (interface{}, error) { return h.app.Jobs.ListActive(r.Context()) })
		return
	case "department":
		if len(parts) != 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.Jobs.ListByDepartment(r.Context(), parts[1]) })
		return
	}

	jobID := parts[0]
	if len(parts) == 2 && parts[1] == "close" {
		if r.Method != http.MethodPatch && r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !h.requireAdmin(w, r) {
			return
		}
		posting, err := h.app.Jobs.Close(r.Context(), jobID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, posting)
		return
	}
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		posting, err := h.app.Jobs.Get(r.Context(), jobID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, posting)

	case http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		var payload job.Spec
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, errors.InvalidInput("invalid request body: %v", err))
			return
		}
		posting, err := h.app.Jobs.Update(r.Context(), jobID, payload)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, posting)

	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		if err := h.app.Jobs.Delete(r.Context(), jobID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- applications -----------------------------------------------------------

func (h *handler) applicationCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireAdmin(w, r) {
			return
		}
		recs, err := h.app.Applications.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)

	case http.MethodPost:
		studentID, ok := h.requireStudent(w, r)
		if !ok {
			return
		}
		var payload struct {
			JobID       string `json:"job_id"`
			CoverLetter string `json:"cover_letter"`
			ResumeURL   string `json:"resume_url"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, errors.InvalidInput("invalid request body: %v", err))
			return
		}
		rec, err := h.app.Applications.Submit(r.Context(), payload.JobID, studentID, payload.CoverLetter, payload.ResumeURL)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) applicationResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/applications"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "my":
		studentID, ok := h.requireStudent(w, r)
		if !ok {
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.Applications.ListByStudent(r.Context(), studentID) })
		return
	case "job":
		if len(parts) != 2 || !h.requireAdmin(w, r) {
			if len(parts) != 2 {
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.Applications.ListByJob(r.Context(), parts[1]) })
		return
	case "status":
		if len(parts) != 2 || !h.requireAdmin(w, r) {
			if len(parts) != 2 {
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		h.list(w, r, func() (interface{}, error) {
			return h.app.Applications.ListByStatus(r.Context(), application.Status(strings.ToUpper(parts[1])))
		})
		return
	}

	id := parts[0]
	if len(parts) == 2 {
		switch parts[1] {
		case "status", "review":
			h.reviewApplication(w, r, id)
		case "withdraw":
			h.withdrawApplication(w, r, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
		return
	}

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rec, err := h.app.Applications.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if middleware.GetUserRole(r.Context()) != string(user.RoleAdmin) && rec.StudentID != middleware.GetUserID(r.Context()) {
		writeError(w, errors.Forbidden("students may only view their own applications"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) reviewApplication(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}
	var payload struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidInput("invalid request body: %v", err))
		return
	}
	rec, err := h.app.Applications.Review(r.Context(), id, application.Status(strings.ToUpper(payload.Status)), payload.Notes, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) withdrawApplication(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	studentID, ok := h.requireStudent(w, r)
	if !ok {
		return
	}
	rec, err := h.app.Applications.Withdraw(r.Context(), id, studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// --- work hours -------------------------------------------------------------

func (h *handler) workHoursCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireAdmin(w, r) {
			return
		}
		entries, err := h.app.WorkHours.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		studentID, ok := h.requireStudent(w, r)
		if !ok {
			return
		}
		var payload workhourssvc.Entry
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, errors.InvalidInput("invalid request body: %v", err))
			return
		}
		entry, err := h.app.WorkHours.Log(r.Context(), studentID, payload)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) workHoursResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/workhours"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "my":
		h.myWorkHours(w, r, parts[1:])
		return
	case "student":
		h.studentWorkHours(w, r, parts[1:])
		return
	case "job":
		if len(parts) != 2 || !h.requireAdmin(w, r) {
			if len(parts) != 2 {
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.WorkHours.ListByJob(r.Context(), parts[1]) })
		return
	case "status":
		if len(parts) != 2 || !h.requireAdmin(w, r) {
			if len(parts) != 2 {
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		h.list(w, r, func() (interface{}, error) {
			return h.app.WorkHours.ListByStatus(r.Context(), workhours.Status(strings.ToUpper(parts[1])))
		})
		return
	}

	id := parts[0]
	if len(parts) == 2 && (parts[1] == "status" || parts[1] == "review") {
		h.reviewWorkHours(w, r, id)
		return
	}
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := h.app.WorkHours.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if middleware.GetUserRole(r.Context()) != string(user.RoleAdmin) && entry.StudentID != middleware.GetUserID(r.Context()) {
			writeError(w, errors.Forbidden("students may only view their own work hours"))
			return
		}
		writeJSON(w, http.StatusOK, entry)

	case http.MethodPut:
		studentID, ok := h.requireStudent(w, r)
		if !ok {
			return
		}
		var payload workhourssvc.Entry
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, errors.InvalidInput("invalid request body: %v", err))
			return
		}
		entry, err := h.app.WorkHours.Update(r.Context(), id, studentID, payload)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)

	case http.MethodDelete:
		studentID, ok := h.requireStudent(w, r)
		if !ok {
			return
		}
		if err := h.app.WorkHours.Delete(r.Context(), id, studentID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) myWorkHours(w http.ResponseWriter, r *http.Request, rest []string) {
	studentID, ok := h.requireStudent(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if len(rest) == 0 {
		entries, err := h.app.WorkHours.ListByStudent(r.Context(), studentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	switch rest[0] {
	case "total":
		total, err := h.app.WorkHours.TotalApprovedForStudent(r.Context(), studentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]float64{"total_approved_hours": total})

	case "range":
		entries, err := h.app.WorkHours.ListByStudentAndDateRange(r.Context(), studentID, r.URL.Query().Get("start"), r.URL.Query().Get("end"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case "job":
		switch {
		case len(rest) == 2:
			entries, err := h.app.WorkHours.ListByStudentAndJob(r.Context(), studentID, rest[1])
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, entries)
		case len(rest) == 3 && rest[2] == "total":
			total, err := h.app.WorkHours.TotalApprovedForStudentAndJob(r.Context(), studentID, rest[1])
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]float64{"total_approved_hours": total})
		default:
			w.WriteHeader(http.StatusNotFound)
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) studentWorkHours(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	switch {
	case len(rest) == 1:
		entries, err := h.app.WorkHours.ListByStudent(r.Context(), rest[0])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	case len(rest) == 2 && rest[1] == "total":
		total, err := h.app.WorkHours.TotalApprovedForStudent(r.Context(), rest[0])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]float64{"total_approved_hours": total})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) reviewWorkHours(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}
	var payload struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidInput("invalid request body: %v", err))
		return
	}
	entry, err := h.app.WorkHours.Review(r.Context(), id, workhours.Status(strings.ToUpper(payload.Status)), payload.Notes, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// --- feedback ---------------------------------------------------------------

func (h *handler) feedbackCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireAdmin(w, r) {
			return
		}
		recs, err := h.app.Feedback.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)

	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var payload feedbacksvc.Input
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, errors.InvalidInput("invalid request body: %v", err))
			return
		}
		rec, err := h.app.Feedback.Create(r.Context(), middleware.GetUserID(r.Context()), payload)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) feedbackResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/feedback"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "my":
		studentID, ok := h.requireStudent(w, r)
		if !ok {
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.Feedback.ListByStudent(r.Context(), studentID) })
		return
	case "student":
		if len(parts) != 2 || !h.requireAdmin(w, r) {
			if len(parts) != 2 {
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.Feedback.ListByStudent(r.Context(), parts[1]) })
		return
	case "job":
		if len(parts) != 2 || !h.requireAdmin(w, r) {
			if len(parts) != 2 {
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		h.list(w, r, func() (interface{}, error) { return h.app.Feedback.ListByJob(r.Context(), parts[1]) })
		return
	}

	id := parts[0]
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := h.app.Feedback.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if middleware.GetUserRole(r.Context()) != string(user.RoleAdmin) && rec.StudentID != middleware.GetUserID(r.Context()) {
			writeError(w, errors.Forbidden("students may only view their own feedback"))
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		if err := h.app.Feedback.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- dashboard --------------------------------------------------------------

func (h *handler) dashboardRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch strings.TrimPrefix(r.URL.Path, "/api/dashboard/") {
	case "admin":
		if !h.requireAdmin(w, r) {
			return
		}
		dash, err := h.app.Reporting.Admin(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dash)

	case "student":
		studentID, ok := h.requireStudent(w, r)
		if !ok {
			return
		}
		dash, err := h.app.Reporting.Student(r.Context(), studentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dash)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// --- helpers ----------------------------------------------------------------

func (h *handler) list(w http.ResponseWriter, r *http.Request, fetch func() (interface{}, error)) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	result, err := fetch()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if middleware.GetUserRole(r.Context()) != string(user.RoleAdmin) {
		writeError(w, errors.Forbidden("admin role required"))
		return false
	}
	return true
}

func (h *handler) requireStudent(w http.ResponseWriter, r *http.Request) (string, bool) {
	if middleware.GetUserRole(r.Context()) != string(user.RoleStudent) {
		writeError(w, errors.Forbidden("student role required"))
		return "", false
	}
	id := middleware.GetUserID(r.Context())
	if id == "" {
		writeError(w, errors.Unauthorized("authentication required"))
		return "", false
	}
	return id, true
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = errors.Internal("internal error", err)
	}
	httputil.WriteErrorResponse(w, nil, serviceErr.HTTPStatus, string(serviceErr.Code), serviceErr.Message, serviceErr.Details)
}
