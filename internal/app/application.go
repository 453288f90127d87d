package app

import (
	"context"
	"fmt"

	applicationsvc "github.com/campusworks/workstudy/internal/app/services/applications"
	feedbacksvc "github.com/campusworks/workstudy/internal/app/services/feedback"
	"github.com/campusworks/workstudy/internal/app/services/jobs"
	"github.com/campusworks/workstudy/internal/app/services/keepalive"
	"github.com/campusworks/workstudy/internal/app/services/reporting"
	"github.com/campusworks/workstudy/internal/app/services/users"
	workhourssvc "github.com/campusworks/workstudy/internal/app/services/workhours"
	"github.com/campusworks/workstudy/internal/app/storage"
	"github.com/campusworks/workstudy/internal/app/storage/memory"
	"github.com/campusworks/workstudy/internal/app/system"
	"github.com/campusworks/workstudy/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users        storage.UserStore
	Jobs         storage.JobStore
	Applications storage.ApplicationStore
	WorkHours    storage.WorkHoursStore
	Feedback     storage.FeedbackStore
}

// Options carries optional application settings.
type Options struct {
	KeepAlive keepalive.Config
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users        *users.Service
	Jobs         *jobs.Service
	Applications *applicationsvc.Service
	WorkHours    *workhourssvc.Service
	Feedback     *feedbacksvc.Service
	Reporting    *reporting.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Jobs == nil {
		stores.Jobs = mem
	}
	if stores.Applications == nil {
		stores.Applications = mem
	}
	if stores.WorkHours == nil {
		stores.WorkHours = mem
	}
	if stores.Feedback == nil {
		stores.Feedback = mem
	}

	manager := system.NewManager(log)

	userService := users.New(stores.Users, log)
	jobService := jobs.New(stores.Jobs, log)
	applicationService := applicationsvc.New(stores.Jobs, stores.Applications, log)
	workHoursService := workhourssvc.New(stores.Jobs, stores.WorkHours, log)
	feedbackService := feedbacksvc.New(stores.Users, stores.Jobs, stores.Feedback, log)
	reportingService := reporting.New(stores.Users, stores.Jobs, stores.Applications, stores.WorkHours, stores.Feedback, log)

	for _, name := range []string{"users", "jobs", "applications", "workhours", "feedback", "reporting"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}
	if err := manager.Register(keepalive.New(opts.KeepAlive, log)); err != nil {
		return nil, fmt.Errorf("register keepalive service: %w", err)
	}

	return &Application{
		manager:      manager,
		log:          log,
		Users:        userService,
		Jobs:         jobService,
		Applications: applicationService,
		WorkHours:    workHoursService,
		Feedback:     feedbackService,
		Reporting:    reportingService,
	}, nil
}

// Start brings up the managed services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop shuts down the managed services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
