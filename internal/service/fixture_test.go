package service

import (
	"context"
	"hrm_backend/internal/config"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/testutil"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db     *gorm.DB
	ctx    context.Context
	events *recordingPublisher
	hr     model.Actor

	courseRepo   *repository.CourseRepository
	progressRepo *repository.ProgressRepository
	planRepo     *repository.LearningPlanRepository
	trainingRepo *repository.TrainingRepository
	appRepo      *repository.ApplicationRepository

	courses      *CourseService
	plans        *LearningPlanService
	enrollment   *EnrollmentService
	trainings    *TrainingService
	applications *ApplicationService
	completions  *CompletionService
	analytics    *AnalyticsService
	reconcile    *ReconcileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	f := &fixture{
		db:           db,
		ctx:          context.Background(),
		events:       &recordingPublisher{},
		hr:           testutil.HRAdmin(),
		courseRepo:   repository.NewCourseRepository(db),
		progressRepo: repository.NewProgressRepository(db),
		planRepo:     repository.NewLearningPlanRepository(db),
		trainingRepo: repository.NewTrainingRepository(db),
		appRepo:      repository.NewApplicationRepository(db),
	}

	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{
		Type:      "local",
		LocalPath: t.TempDir(),
		PublicURL: "http://files.test",
	}})

	f.courses = NewCourseService(db, f.courseRepo)
	f.plans = NewLearningPlanService(db, f.planRepo, f.courseRepo)
	f.enrollment = NewEnrollmentService(db, f.progressRepo, f.courseRepo, f.planRepo, f.events)
	f.trainings = NewTrainingService(db, f.trainingRepo, f.appRepo, f.events)
	f.applications = NewApplicationService(db, f.appRepo, f.trainingRepo, f.events)
	f.completions = NewCompletionService(db, repository.NewCompletionRepository(db), f.appRepo, f.trainingRepo, storage, f.events)
	f.analytics = NewAnalyticsService(db, f.progressRepo, f.courseRepo, f.planRepo, f.trainingRepo, f.appRepo)
	f.reconcile = NewReconcileService(db, f.courseRepo, f.progressRepo, f.trainingRepo, f.appRepo)
	return f
}

func (f *fixture) course(t *testing.T, title string) *model.Course {
	t.Helper()
	c, err := f.courses.CreateCourse(f.ctx, f.hr, CreateCourseRequest{
		Title:    title,
		Category: model.CategoryTechnical,
		Level:    model.CourseBeginner,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) plan(t *testing.T, courseIDs ...uint) *model.LearningPlan {
	t.Helper()
	p, err := f.plans.CreatePlan(f.ctx, f.hr, CreatePlanRequest{Title: "Onboarding", Courses: courseIDs})
	require.NoError(t, err)
	return p
}

func (f *fixture) training(t *testing.T, maxParticipants int) *model.Training {
	t.Helper()
	tr, err := f.trainings.CreateTraining(f.ctx, f.hr, CreateTrainingRequest{
		ProgramName:     "Secure coding",
		MaxParticipants: maxParticipants,
	})
	require.NoError(t, err)
	return tr
}

func (f *fixture) apply(t *testing.T, trainingID, employeeID uint) *model.TrainingApplication {
	t.Helper()
	app, err := f.applications.Apply(f.ctx, testutil.Employee(employeeID*10, employeeID), ApplyRequest{
		TrainingID: trainingID,
		EmployeeID: employeeID,
	})
	require.NoError(t, err)
	return app
}

func (f *fixture) reloadCourse(t *testing.T, id uint) *model.Course {
	t.Helper()
	c, err := f.courseRepo.FindByID(id)
	require.NoError(t, err)
	return c
}

func (f *fixture) reloadTraining(t *testing.T, id uint) *model.Training {
	t.Helper()
	tr, err := f.trainingRepo.FindByID(id)
	require.NoError(t, err)
	return tr
}

func (f *fixture) reloadApplication(t *testing.T, id uint) *model.TrainingApplication {
	t.Helper()
	app, err := f.appRepo.FindByID(id)
	require.NoError(t, err)
	return app
}

// requireCountsMatchLedger checks that every course cache equals its ledger.
func (f *fixture) requireCountsMatchLedger(t *testing.T) {
	t.Helper()
	ids, err := f.courseRepo.AllIDs()
	require.NoError(t, err)
	for _, id := range ids {
		check, err := f.reconcile.CheckCourse(f.ctx, id)
		require.NoError(t, err)
		require.Truef(t, check.Consistent, "course %d: cached %d, ledger %d", id, check.CachedCount, check.LedgerCount)
	}
}
