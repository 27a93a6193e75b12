package service

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/testutil"
	"hrm_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) enroll(t *testing.T, userID, courseID uint) *model.LearningProgress {
	t.Helper()
	row, err := f.enrollment.Enroll(f.ctx, f.hr, EnrollRequest{UserID: userID, CourseID: courseID})
	require.NoError(t, err)
	return row
}

func (f *fixture) touch(t *testing.T, rowID uint, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Model(&model.LearningProgress{}).Where("id = ?", rowID).Update("last_accessed", at).Error)
}

func TestLearningStreakCountsDistinctDays(t *testing.T) {
	f := newFixture(t)
	today := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)
	f.analytics.Now = func() time.Time { return today }

	var rows []*model.LearningProgress
	for _, title := range []string{"Go", "SQL", "Docker", "K8s", "Git"} {
		rows = append(rows, f.enroll(t, 5, f.course(t, title).ID))
	}
	f.touch(t, rows[0].ID, today.Add(-3*time.Hour))
	f.touch(t, rows[1].ID, today.Add(-2*time.Hour))
	f.touch(t, rows[2].ID, today.AddDate(0, 0, -3))
	f.touch(t, rows[3].ID, today.AddDate(0, 0, -29))
	f.touch(t, rows[4].ID, today.AddDate(0, 0, -40))

	streak, err := f.analytics.LearningStreak(f.ctx, testutil.Employee(5, 5), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	_, err = f.analytics.LearningStreak(f.ctx, testutil.Employee(6, 6), 5)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	streak, err = f.analytics.LearningStreak(f.ctx, f.hr, 99)
	require.NoError(t, err)
	assert.Zero(t, streak)
}

func TestPlanProgress(t *testing.T) {
	f := newFixture(t)
	a := f.course(t, "Go")
	b := f.course(t, "SQL")
	p := f.plan(t, a.ID, b.ID)

	row := f.enroll(t, 5, a.ID)
	_, err := f.enrollment.Complete(f.ctx, f.hr, row.ID, nil)
	require.NoError(t, err)

	progress, err := f.analytics.PlanProgress(f.ctx, testutil.Employee(5, 5), p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.TotalCourses)
	assert.Equal(t, 1, progress.CompletedCourses)
	assert.Equal(t, 50, progress.Percentage)
	require.Len(t, progress.Courses, 2)
	assert.True(t, progress.Courses[0].Enrolled)
	assert.False(t, progress.Courses[1].Enrolled)

	_, err = f.analytics.PlanProgress(f.ctx, f.hr, 9999, 5)
	assert.ErrorIs(t, err, util.ErrPlanNotFound)
}

func TestTrainingStatsUsesApplications(t *testing.T) {
	f := newFixture(t)
	tr := f.training(t, 3)

	approved := f.apply(t, tr.ID, 1)
	_, err := f.applications.Approve(f.ctx, f.hr, approved.ID, ApproveRequest{})
	require.NoError(t, err)
	rejected := f.apply(t, tr.ID, 2)
	_, err = f.applications.Reject(f.ctx, f.hr, rejected.ID, RejectRequest{RejectionReason: "full roster"})
	require.NoError(t, err)
	f.apply(t, tr.ID, 3)

	// a drifted cache does not leak into the stats
	require.NoError(t, f.db.Model(&model.Training{}).Where("id = ?", tr.ID).Update("enrolled_count", 3).Error)

	stats, err := f.analytics.TrainingStats(f.ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalApplicants)
	assert.Equal(t, 1, stats.EnrolledCount)
	assert.Equal(t, 1, stats.StatusCounts[model.ApplicationApplied])
	assert.Equal(t, 1, stats.StatusCounts[model.ApplicationApproved])
	assert.Equal(t, 1, stats.StatusCounts[model.ApplicationRejected])
	assert.Equal(t, 0, stats.StatusCounts[model.ApplicationCompleted])
	assert.Len(t, stats.StatusCounts, 5)
	assert.False(t, stats.IsFull)
	require.NotNil(t, stats.AvailableSlots)
	assert.Equal(t, 2, *stats.AvailableSlots)

	_, err = f.analytics.TrainingStats(f.ctx, 9999)
	assert.ErrorIs(t, err, util.ErrTrainingNotFound)
}

func TestCourseAnalyticsAndSummary(t *testing.T) {
	f := newFixture(t)
	course := f.course(t, "Go")
	other := f.course(t, "SQL")

	done := f.enroll(t, 1, course.ID)
	score := 90
	_, err := f.enrollment.Complete(f.ctx, f.hr, done.ID, &score)
	require.NoError(t, err)

	half := f.enroll(t, 2, course.ID)
	progress := 33
	_, err = f.enrollment.UpdateProgress(f.ctx, f.hr, half.ID, UpdateProgressRequest{Progress: &progress})
	require.NoError(t, err)
	f.enroll(t, 3, course.ID)

	analytics, err := f.analytics.CourseAnalytics(f.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, analytics.Enrolled)
	assert.Equal(t, 1, analytics.Completed)
	assert.Equal(t, 33.33, analytics.CompletionRate)
	assert.Equal(t, 44.33, analytics.AverageProgress)

	empty, err := f.analytics.CourseAnalytics(f.ctx, other.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Enrolled)
	assert.Zero(t, empty.CompletionRate)

	f.enroll(t, 1, other.ID)
	summary, err := f.analytics.UserLearningSummary(f.ctx, testutil.Employee(1, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalCourses)
	assert.Equal(t, 1, summary.StatusCounts[model.ProgressCompleted])
	assert.Equal(t, 1, summary.StatusCounts[model.ProgressNotStarted])
	assert.Equal(t, 0, summary.StatusCounts[model.ProgressOverdue])
	require.NotNil(t, summary.AverageScore)
	assert.Equal(t, 90.0, *summary.AverageScore)
	assert.Equal(t, 1, summary.LearningStreak)
}
