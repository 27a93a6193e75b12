package service

import (
	"errors"
	"hrm_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errWriteFailed = errors.New("write failed")

// failUpdates makes every UPDATE against table fail until the returned func
// is called.
func failUpdates(t *testing.T, db *gorm.DB, table string) func() {
	t.Helper()
	name := "test:fail_updates_" + table
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errWriteFailed)
		}
	}))
	return func() {
		require.NoError(t, db.Callback().Update().Remove(name))
	}
}

func TestEnrollRollsBackWhenCacheWriteFails(t *testing.T) {
	f := newFixture(t)
	c := f.course(t, "Go basics")

	restore := failUpdates(t, f.db, "courses")
	_, err := f.enrollment.Enroll(f.ctx, f.hr, EnrollRequest{UserID: 5, CourseID: c.ID})
	require.ErrorIs(t, err, errWriteFailed)
	restore()

	_, err = f.progressRepo.FindByUserCourse(5, c.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "ledger row must not survive")
	assert.Equal(t, 0, f.reloadCourse(t, c.ID).EnrolledCount)
	assert.Empty(t, f.events.types())

	_, err = f.enrollment.Enroll(f.ctx, f.hr, EnrollRequest{UserID: 5, CourseID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.reloadCourse(t, c.ID).EnrolledCount)
	f.requireCountsMatchLedger(t)
}

func TestDeactivateTrainingRollsBackWhenCascadeFails(t *testing.T) {
	f := newFixture(t)
	tr := f.training(t, 0)
	pending := f.apply(t, tr.ID, 1)
	f.events.events = nil

	restore := failUpdates(t, f.db, "training_applications")
	_, _, err := f.trainings.DeactivateTraining(f.ctx, f.hr, tr.ID)
	require.ErrorIs(t, err, errWriteFailed)
	restore()

	assert.Equal(t, model.TrainingActive, f.reloadTraining(t, tr.ID).Status)
	reloaded := f.reloadApplication(t, pending.ID)
	assert.Equal(t, model.ApplicationApplied, reloaded.Status)
	assert.Empty(t, reloaded.CancellationReason)
	assert.Nil(t, reloaded.CancelledAt)
	assert.Empty(t, f.events.types())

	_, cancelled, err := f.trainings.DeactivateTraining(f.ctx, f.hr, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{pending.ID}, cancelled)
	assert.Equal(t, model.TrainingInactive, f.reloadTraining(t, tr.ID).Status)
}
