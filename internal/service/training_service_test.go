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

func TestDeactivateTrainingCancelsPendingApplications(t *testing.T) {
	f := newFixture(t)
	tr := f.training(t, 5)

	pending := f.apply(t, tr.ID, 1)
	approved := f.apply(t, tr.ID, 2)
	_, err := f.applications.Approve(f.ctx, f.hr, approved.ID, ApproveRequest{})
	require.NoError(t, err)

	training, cancelled, err := f.trainings.DeactivateTraining(f.ctx, f.hr, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TrainingInactive, training.Status)
	assert.Equal(t, []uint{pending.ID}, cancelled)

	p := f.reloadApplication(t, pending.ID)
	assert.Equal(t, model.ApplicationCancelled, p.Status)
	assert.Equal(t, "Training program discontinued", p.CancellationReason)
	assert.NotNil(t, p.CancelledAt)

	a := f.reloadApplication(t, approved.ID)
	assert.Equal(t, model.ApplicationApproved, a.Status)
	assert.Empty(t, a.CancellationReason)

	reloaded := f.reloadTraining(t, tr.ID)
	assert.Equal(t, model.TrainingInactive, reloaded.Status)
	assert.Equal(t, 1, reloaded.EnrolledCount)

	assert.Contains(t, f.events.types(), EventTrainingDeactivated)
}

func TestDeactivateTrainingRequiresHR(t *testing.T) {
	f := newFixture(t)
	tr := f.training(t, 0)

	_, _, err := f.trainings.DeactivateTraining(f.ctx, testutil.Employee(10, 1), tr.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, _, err = f.trainings.DeactivateTraining(f.ctx, f.hr, 9999)
	assert.ErrorIs(t, err, util.ErrTrainingNotFound)
}

func TestUpdateTrainingStatus(t *testing.T) {
	f := newFixture(t)
	tr := f.training(t, 0)

	inactive := model.TrainingInactive
	_, err := f.trainings.UpdateTraining(f.ctx, f.hr, tr.ID, UpdateTrainingRequest{Status: &inactive})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, _, err = f.trainings.DeactivateTraining(f.ctx, f.hr, tr.ID)
	require.NoError(t, err)

	active := model.TrainingActive
	limit := 3
	updated, err := f.trainings.UpdateTraining(f.ctx, f.hr, tr.ID, UpdateTrainingRequest{Status: &active, MaxParticipants: &limit})
	require.NoError(t, err)
	assert.Equal(t, model.TrainingActive, updated.Status)
	assert.Equal(t, 3, updated.MaxParticipants)

	view := NewTrainingView(updated)
	assert.False(t, view.IsFull)
	require.NotNil(t, view.AvailableSlots)
	assert.Equal(t, 3, *view.AvailableSlots)
}

func TestTrainingViewUnlimited(t *testing.T) {
	view := NewTrainingView(&model.Training{MaxParticipants: 0, EnrolledCount: 40})
	assert.False(t, view.IsFull)
	assert.Nil(t, view.AvailableSlots)

	view = NewTrainingView(&model.Training{MaxParticipants: 2, EnrolledCount: 3})
	assert.True(t, view.IsFull)
	assert.Equal(t, 0, *view.AvailableSlots)
}

func TestTrainingSessions(t *testing.T) {
	f := newFixture(t)
	tr := f.training(t, 0)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := f.trainings.CreateSession(f.ctx, f.hr, tr.ID, SessionRequest{Title: "Day 1", StartsAt: start, EndsAt: start})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	day2, err := f.trainings.CreateSession(f.ctx, f.hr, tr.ID, SessionRequest{Title: "Day 2", StartsAt: start.AddDate(0, 0, 1), EndsAt: start.AddDate(0, 0, 1).Add(3 * time.Hour)})
	require.NoError(t, err)
	_, err = f.trainings.CreateSession(f.ctx, f.hr, tr.ID, SessionRequest{Title: "Day 1", StartsAt: start, EndsAt: start.Add(3 * time.Hour)})
	require.NoError(t, err)

	sessions, err := f.trainings.ListSessions(f.ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Day 1", sessions[0].Title)

	require.NoError(t, f.trainings.DeleteSession(f.ctx, f.hr, tr.ID, day2.ID))
	err = f.trainings.DeleteSession(f.ctx, f.hr, tr.ID, day2.ID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	_, err = f.trainings.ListSessions(f.ctx, 9999)
	assert.ErrorIs(t, err, util.ErrTrainingNotFound)
}
