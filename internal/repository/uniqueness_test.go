package repository

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProgressRowIsUniquePerUserAndCourse(t *testing.T) {
	repo := NewProgressRepository(testutil.NewDB(t))

	row := func(userID, courseID uint) *model.LearningProgress {
		return &model.LearningProgress{
			UserID:   userID,
			CourseID: courseID,
			Status:   model.ProgressNotStarted,
			Source:   model.SourceDirect,
		}
	}

	require.NoError(t, repo.Create(row(5, 1)))
	assert.ErrorIs(t, repo.Create(row(5, 1)), gorm.ErrDuplicatedKey)

	require.NoError(t, repo.Create(row(5, 2)))
	require.NoError(t, repo.Create(row(6, 1)))

	n, err := repo.CountForCourse(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestOnlyOneActiveApplicationIsStored(t *testing.T) {
	repo := NewApplicationRepository(testutil.NewDB(t))

	app := func(status model.ApplicationStatus) *model.TrainingApplication {
		return &model.TrainingApplication{
			TrainingID:  3,
			EmployeeID:  7,
			Status:      status,
			SubmittedAt: time.Now(),
		}
	}

	first := app(model.ApplicationApplied)
	require.NoError(t, repo.Create(first))
	assert.ErrorIs(t, repo.Create(app(model.ApplicationApplied)), gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, repo.Create(app(model.ApplicationApproved)), gorm.ErrDuplicatedKey)

	// terminal rows carry no active key and never collide
	require.NoError(t, repo.Create(app(model.ApplicationRejected)))
	require.NoError(t, repo.Create(app(model.ApplicationCancelled)))

	first.Status = model.ApplicationCancelled
	require.NoError(t, repo.Save(first))
	require.NoError(t, repo.Create(app(model.ApplicationApplied)))
}
