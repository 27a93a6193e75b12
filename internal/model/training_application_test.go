package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationTransitions(t *testing.T) {
	all := []ApplicationStatus{ApplicationApplied, ApplicationApproved, ApplicationRejected, ApplicationCancelled, ApplicationCompleted}
	allowed := map[ApplicationStatus][]ApplicationStatus{
		ApplicationApplied:  {ApplicationApproved, ApplicationRejected, ApplicationCancelled},
		ApplicationApproved: {ApplicationCancelled, ApplicationCompleted},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestApplicationStatusClasses(t *testing.T) {
	assert.True(t, ApplicationApplied.IsActive())
	assert.True(t, ApplicationApproved.IsActive())
	assert.False(t, ApplicationCompleted.IsActive())

	assert.True(t, ApplicationRejected.IsTerminal())
	assert.True(t, ApplicationCancelled.IsTerminal())
	assert.True(t, ApplicationCompleted.IsTerminal())
	assert.False(t, ApplicationApproved.IsTerminal())

	assert.False(t, ApplicationStatus("pending").Valid())
}

func TestTrainingCapacity(t *testing.T) {
	unlimited := Training{MaxParticipants: 0, EnrolledCount: 100}
	assert.False(t, unlimited.IsFull())
	assert.Nil(t, unlimited.AvailableSlots())

	capped := Training{MaxParticipants: 2, EnrolledCount: 1}
	assert.False(t, capped.IsFull())
	assert.Equal(t, 1, *capped.AvailableSlots())

	capped.EnrolledCount = 2
	assert.True(t, capped.IsFull())
	assert.Equal(t, 0, *capped.AvailableSlots())
}

func TestActorOwnership(t *testing.T) {
	employee := Actor{UserID: 7, EmployeeID: 70, Role: RoleEmployee}
	assert.True(t, employee.ActsForUser(7))
	assert.False(t, employee.ActsForUser(8))
	assert.True(t, employee.ActsForEmployee(70))
	assert.False(t, employee.ActsForEmployee(71))

	anonymous := Actor{Role: RoleEmployee}
	assert.False(t, anonymous.ActsForUser(0))

	hr := Actor{UserID: 1, Role: RoleHRAdmin}
	assert.True(t, hr.ActsForUser(8))
	assert.True(t, Actor{Role: RoleAdmin}.IsHRAdmin())
	assert.False(t, Actor{Role: RoleManager}.IsHRAdmin())
}
