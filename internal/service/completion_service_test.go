package service

import (
	"bytes"
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/testutil"
	"hrm_backend/internal/util"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedApplication(t *testing.T, f *fixture, maxParticipants int, employeeID uint) (*model.Training, *model.TrainingApplication) {
	t.Helper()
	tr := f.training(t, maxParticipants)
	app := f.apply(t, tr.ID, employeeID)
	app, err := f.applications.Approve(f.ctx, f.hr, app.ID, ApproveRequest{})
	require.NoError(t, err)
	return tr, app
}

func TestCreateCompletionCompletesApplication(t *testing.T) {
	f := newFixture(t)
	tr, app := approvedApplication(t, f, 1, 1)
	require.Equal(t, 1, f.reloadTraining(t, tr.ID).EnrolledCount)

	score := 92.5
	completion, err := f.completions.CreateCompletion(f.ctx, f.hr, CreateCompletionRequest{
		EmployeeID:      1,
		ApplicationID:   &app.ID,
		CompletionDate:  time.Now(),
		ScorePercentage: &score,
		Grade:           " A ",
	})
	require.NoError(t, err)
	require.NotNil(t, completion.TrainingID)
	assert.Equal(t, tr.ID, *completion.TrainingID)
	assert.Equal(t, "A", completion.Grade)
	assert.False(t, completion.CertificateIssued)

	reloaded := f.reloadApplication(t, app.ID)
	assert.Equal(t, model.ApplicationCompleted, reloaded.Status)
	assert.NotNil(t, reloaded.CompletedAt)
	assert.Equal(t, 0, f.reloadTraining(t, tr.ID).EnrolledCount)

	_, err = f.completions.CreateCompletion(f.ctx, f.hr, CreateCompletionRequest{
		EmployeeID:     1,
		ApplicationID:  &app.ID,
		CompletionDate: time.Now(),
	})
	assert.ErrorIs(t, err, util.ErrDuplicateCompletion)

	// a completed application does not block a new one
	again, err := f.applications.Apply(f.ctx, testutil.Employee(10, 1), ApplyRequest{TrainingID: tr.ID, EmployeeID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApplied, again.Status)
}

func TestCreateCompletionValidatesApplication(t *testing.T) {
	f := newFixture(t)
	tr := f.training(t, 0)
	pending := f.apply(t, tr.ID, 1)

	_, err := f.completions.CreateCompletion(f.ctx, f.hr, CreateCompletionRequest{
		EmployeeID: 1, ApplicationID: &pending.ID, CompletionDate: time.Now(),
	})
	assert.ErrorIs(t, err, util.ErrApplicationNotApproved)
	assert.Equal(t, model.ApplicationApplied, f.reloadApplication(t, pending.ID).Status)

	_, err = f.completions.CreateCompletion(f.ctx, f.hr, CreateCompletionRequest{
		EmployeeID: 2, ApplicationID: &pending.ID, CompletionDate: time.Now(),
	})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = f.completions.CreateCompletion(f.ctx, testutil.Employee(10, 1), CreateCompletionRequest{
		EmployeeID: 1, CompletionDate: time.Now(),
	})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	missing := uint(9999)
	_, err = f.completions.CreateCompletion(f.ctx, f.hr, CreateCompletionRequest{
		EmployeeID: 1, TrainingID: &missing, CompletionDate: time.Now(),
	})
	assert.ErrorIs(t, err, util.ErrTrainingNotFound)

	standalone, err := f.completions.CreateCompletion(f.ctx, f.hr, CreateCompletionRequest{
		EmployeeID: 1, TrainingID: &tr.ID, CompletionDate: time.Now(),
	})
	require.NoError(t, err)
	assert.Nil(t, standalone.ApplicationID)
}

func multipartFile(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestIssueCertificate(t *testing.T) {
	f := newFixture(t)
	_, app := approvedApplication(t, f, 0, 1)
	completion, err := f.completions.CreateCompletion(f.ctx, f.hr, CreateCompletionRequest{
		EmployeeID: 1, ApplicationID: &app.ID, CompletionDate: time.Now(),
	})
	require.NoError(t, err)

	issued := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	file := multipartFile(t, "file", "cert.pdf", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))

	cert, err := f.completions.IssueCertificate(f.ctx, f.hr, completion.ID, IssueCertificateRequest{
		IssuedBy:  "Security Academy",
		IssueDate: issued,
	}, file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cert.CertificateNumber, "CERT-"))
	assert.True(t, strings.HasPrefix(cert.FilePath, "certificates/"))
	assert.True(t, strings.HasSuffix(cert.FilePath, ".pdf"))
	assert.Contains(t, cert.FileURL, "http://files.test/uploads/")

	local := f.completions.Storage.Provider.(*LocalStorageProvider)
	_, err = os.Stat(filepath.Join(local.Config.LocalPath, filepath.FromSlash(cert.FilePath)))
	assert.NoError(t, err)

	reloaded, err := f.completions.GetCompletion(f.ctx, f.hr, completion.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CertificateIssued)

	certs, err := f.completions.ListCertificates(f.ctx, testutil.Employee(10, 1), completion.ID)
	require.NoError(t, err)
	assert.Len(t, certs, 1)

	// no file is fine, a bad file type is not
	_, err = f.completions.IssueCertificate(f.ctx, f.hr, completion.ID, IssueCertificateRequest{IssuedBy: "HR", IssueDate: issued}, nil)
	require.NoError(t, err)

	bad := multipartFile(t, "file", "cert.txt", []byte("plain text certificate"))
	_, err = f.completions.IssueCertificate(f.ctx, f.hr, completion.ID, IssueCertificateRequest{IssuedBy: "HR", IssueDate: issued}, bad)
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	expired := issued.AddDate(0, 0, -1)
	_, err = f.completions.IssueCertificate(f.ctx, f.hr, completion.ID, IssueCertificateRequest{IssuedBy: "HR", IssueDate: issued, ExpiryDate: &expired}, nil)
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = f.completions.IssueCertificate(f.ctx, f.hr, 9999, IssueCertificateRequest{IssuedBy: "HR", IssueDate: issued}, nil)
	assert.ErrorIs(t, err, util.ErrCompletionNotFound)
}

func TestFeedbackIsUpsertedPerApplication(t *testing.T) {
	f := newFixture(t)
	_, app := approvedApplication(t, f, 0, 1)
	owner := testutil.Employee(10, 1)

	first, err := f.completions.SubmitFeedback(f.ctx, owner, app.ID, FeedbackRequest{Rating: 3, Comments: "ok"})
	require.NoError(t, err)
	second, err := f.completions.SubmitFeedback(f.ctx, owner, app.ID, FeedbackRequest{Rating: 5, Comments: "great", WouldRecommend: true})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	fb, err := f.completions.GetFeedback(f.ctx, f.hr, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)
	assert.Equal(t, "great", fb.Comments)
	assert.True(t, fb.WouldRecommend)

	_, err = f.completions.SubmitFeedback(f.ctx, testutil.Employee(20, 2), app.ID, FeedbackRequest{Rating: 1})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = f.completions.SubmitFeedback(f.ctx, owner, app.ID, FeedbackRequest{Rating: 6})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	tr := f.training(t, 0)
	pending := f.apply(t, tr.ID, 1)
	_, err = f.completions.SubmitFeedback(f.ctx, owner, pending.ID, FeedbackRequest{Rating: 4})
	assert.ErrorIs(t, err, util.ErrApplicationNotApproved)
}

func TestAssessmentAndPerformanceNote(t *testing.T) {
	f := newFixture(t)
	_, app := approvedApplication(t, f, 0, 1)
	trainer := model.Actor{UserID: 30, Role: model.RoleTrainer}
	manager := model.Actor{UserID: 40, Role: model.RoleManager}

	_, err := f.completions.SubmitAssessment(f.ctx, testutil.Employee(10, 1), app.ID, AssessmentRequest{Score: 80})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.completions.SubmitAssessment(f.ctx, trainer, app.ID, AssessmentRequest{Score: 80, Strengths: "focus"})
	require.NoError(t, err)
	assessment, err := f.completions.SubmitAssessment(f.ctx, trainer, app.ID, AssessmentRequest{Score: 85})
	require.NoError(t, err)
	assert.Equal(t, 85, assessment.Score)

	got, err := f.completions.GetAssessment(f.ctx, manager, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, got.Score)

	_, err = f.completions.SubmitPerformanceNote(f.ctx, trainer, app.ID, PerformanceNoteRequest{Note: "applied lessons"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	note, err := f.completions.SubmitPerformanceNote(f.ctx, manager, app.ID, PerformanceNoteRequest{Note: "applied lessons", ImpactRating: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, note.ImpactRating)

	_, err = f.completions.GetPerformanceNote(f.ctx, testutil.Employee(10, 1), app.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestListCompletionsScopesEmployees(t *testing.T) {
	f := newFixture(t)
	for _, employeeID := range []uint{1, 2} {
		_, app := approvedApplication(t, f, 0, employeeID)
		_, err := f.completions.CreateCompletion(f.ctx, f.hr, CreateCompletionRequest{
			EmployeeID:     employeeID,
			ApplicationID:  &app.ID,
			CompletionDate: time.Now(),
		})
		require.NoError(t, err)
	}

	own, total, err := f.completions.ListCompletions(f.ctx, testutil.Employee(10, 1), repository.CompletionFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, uint(1), own[0].EmployeeID)

	_, _, err = f.completions.ListCompletions(f.ctx, model.Actor{UserID: 99, Role: model.RoleEmployee}, repository.CompletionFilter{}, 1, 20)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
