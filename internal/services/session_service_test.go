package services

import (
	"testing"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	service     SessionService
	sessionRepo *fakeSessionRepo
	packageRepo *fakePackageRepo
	dogRepo     *fakeDogRepo
	audit       *fakeAudit
}

func newSessionFixture(t *testing.T) (*sessionFixture, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	f := &sessionFixture{
		sessionRepo: newFakeSessionRepo(),
		packageRepo: newFakePackageRepo(),
		dogRepo:     newFakeDogRepo(),
		audit:       &fakeAudit{},
	}
	f.service = NewSessionService(f.sessionRepo, f.packageRepo, f.dogRepo, f.audit, db)
	return f, mock
}

func (f *sessionFixture) auditActions() []string {
	actions := make([]string, 0, len(f.audit.calls))
	for _, call := range f.audit.calls {
		actions = append(actions, call.Action)
	}
	return actions
}

func TestCreateSession_DefaultsToScheduled(t *testing.T) {
	f, mock := newSessionFixture(t)
	dog := f.dogRepo.add(1, "Rex")
	expectTx(mock)

	session, err := f.service.CreateSession(CreateSessionRequest{
		DogID:     dog.ID,
		StartTime: time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusScheduled, session.Status)
	assert.False(t, session.CreditDeducted)
	assert.Equal(t, []string{"session.create"}, f.auditActions())
}

func TestCreateSession_DoneWithPackageDeductsCredit(t *testing.T) {
	f, mock := newSessionFixture(t)
	dog := f.dogRepo.add(1, "Rex")
	pkg := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "10er Karte", TotalCredits: 10, UsedCredits: 3})
	expectTx(mock)

	session, err := f.service.CreateSession(CreateSessionRequest{
		DogID:     dog.ID,
		PackageID: &pkg.ID,
		Status:    models.SessionStatusDone,
		StartTime: time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	}, nil)
	require.NoError(t, err)

	assert.True(t, session.CreditDeducted)
	assert.Equal(t, 4, f.packageRepo.packages[pkg.ID].UsedCredits)
	assert.Equal(t, []string{"session.create", "session.deduct"}, f.auditActions())
}

func TestCreateSession_ExhaustedPackage(t *testing.T) {
	f, mock := newSessionFixture(t)
	dog := f.dogRepo.add(1, "Rex")
	pkg := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "5er Karte", TotalCredits: 5, UsedCredits: 5})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := f.service.CreateSession(CreateSessionRequest{
		DogID:     dog.ID,
		PackageID: &pkg.ID,
		Status:    models.SessionStatusDone,
		StartTime: time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	}, nil)
	assert.ErrorIs(t, err, ErrNoCreditsRemaining)
	assert.Equal(t, 5, f.packageRepo.packages[pkg.ID].UsedCredits)
}

func TestCreateSession_Validation(t *testing.T) {
	f, _ := newSessionFixture(t)
	dog := f.dogRepo.add(1, "Rex")
	start := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	endBefore := start.Add(-time.Hour)

	_, err := f.service.CreateSession(CreateSessionRequest{
		DogID: dog.ID, StartTime: start, EndTime: &endBefore,
	}, nil)
	assert.ErrorIs(t, err, ErrSessionValidation)

	_, err = f.service.CreateSession(CreateSessionRequest{
		DogID: dog.ID, StartTime: start, Status: "finished",
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidSessionStatus)

	_, err = f.service.CreateSession(CreateSessionRequest{
		DogID: 404, StartTime: start,
	}, nil)
	assert.ErrorIs(t, err, ErrDogForSessionMissing)
}

func TestUpdateSession_MarkDoneDeductsExactlyOnce(t *testing.T) {
	f, mock := newSessionFixture(t)
	pkg := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "10er Karte", TotalCredits: 10, UsedCredits: 0})
	session := f.sessionRepo.add(models.Session{
		DogID:     1,
		PackageID: &pkg.ID,
		Status:    models.SessionStatusScheduled,
		StartTime: time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	})

	done := models.SessionStatusDone
	expectTx(mock)
	updated, err := f.service.UpdateSession(session.ID, UpdateSessionRequest{Status: &done}, nil)
	require.NoError(t, err)
	assert.True(t, updated.CreditDeducted)
	assert.Equal(t, 1, f.packageRepo.packages[pkg.ID].UsedCredits)

	// A second done update must not take another credit.
	expectTx(mock)
	_, err = f.service.UpdateSession(session.ID, UpdateSessionRequest{Status: &done}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.packageRepo.packages[pkg.ID].UsedCredits)

	assert.Equal(t, []string{"session.update", "session.deduct", "session.update"}, f.auditActions())
}

func TestUpdateSession_ReopenRefundsCredit(t *testing.T) {
	f, mock := newSessionFixture(t)
	pkg := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "10er Karte", TotalCredits: 10, UsedCredits: 4})
	session := f.sessionRepo.add(models.Session{
		DogID:          1,
		PackageID:      &pkg.ID,
		Status:         models.SessionStatusDone,
		CreditDeducted: true,
		StartTime:      time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	})

	cancelled := models.SessionStatusCancelled
	expectTx(mock)
	updated, err := f.service.UpdateSession(session.ID, UpdateSessionRequest{Status: &cancelled}, nil)
	require.NoError(t, err)

	assert.False(t, updated.CreditDeducted)
	assert.Equal(t, 3, f.packageRepo.packages[pkg.ID].UsedCredits)
	assert.Equal(t, []string{"session.update", "session.refund"}, f.auditActions())
}

func TestUpdateSession_RelinkGuardWhenDeducted(t *testing.T) {
	f, _ := newSessionFixture(t)
	pkg := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "10er Karte", TotalCredits: 10, UsedCredits: 1})
	other := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "5er Karte", TotalCredits: 5})
	session := f.sessionRepo.add(models.Session{
		DogID:          1,
		PackageID:      &pkg.ID,
		Status:         models.SessionStatusDone,
		CreditDeducted: true,
		StartTime:      time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	})

	_, err := f.service.UpdateSession(session.ID, UpdateSessionRequest{PackageID: &other.ID}, nil)
	assert.ErrorIs(t, err, ErrSessionValidation)
}

func TestDeleteSession_RefundsDeductedCredit(t *testing.T) {
	f, mock := newSessionFixture(t)
	pkg := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "10er Karte", TotalCredits: 10, UsedCredits: 6})
	session := f.sessionRepo.add(models.Session{
		DogID:          1,
		PackageID:      &pkg.ID,
		Status:         models.SessionStatusDone,
		CreditDeducted: true,
		StartTime:      time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	})

	expectTx(mock)
	require.NoError(t, f.service.DeleteSession(session.ID, nil))

	assert.Equal(t, 5, f.packageRepo.packages[pkg.ID].UsedCredits)
	assert.NotContains(t, f.sessionRepo.sessions, session.ID)
	assert.Equal(t, []string{"session.delete"}, f.auditActions())
}

func TestDeleteSession_ToleratesMissingPackage(t *testing.T) {
	f, mock := newSessionFixture(t)
	gone := int64(404)
	session := f.sessionRepo.add(models.Session{
		DogID:          1,
		PackageID:      &gone,
		Status:         models.SessionStatusDone,
		CreditDeducted: true,
		StartTime:      time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	})

	expectTx(mock)
	require.NoError(t, f.service.DeleteSession(session.ID, nil))
	assert.NotContains(t, f.sessionRepo.sessions, session.ID)
}
