package services

import (
	"testing"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type packageFixture struct {
	service     PackageService
	packageRepo *fakePackageRepo
	invoiceRepo *fakeInvoiceRepo
	clientRepo  *fakeClientRepo
	sessionRepo *fakeSessionRepo
	audit       *fakeAudit
}

func newPackageFixture(t *testing.T) (*packageFixture, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	f := &packageFixture{
		packageRepo: newFakePackageRepo(),
		invoiceRepo: newFakeInvoiceRepo(),
		clientRepo:  newFakeClientRepo(),
		sessionRepo: newFakeSessionRepo(),
		audit:       &fakeAudit{},
	}
	f.service = NewPackageService(f.packageRepo, f.invoiceRepo, f.clientRepo, f.sessionRepo, f.audit, db)
	return f, mock
}

func TestCreatePackage_ClientPackageIssuesUnpaidInvoice(t *testing.T) {
	f, mock := newPackageFixture(t)
	client := f.clientRepo.add("Anna Meier")
	expectTx(mock)

	resp, err := f.service.CreatePackage(CreatePackageRequest{
		ClientID:     &client.ID,
		PackageType:  "10er Karte",
		TotalCredits: 10,
		Price:        49.99,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(4999), resp.PriceCents)
	assert.Equal(t, 49.99, resp.Price)
	assert.Equal(t, "EUR", resp.Currency)
	assert.Equal(t, 10, resp.SessionsRemaining)
	assert.Equal(t, models.PackageStatusActive, resp.Status)
	assert.False(t, resp.IsTemplate)

	invoice, err := f.invoiceRepo.onlyInvoice()
	require.NoError(t, err)
	assert.Equal(t, client.ID, invoice.ClientID)
	require.NotNil(t, invoice.PackageID)
	assert.Equal(t, resp.ID, *invoice.PackageID)
	assert.Equal(t, int64(4999), invoice.TotalCents)
	assert.Equal(t, models.InvoiceStatusUnpaid, invoice.Status)

	require.Len(t, f.audit.calls, 1)
	assert.Equal(t, "package.create", f.audit.calls[0].Action)
	assert.Equal(t, "Package", f.audit.calls[0].EntityType)
}

func TestCreatePackage_TemplateSkipsInvoice(t *testing.T) {
	f, mock := newPackageFixture(t)
	expectTx(mock)

	resp, err := f.service.CreatePackage(CreatePackageRequest{
		PackageType:  "5er Karte",
		TotalCredits: 5,
		Price:        120,
		Currency:     "chf",
	}, nil)
	require.NoError(t, err)

	assert.True(t, resp.IsTemplate)
	assert.Equal(t, "CHF", resp.Currency)
	assert.Equal(t, f.packageRepo.templateClientID, resp.ClientID)
	assert.Empty(t, f.invoiceRepo.invoices)
}

func TestCreatePackage_UnknownClient(t *testing.T) {
	f, _ := newPackageFixture(t)
	missing := int64(42)

	_, err := f.service.CreatePackage(CreatePackageRequest{
		ClientID:     &missing,
		PackageType:  "10er Karte",
		TotalCredits: 10,
		Price:        50,
	}, nil)
	assert.ErrorIs(t, err, ErrClientForPackageMissing)
	assert.Empty(t, f.packageRepo.packages)
}

func TestCreatePackage_ExpiresOnWinsOverExpiresInDays(t *testing.T) {
	f, mock := newPackageFixture(t)
	expectTx(mock)

	expiresOn := "2027-01-31"
	days := 7
	resp, err := f.service.CreatePackage(CreatePackageRequest{
		PackageType:   "Winterkurs",
		TotalCredits:  8,
		Price:         200,
		ExpiresOn:     &expiresOn,
		ExpiresInDays: &days,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.ExpiresOn)
	assert.Equal(t, time.Date(2027, time.January, 31, 0, 0, 0, 0, time.UTC), *resp.ExpiresOn)
}

func TestCreatePackage_BadExpiryInputs(t *testing.T) {
	f, _ := newPackageFixture(t)

	badDate := "31.01.2027"
	_, err := f.service.CreatePackage(CreatePackageRequest{
		PackageType: "Kurs", TotalCredits: 5, Price: 10, ExpiresOn: &badDate,
	}, nil)
	assert.ErrorIs(t, err, ErrPackageValidation)

	badDays := 0
	_, err = f.service.CreatePackage(CreatePackageRequest{
		PackageType: "Kurs", TotalCredits: 5, Price: 10, ExpiresInDays: &badDays,
	}, nil)
	assert.ErrorIs(t, err, ErrPackageValidation)
}

func TestUpdatePackage_RejectsShrinkBelowUsedCredits(t *testing.T) {
	f, _ := newPackageFixture(t)
	pkg := f.packageRepo.add(models.Package{
		ClientID: 1, PackageType: "10er Karte", TotalCredits: 10, UsedCredits: 4,
		PriceCents: 5000, Currency: "EUR",
	})

	_, err := f.service.UpdatePackage(pkg.ID, UpdatePackageRequest{
		PackageType: "10er Karte", TotalCredits: 3, Price: 50,
	}, nil)
	assert.ErrorIs(t, err, ErrPackageValidation)
	assert.Equal(t, 10, f.packageRepo.packages[pkg.ID].TotalCredits)
}

func TestUpdatePackage_KeepsUsedCredits(t *testing.T) {
	f, _ := newPackageFixture(t)
	pkg := f.packageRepo.add(models.Package{
		ClientID: 1, PackageType: "10er Karte", TotalCredits: 10, UsedCredits: 4,
		PriceCents: 5000, Currency: "EUR",
	})

	resp, err := f.service.UpdatePackage(pkg.ID, UpdatePackageRequest{
		PackageType: "12er Karte", TotalCredits: 12, Price: 60, Currency: "usd",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 12, resp.TotalCredits)
	assert.Equal(t, 4, resp.UsedCredits)
	assert.Equal(t, 8, resp.SessionsRemaining)
	assert.Equal(t, int64(6000), resp.PriceCents)
	assert.Equal(t, "USD", resp.Currency)

	require.Len(t, f.audit.calls, 1)
	assert.Equal(t, "package.update", f.audit.calls[0].Action)
}

func TestUpdatePackage_NotFound(t *testing.T) {
	f, _ := newPackageFixture(t)

	_, err := f.service.UpdatePackage(77, UpdatePackageRequest{
		PackageType: "Kurs", TotalCredits: 5, Price: 10,
	}, nil)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestDeletePackage_BlockedBySessions(t *testing.T) {
	f, _ := newPackageFixture(t)
	pkg := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "10er Karte", TotalCredits: 10})
	f.sessionRepo.add(models.Session{DogID: 1, PackageID: &pkg.ID, Status: models.SessionStatusScheduled})

	err := f.service.DeletePackage(pkg.ID, nil)
	assert.ErrorIs(t, err, ErrPackageInUse)
	assert.Contains(t, f.packageRepo.packages, pkg.ID)
}

func TestDeletePackage_Succeeds(t *testing.T) {
	f, _ := newPackageFixture(t)
	pkg := f.packageRepo.add(models.Package{ClientID: 1, PackageType: "10er Karte", TotalCredits: 10})

	err := f.service.DeletePackage(pkg.ID, nil)
	require.NoError(t, err)
	assert.NotContains(t, f.packageRepo.packages, pkg.ID)

	require.Len(t, f.audit.calls, 1)
	assert.Equal(t, "package.delete", f.audit.calls[0].Action)
	assert.Equal(t, pkg.ID, f.audit.calls[0].EntityID)
}

func TestPackageService_NilDB(t *testing.T) {
	f := &packageFixture{
		packageRepo: newFakePackageRepo(),
		invoiceRepo: newFakeInvoiceRepo(),
		clientRepo:  newFakeClientRepo(),
		sessionRepo: newFakeSessionRepo(),
		audit:       &fakeAudit{},
	}
	service := NewPackageService(f.packageRepo, f.invoiceRepo, f.clientRepo, f.sessionRepo, f.audit, nil)

	_, err := service.CreatePackage(CreatePackageRequest{PackageType: "Kurs", TotalCredits: 5, Price: 10}, nil)
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	packages, err := service.GetPackagesByClient(1)
	require.NoError(t, err)
	assert.Empty(t, packages)
}
