package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a *sql.DB whose only job in these tests is handing out
// transactions. Repository calls go to in-memory fakes, so the mock just
// expects Begin/Commit pairs (rollbacks after commit are no-ops).
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// expectTx queues one Begin/Commit pair. The deferred Rollback after a
// successful Commit never reaches the driver, so no rollback expectation.
func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

type auditCall struct {
	Action     string
	EntityType string
	EntityID   int64
	Summary    string
}

type fakeAudit struct {
	calls []auditCall
}

func (f *fakeAudit) Record(action, entityType string, entityID int64, summary string, actorID *int64) {
	f.calls = append(f.calls, auditCall{action, entityType, entityID, summary})
}

func (f *fakeAudit) GetEntries(page, pageSize int, entityType *string) ([]models.AuditLog, int, error) {
	return []models.AuditLog{}, 0, nil
}

// --- fake client repository ---

type fakeClientRepo struct {
	clients map[int64]*models.Client
	nextID  int64
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[int64]*models.Client{}, nextID: 1}
}

func (f *fakeClientRepo) add(name string) *models.Client {
	client := &models.Client{ID: f.nextID, FullName: name}
	f.clients[f.nextID] = client
	f.nextID++
	return client
}

func (f *fakeClientRepo) CreateClient(executor repositories.SQLExecutor, client *models.Client) (int64, error) {
	stored := *client
	stored.ID = f.nextID
	f.clients[stored.ID] = &stored
	f.nextID++
	return stored.ID, nil
}

func (f *fakeClientRepo) GetClientByID(id int64) (*models.Client, error) {
	client, ok := f.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *client
	return &copied, nil
}

func (f *fakeClientRepo) GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	out := []models.Client{}
	for _, client := range f.clients {
		out = append(out, *client)
	}
	return out, len(out), nil
}

func (f *fakeClientRepo) UpdateClient(executor repositories.SQLExecutor, client *models.Client) error {
	if _, ok := f.clients[client.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *client
	f.clients[client.ID] = &copied
	return nil
}

func (f *fakeClientRepo) DeleteClient(executor repositories.SQLExecutor, id int64) error {
	if _, ok := f.clients[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

// --- fake note repository ---

type fakeNoteRepo struct {
	notes  map[int64]*models.Note
	nextID int64
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: map[int64]*models.Note{}, nextID: 1}
}

func (f *fakeNoteRepo) add(clientID int64, body string) *models.Note {
	note := &models.Note{ID: f.nextID, ClientID: clientID, Body: body}
	f.notes[f.nextID] = note
	f.nextID++
	return note
}

func (f *fakeNoteRepo) CreateNote(executor repositories.SQLExecutor, note *models.Note) (int64, error) {
	stored := *note
	stored.ID = f.nextID
	f.notes[stored.ID] = &stored
	f.nextID++
	return stored.ID, nil
}

func (f *fakeNoteRepo) GetNoteByID(id int64) (*models.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNoteRepo) GetNotesByClient(clientID int64) ([]models.Note, error) {
	out := []models.Note{}
	for _, note := range f.notes {
		if note.ClientID == clientID {
			out = append(out, *note)
		}
	}
	return out, nil
}

func (f *fakeNoteRepo) DeleteNote(executor repositories.SQLExecutor, id int64) error {
	if _, ok := f.notes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

// --- fake package repository ---

type fakePackageRepo struct {
	packages         map[int64]*models.Package
	nextID           int64
	templateClientID int64
	lockCalls        int
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{packages: map[int64]*models.Package{}, nextID: 1, templateClientID: 999}
}

func (f *fakePackageRepo) add(pkg models.Package) *models.Package {
	pkg.ID = f.nextID
	f.packages[pkg.ID] = &pkg
	f.nextID++
	return f.packages[pkg.ID]
}

func (f *fakePackageRepo) EnsureTemplateClient(executor repositories.SQLExecutor) (int64, error) {
	return f.templateClientID, nil
}

func (f *fakePackageRepo) CreatePackage(executor repositories.SQLExecutor, pkg *models.Package) (int64, error) {
	stored := *pkg
	stored.ID = f.nextID
	f.packages[stored.ID] = &stored
	f.nextID++
	return stored.ID, nil
}

func (f *fakePackageRepo) GetPackageByID(id int64) (*models.Package, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *pkg
	copied.IsTemplate = pkg.ClientID == f.templateClientID
	return &copied, nil
}

func (f *fakePackageRepo) GetPackagesByClient(clientID int64) ([]models.Package, error) {
	out := []models.Package{}
	for _, pkg := range f.packages {
		if pkg.ClientID == clientID {
			out = append(out, *pkg)
		}
	}
	return out, nil
}

func (f *fakePackageRepo) GetTemplates() ([]models.Package, error) {
	out := []models.Package{}
	for _, pkg := range f.packages {
		if pkg.ClientID == f.templateClientID {
			copied := *pkg
			copied.IsTemplate = true
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakePackageRepo) UpdatePackage(executor repositories.SQLExecutor, pkg *models.Package) error {
	stored, ok := f.packages[pkg.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	copied := *pkg
	copied.UsedCredits = stored.UsedCredits
	f.packages[pkg.ID] = &copied
	return nil
}

func (f *fakePackageRepo) DeletePackage(executor repositories.SQLExecutor, id int64) error {
	if _, ok := f.packages[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.packages, id)
	return nil
}

func (f *fakePackageRepo) LockPackage(executor repositories.SQLExecutor, id int64) (*models.Package, error) {
	f.lockCalls++
	return f.GetPackageByID(id)
}

func (f *fakePackageRepo) AddUsedCredits(executor repositories.SQLExecutor, id int64, delta int) error {
	pkg, ok := f.packages[id]
	if !ok {
		return repositories.ErrCreditBounds
	}
	next := pkg.UsedCredits + delta
	if next < 0 || next > pkg.TotalCredits {
		return repositories.ErrCreditBounds
	}
	pkg.UsedCredits = next
	return nil
}

// --- fake invoice repository ---

type fakeInvoiceRepo struct {
	invoices map[int64]*models.Invoice
	nextID   int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[int64]*models.Invoice{}, nextID: 1}
}

func (f *fakeInvoiceRepo) add(invoice models.Invoice) *models.Invoice {
	invoice.ID = f.nextID
	f.invoices[invoice.ID] = &invoice
	f.nextID++
	return f.invoices[invoice.ID]
}

func (f *fakeInvoiceRepo) CreateInvoice(executor repositories.SQLExecutor, invoice *models.Invoice) (int64, error) {
	stored := *invoice
	stored.ID = f.nextID
	f.invoices[stored.ID] = &stored
	f.nextID++
	return stored.ID, nil
}

func (f *fakeInvoiceRepo) GetInvoiceByID(id int64) (*models.Invoice, error) {
	invoice, ok := f.invoices[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *invoice
	return &copied, nil
}

func (f *fakeInvoiceRepo) GetInvoicesByClient(clientID int64) ([]models.Invoice, error) {
	out := []models.Invoice{}
	for _, invoice := range f.invoices {
		if invoice.ClientID == clientID {
			out = append(out, *invoice)
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) GetPendingInvoices() ([]models.Invoice, error) {
	out := []models.Invoice{}
	for _, invoice := range f.invoices {
		if invoice.Status != models.InvoiceStatusPaid {
			out = append(out, *invoice)
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) MarkInvoicePaid(executor repositories.SQLExecutor, id int64, paidOn time.Time) error {
	invoice, ok := f.invoices[id]
	if !ok {
		return repositories.ErrNotFound
	}
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidOn = &paidOn
	return nil
}

func (f *fakeInvoiceRepo) DeleteInvoice(executor repositories.SQLExecutor, id int64) error {
	if _, ok := f.invoices[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.invoices, id)
	return nil
}

// onlyInvoice is a test convenience for the single-invoice fixtures.
func (f *fakeInvoiceRepo) onlyInvoice() (*models.Invoice, error) {
	if len(f.invoices) != 1 {
		return nil, fmt.Errorf("expected exactly 1 invoice, have %d", len(f.invoices))
	}
	for _, invoice := range f.invoices {
		return invoice, nil
	}
	return nil, nil
}

// --- fake payment repository ---

type fakePaymentRepo struct {
	payments map[int64]*models.Payment
	nextID   int64
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[int64]*models.Payment{}, nextID: 1}
}

func (f *fakePaymentRepo) add(payment models.Payment) *models.Payment {
	payment.ID = f.nextID
	f.payments[payment.ID] = &payment
	f.nextID++
	return f.payments[payment.ID]
}

func (f *fakePaymentRepo) CreatePayment(executor repositories.SQLExecutor, payment *models.Payment) (int64, error) {
	stored := *payment
	stored.ID = f.nextID
	f.payments[stored.ID] = &stored
	f.nextID++
	return stored.ID, nil
}

func (f *fakePaymentRepo) GetPaymentByID(id int64) (*models.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentRepo) GetAllPayments() ([]models.Payment, error) {
	out := []models.Payment{}
	for _, payment := range f.payments {
		out = append(out, *payment)
	}
	return out, nil
}

func (f *fakePaymentRepo) GetPaymentsByClient(clientID int64) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, payment := range f.payments {
		if payment.ClientID == clientID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) CountPaymentsByInvoice(invoiceID int64) (int, error) {
	count := 0
	for _, payment := range f.payments {
		if payment.InvoiceID == invoiceID {
			count++
		}
	}
	return count, nil
}

func (f *fakePaymentRepo) UpdatePayment(executor repositories.SQLExecutor, payment *models.Payment) error {
	if _, ok := f.payments[payment.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) DeletePayment(executor repositories.SQLExecutor, id int64) error {
	if _, ok := f.payments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.payments, id)
	return nil
}

// --- fake session repository ---

type fakeSessionRepo struct {
	sessions map[int64]*models.Session
	nextID   int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[int64]*models.Session{}, nextID: 1}
}

func (f *fakeSessionRepo) add(session models.Session) *models.Session {
	session.ID = f.nextID
	f.sessions[session.ID] = &session
	f.nextID++
	return f.sessions[session.ID]
}

func (f *fakeSessionRepo) CreateSession(executor repositories.SQLExecutor, session *models.Session) (int64, error) {
	stored := *session
	stored.ID = f.nextID
	f.sessions[stored.ID] = &stored
	f.nextID++
	return stored.ID, nil
}

func (f *fakeSessionRepo) GetSessionByID(id int64) (*models.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) GetSessions(filters repositories.SessionFilters) ([]models.Session, error) {
	out := []models.Session{}
	for _, session := range f.sessions {
		out = append(out, *session)
	}
	return out, nil
}

func (f *fakeSessionRepo) UpdateSession(executor repositories.SQLExecutor, session *models.Session) error {
	stored, ok := f.sessions[session.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	copied := *session
	copied.CreditDeducted = stored.CreditDeducted
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) DeleteSession(executor repositories.SQLExecutor, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) SetCreditDeducted(executor repositories.SQLExecutor, id int64, deducted bool) error {
	session, ok := f.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	session.CreditDeducted = deducted
	return nil
}

func (f *fakeSessionRepo) CountSessionsByPackage(packageID int64) (int, error) {
	count := 0
	for _, session := range f.sessions {
		if session.PackageID != nil && *session.PackageID == packageID {
			count++
		}
	}
	return count, nil
}

// --- fake dog repository ---

type fakeDogRepo struct {
	dogs   map[int64]*models.Dog
	nextID int64
}

func newFakeDogRepo() *fakeDogRepo {
	return &fakeDogRepo{dogs: map[int64]*models.Dog{}, nextID: 1}
}

func (f *fakeDogRepo) add(clientID int64, name string) *models.Dog {
	dog := &models.Dog{ID: f.nextID, ClientID: clientID, Name: name}
	f.dogs[f.nextID] = dog
	f.nextID++
	return dog
}

func (f *fakeDogRepo) CreateDog(executor repositories.SQLExecutor, dog *models.Dog) (int64, error) {
	stored := *dog
	stored.ID = f.nextID
	f.dogs[stored.ID] = &stored
	f.nextID++
	return stored.ID, nil
}

func (f *fakeDogRepo) GetDogByID(id int64) (*models.Dog, error) {
	dog, ok := f.dogs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *dog
	return &copied, nil
}

func (f *fakeDogRepo) GetDogsByClient(clientID int64) ([]models.Dog, error) {
	out := []models.Dog{}
	for _, dog := range f.dogs {
		if dog.ClientID == clientID {
			out = append(out, *dog)
		}
	}
	return out, nil
}

func (f *fakeDogRepo) UpdateDog(executor repositories.SQLExecutor, dog *models.Dog) error {
	if _, ok := f.dogs[dog.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *dog
	f.dogs[dog.ID] = &copied
	return nil
}

func (f *fakeDogRepo) DeleteDog(executor repositories.SQLExecutor, id int64) error {
	if _, ok := f.dogs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.dogs, id)
	return nil
}
