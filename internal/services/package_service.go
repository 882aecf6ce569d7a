package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"
)

// --- Custom Service Errors for Package ---
var (
	ErrPackageNotFound         = errors.New("package not found")
	ErrPackageValidation       = errors.New("package data validation error")
	ErrPackageInUse            = errors.New("package is referenced by existing sessions")
	ErrClientForPackageMissing = errors.New("client specified for package not found")
)

const packageDateLayout = "2006-01-02"

// --- Package DTOs ---

type CreatePackageRequest struct {
	ClientID     *int64  `json:"client_id"` // nil creates a reusable template
	PackageType  string  `json:"package_type" binding:"required"`
	TotalCredits int     `json:"total_credits" binding:"required,gt=0"`
	Price        float64 `json:"price" binding:"required,gt=0"` // major units, e.g. 49.99
	Currency     string  `json:"currency"`
	ExpiresOn    *string `json:"expires_on"`      // YYYY-MM-DD, wins over expires_in_days
	ExpiresInDays *int   `json:"expires_in_days"` // relative expiry from today
}

type UpdatePackageRequest struct {
	PackageType  string  `json:"package_type" binding:"required"`
	TotalCredits int     `json:"total_credits" binding:"required,gt=0"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	Currency     string  `json:"currency"`
	ExpiresOn    *string `json:"expires_on"`
}

// PackageResponse augments the stored row with the derived status and the
// remaining credit count.
type PackageResponse struct {
	models.Package
	Price             float64 `json:"price"`
	SessionsRemaining int     `json:"sessions_remaining"`
	Status            string  `json:"status"`
}

func toPackageResponse(pkg *models.Package, now time.Time) *PackageResponse {
	return &PackageResponse{
		Package:           *pkg,
		Price:             utils.MajorFromCents(pkg.PriceCents),
		SessionsRemaining: pkg.SessionsRemaining(),
		Status:            pkg.StatusAt(now),
	}
}

// --- PackageService Interface ---
type PackageService interface {
	CreatePackage(req CreatePackageRequest, actorID *int64) (*PackageResponse, error)
	GetPackageByID(packageID int64) (*PackageResponse, error)
	GetPackagesByClient(clientID int64) ([]PackageResponse, error)
	GetTemplates() ([]PackageResponse, error)
	UpdatePackage(packageID int64, req UpdatePackageRequest, actorID *int64) (*PackageResponse, error)
	DeletePackage(packageID int64, actorID *int64) error
}

// --- packageService Implementation ---
type packageService struct {
	packageRepo repositories.PackageRepository
	invoiceRepo repositories.InvoiceRepository
	clientRepo  repositories.ClientRepository
	sessionRepo repositories.SessionRepository
	audit       AuditRecorder
	db          *sql.DB
}

// NewPackageService creates a new instance of PackageService.
func NewPackageService(
	packageRepo repositories.PackageRepository,
	invoiceRepo repositories.InvoiceRepository,
	clientRepo repositories.ClientRepository,
	sessionRepo repositories.SessionRepository,
	audit AuditRecorder,
	db *sql.DB,
) PackageService {
	return &packageService{
		packageRepo: packageRepo,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		sessionRepo: sessionRepo,
		audit:       audit,
		db:          db,
	}
}

func (s *packageService) resolveExpiry(expiresOn *string, expiresInDays *int) (*time.Time, error) {
	if expiresOn != nil && strings.TrimSpace(*expiresOn) != "" {
		expiry, err := time.Parse(packageDateLayout, *expiresOn)
		if err != nil {
			return nil, fmt.Errorf("%w: expires_on must be YYYY-MM-DD", ErrPackageValidation)
		}
		return &expiry, nil
	}
	if expiresInDays != nil {
		if *expiresInDays <= 0 {
			return nil, fmt.Errorf("%w: expires_in_days must be positive", ErrPackageValidation)
		}
		expiry := time.Now().AddDate(0, 0, *expiresInDays)
		return &expiry, nil
	}
	return nil, nil
}

// CreatePackage persists a new package. Client packages get an UNPAID
// invoice for the purchase price in the same transaction; templates are
// parked under the sentinel client and get no invoice.
func (s *packageService) CreatePackage(req CreatePackageRequest, actorID *int64) (*PackageResponse, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "EUR"
	}
	expiry, err := s.resolveExpiry(req.ExpiresOn, req.ExpiresInDays)
	if err != nil {
		return nil, err
	}

	isTemplate := req.ClientID == nil
	if !isTemplate {
		if _, err := s.clientRepo.GetClientByID(*req.ClientID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrClientForPackageMissing
			}
			return nil, fmt.Errorf("failed to verify client for package: %w", err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	clientID := int64(0)
	if isTemplate {
		clientID, err = s.packageRepo.EnsureTemplateClient(tx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve template owner: %w", err)
		}
	} else {
		clientID = *req.ClientID
	}

	pkg := &models.Package{
		ClientID:     clientID,
		PackageType:  req.PackageType,
		TotalCredits: req.TotalCredits,
		UsedCredits:  0,
		PriceCents:   utils.CentsFromMajor(req.Price),
		Currency:     currency,
		ExpiresOn:    expiry,
	}

	packageID, err := s.packageRepo.CreatePackage(tx, pkg)
	if err != nil {
		return nil, fmt.Errorf("failed to create package record: %w", err)
	}

	if !isTemplate {
		invoice := &models.Invoice{
			ClientID:   clientID,
			PackageID:  &packageID,
			TotalCents: pkg.PriceCents,
			Currency:   currency,
			Status:     models.InvoiceStatusUnpaid,
			IssuedOn:   time.Now(),
		}
		if _, err := s.invoiceRepo.CreateInvoice(tx, invoice); err != nil {
			return nil, fmt.Errorf("failed to create purchase invoice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit package transaction: %w", err)
	}

	s.audit.Record("package.create", "Package", packageID,
		fmt.Sprintf("Created %q with %d credits", req.PackageType, req.TotalCredits), actorID)

	created, err := s.packageRepo.GetPackageByID(packageID)
	if err != nil {
		return nil, fmt.Errorf("package created but failed to reload: %w", err)
	}
	return toPackageResponse(created, time.Now()), nil
}

// GetPackageByID returns a package with its derived status.
func (s *packageService) GetPackageByID(packageID int64) (*PackageResponse, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}
	pkg, err := s.packageRepo.GetPackageByID(packageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to get package by ID: %w", err)
	}
	return toPackageResponse(pkg, time.Now()), nil
}

func toPackageResponses(packages []models.Package) []PackageResponse {
	now := time.Now()
	responses := make([]PackageResponse, 0, len(packages))
	for i := range packages {
		responses = append(responses, *toPackageResponse(&packages[i], now))
	}
	return responses
}

// GetPackagesByClient lists a client's packages with derived statuses.
func (s *packageService) GetPackagesByClient(clientID int64) ([]PackageResponse, error) {
	if s.db == nil {
		return []PackageResponse{}, nil
	}
	packages, err := s.packageRepo.GetPackagesByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get packages for client: %w", err)
	}
	return toPackageResponses(packages), nil
}

// GetTemplates lists the reusable package templates.
func (s *packageService) GetTemplates() ([]PackageResponse, error) {
	if s.db == nil {
		return []PackageResponse{}, nil
	}
	templates, err := s.packageRepo.GetTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to get package templates: %w", err)
	}
	return toPackageResponses(templates), nil
}

// UpdatePackage overwrites the mutable fields. Used credits are never
// touched; shrinking total credits below the used count is rejected to
// keep the ledger invariant intact.
func (s *packageService) UpdatePackage(packageID int64, req UpdatePackageRequest, actorID *int64) (*PackageResponse, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	pkg, err := s.packageRepo.GetPackageByID(packageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to find package for update: %w", err)
	}

	if req.TotalCredits < pkg.UsedCredits {
		return nil, fmt.Errorf("%w: total_credits %d is below the %d credits already used",
			ErrPackageValidation, req.TotalCredits, pkg.UsedCredits)
	}

	expiry, err := s.resolveExpiry(req.ExpiresOn, nil)
	if err != nil {
		return nil, err
	}

	pkg.PackageType = req.PackageType
	pkg.TotalCredits = req.TotalCredits
	pkg.PriceCents = utils.CentsFromMajor(req.Price)
	if currency := strings.ToUpper(strings.TrimSpace(req.Currency)); currency != "" {
		pkg.Currency = currency
	}
	pkg.ExpiresOn = expiry

	if err := s.packageRepo.UpdatePackage(s.db, pkg); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to update package: %w", err)
	}

	s.audit.Record("package.update", "Package", packageID, fmt.Sprintf("Updated %q", pkg.PackageType), actorID)

	updated, err := s.packageRepo.GetPackageByID(packageID)
	if err != nil {
		return nil, fmt.Errorf("package updated but failed to reload: %w", err)
	}
	return toPackageResponse(updated, time.Now()), nil
}

// DeletePackage removes a package unless sessions still reference it.
func (s *packageService) DeletePackage(packageID int64, actorID *int64) error {
	if s.db == nil {
		return ErrServiceUnavailable
	}

	pkg, err := s.packageRepo.GetPackageByID(packageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPackageNotFound
		}
		return fmt.Errorf("failed to find package for deletion: %w", err)
	}

	sessionCount, err := s.sessionRepo.CountSessionsByPackage(packageID)
	if err != nil {
		return fmt.Errorf("failed to count sessions for package: %w", err)
	}
	if sessionCount > 0 {
		return fmt.Errorf("%w: %d session(s) still reference this package", ErrPackageInUse, sessionCount)
	}

	if err := s.packageRepo.DeletePackage(s.db, packageID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPackageNotFound
		}
		return fmt.Errorf("failed to delete package: %w", err)
	}

	s.audit.Record("package.delete", "Package", packageID, fmt.Sprintf("Deleted %q", pkg.PackageType), actorID)
	return nil
}
