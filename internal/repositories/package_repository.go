package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	"github.com/lib/pq"
)

// ErrCreditBounds is returned when a credit adjustment would push
// used_credits outside [0, total_credits].
var ErrCreditBounds = errors.New("credit adjustment out of bounds")

// PackageRepository defines the interface for package-ledger database operations.
type PackageRepository interface {
	// EnsureTemplateClient resolves the sentinel client that owns package
	// templates, lazily creating it on first use.
	EnsureTemplateClient(executor SQLExecutor) (int64, error)
	CreatePackage(executor SQLExecutor, pkg *models.Package) (int64, error)
	GetPackageByID(id int64) (*models.Package, error)
	GetPackagesByClient(clientID int64) ([]models.Package, error)
	GetTemplates() ([]models.Package, error)
	UpdatePackage(executor SQLExecutor, pkg *models.Package) error
	DeletePackage(executor SQLExecutor, id int64) error
	// LockPackage reads the package row under FOR UPDATE so credit
	// adjustments from concurrent requests serialize.
	LockPackage(executor SQLExecutor, id int64) (*models.Package, error)
	// AddUsedCredits shifts used_credits by delta, refusing adjustments
	// that would leave the ledger outside [0, total_credits].
	AddUsedCredits(executor SQLExecutor, id int64, delta int) error
}

type packageRepository struct {
	db *sql.DB
}

// NewPackageRepository creates a new instance of PackageRepository.
func NewPackageRepository(db *sql.DB) PackageRepository {
	return &packageRepository{db: db}
}

const packageColumns = `p.id, p.client_id, p.package_type, p.total_credits, p.used_credits,
	       p.price_cents, p.currency, p.expires_on, p.created_at, p.updated_at,
	       (c.full_name = '` + models.TemplateClientName + `') AS is_template`

const packageSelect = `SELECT ` + packageColumns + `
	FROM packages p JOIN clients c ON c.id = p.client_id`

func scanPackage(row interface{ Scan(...interface{}) error }, pkg *models.Package) error {
	var expiresOn sql.NullTime
	err := row.Scan(
		&pkg.ID, &pkg.ClientID, &pkg.PackageType, &pkg.TotalCredits, &pkg.UsedCredits,
		&pkg.PriceCents, &pkg.Currency, &expiresOn, &pkg.CreatedAt, &pkg.UpdatedAt,
		&pkg.IsTemplate,
	)
	if err != nil {
		return err
	}
	if expiresOn.Valid {
		pkg.ExpiresOn = &expiresOn.Time
	}
	return nil
}

// EnsureTemplateClient returns the sentinel client's id, creating the row on
// first use. Runs on the caller's executor so template creation joins the
// surrounding transaction.
func (r *packageRepository) EnsureTemplateClient(executor SQLExecutor) (int64, error) {
	var id int64
	err := executor.QueryRow(`SELECT id FROM clients WHERE full_name = $1`, models.TemplateClientName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: resolving template client: %v", ErrDatabaseError, err)
	}

	now := time.Now()
	err = executor.QueryRow(
		`INSERT INTO clients (full_name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		models.TemplateClientName, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: creating template client: %v", ErrDatabaseError, err)
	}
	return id, nil
}

// CreatePackage inserts a new package row with zero used credits.
func (r *packageRepository) CreatePackage(executor SQLExecutor, pkg *models.Package) (int64, error) {
	query := `INSERT INTO packages (client_id, package_type, total_credits, used_credits, price_cents, currency, expires_on, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	currentTime := time.Now()
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = currentTime
	}
	if pkg.UpdatedAt.IsZero() {
		pkg.UpdatedAt = currentTime
	}

	var expiresOn sql.NullTime
	if pkg.ExpiresOn != nil && !pkg.ExpiresOn.IsZero() {
		expiresOn = sql.NullTime{Time: *pkg.ExpiresOn, Valid: true}
	}

	err := executor.QueryRow(query,
		pkg.ClientID, pkg.PackageType, pkg.TotalCredits, pkg.UsedCredits,
		pkg.PriceCents, pkg.Currency, expiresOn, pkg.CreatedAt, pkg.UpdatedAt,
	).Scan(&pkg.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return 0, fmt.Errorf("%w: client %d for package", ErrNotFound, pkg.ClientID)
		}
		return 0, fmt.Errorf("%w: creating package: %v", ErrDatabaseError, err)
	}
	return pkg.ID, nil
}

// GetPackageByID retrieves a package by its ID, including the template flag.
func (r *packageRepository) GetPackageByID(id int64) (*models.Package, error) {
	pkg := &models.Package{}
	err := scanPackage(r.db.QueryRow(packageSelect+` WHERE p.id = $1`, id), pkg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting package by ID %d: %v", ErrDatabaseError, id, err)
	}
	return pkg, nil
}

func (r *packageRepository) queryPackages(query string, args ...interface{}) ([]models.Package, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying packages: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	packages := []models.Package{}
	for rows.Next() {
		var pkg models.Package
		if err := scanPackage(rows, &pkg); err != nil {
			return nil, fmt.Errorf("%w: scanning package: %v", ErrDatabaseError, err)
		}
		packages = append(packages, pkg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating package rows: %v", ErrDatabaseError, err)
	}
	return packages, nil
}

// GetPackagesByClient lists a client's packages, newest first.
func (r *packageRepository) GetPackagesByClient(clientID int64) ([]models.Package, error) {
	return r.queryPackages(packageSelect+` WHERE p.client_id = $1 ORDER BY p.created_at DESC`, clientID)
}

// GetTemplates lists the reusable package templates.
func (r *packageRepository) GetTemplates() ([]models.Package, error) {
	return r.queryPackages(packageSelect + ` WHERE c.full_name = '` + models.TemplateClientName + `' ORDER BY p.package_type ASC`)
}

// UpdatePackage overwrites the mutable fields of a package. Used credits are
// never touched here; only AddUsedCredits may move them.
func (r *packageRepository) UpdatePackage(executor SQLExecutor, pkg *models.Package) error {
	query := `UPDATE packages SET
	            package_type = $1, total_credits = $2, price_cents = $3,
	            currency = $4, expires_on = $5, updated_at = $6
	          WHERE id = $7`

	pkg.UpdatedAt = time.Now()
	var expiresOn sql.NullTime
	if pkg.ExpiresOn != nil && !pkg.ExpiresOn.IsZero() {
		expiresOn = sql.NullTime{Time: *pkg.ExpiresOn, Valid: true}
	}

	result, err := executor.Exec(query,
		pkg.PackageType, pkg.TotalCredits, pkg.PriceCents,
		pkg.Currency, expiresOn, pkg.UpdatedAt, pkg.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating package ID %d: %v", ErrDatabaseError, pkg.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating package ID %d: %v", ErrDatabaseError, pkg.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePackage removes a package row. The in-use guard lives in the service,
// which checks for referencing sessions before calling this.
func (r *packageRepository) DeletePackage(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: package ID %d is referenced by other records (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting package ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting package ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LockPackage reads the package row FOR UPDATE. Must run on a *sql.Tx
// executor; the lock is released when the transaction ends.
func (r *packageRepository) LockPackage(executor SQLExecutor, id int64) (*models.Package, error) {
	pkg := &models.Package{}
	query := `SELECT id, client_id, package_type, total_credits, used_credits,
	                 price_cents, currency, expires_on, created_at, updated_at
	          FROM packages WHERE id = $1 FOR UPDATE`

	var expiresOn sql.NullTime
	err := executor.QueryRow(query, id).Scan(
		&pkg.ID, &pkg.ClientID, &pkg.PackageType, &pkg.TotalCredits, &pkg.UsedCredits,
		&pkg.PriceCents, &pkg.Currency, &expiresOn, &pkg.CreatedAt, &pkg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking package ID %d: %v", ErrDatabaseError, id, err)
	}
	if expiresOn.Valid {
		pkg.ExpiresOn = &expiresOn.Time
	}
	return pkg, nil
}

// AddUsedCredits adjusts used_credits by delta. The WHERE clause enforces the
// ledger invariant 0 <= used_credits <= total_credits; a zero-row result on an
// existing package means the adjustment was out of bounds.
func (r *packageRepository) AddUsedCredits(executor SQLExecutor, id int64, delta int) error {
	query := `UPDATE packages
	          SET used_credits = used_credits + $1, updated_at = $2
	          WHERE id = $3 AND used_credits + $1 >= 0 AND used_credits + $1 <= total_credits`

	result, err := executor.Exec(query, delta, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: adjusting credits for package ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for package ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrCreditBounds
	}
	return nil
}
