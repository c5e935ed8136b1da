package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"expo_backend/internal/feature/registration/domain/entity"
)

// AccountInput carries the validated account fields for a registration.
// Password is still plaintext here; the workflow hashes it before storage.
type AccountInput struct {
	FirstName         string
	LastName          string
	Email             string
	Username          string
	Password          string
	ParticipationType string
}

// CompanyInput carries the validated company fields for a registration.
type CompanyInput struct {
	CompanyName     string
	Address         string
	City            string
	Region          *string
	Country         string
	YearEstablished int
	Website         *string
}

// BrochureFile is an uploaded brochure ready to be persisted.
type BrochureFile struct {
	// Name is the client-declared original filename, used for its extension.
	Name string
	// Size is the declared byte size, recorded in the audit log.
	Size int64
	// Reader streams the file contents. Consumed once by the store.
	Reader io.Reader
}

// UserRepository abstracts persistence for the registration aggregate.
// Following Go convention, the interface is defined by the consumer (usecase)
// rather than the provider (adapters).
type UserRepository interface {
	// WithTx runs fn inside a database transaction. The repository passed to
	// fn is bound to that transaction; any error rolls everything back.
	WithTx(ctx context.Context, fn func(tx UserRepository) error) error

	// CreateUser persists a new user. Returns ErrDuplicateUser when the
	// email or username unique constraint is violated.
	CreateUser(ctx context.Context, user *entity.User) error

	// CreateCompany persists a new company linked to its user.
	CreateCompany(ctx context.Context, company *entity.Company) error

	// FindByIDWithCompany loads a user together with its company.
	// Returns ErrUserNotFound when no such user exists.
	FindByIDWithCompany(ctx context.Context, id uint) (*entity.User, error)

	// EmailExists reports whether a user with the given email exists.
	EmailExists(ctx context.Context, email string) (bool, error)

	// UsernameExists reports whether a user with the given username exists.
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// BrochureStore abstracts the file storage backend for brochures.
type BrochureStore interface {
	// Store writes the file and returns its relative storage path.
	Store(ctx context.Context, r io.Reader, originalName string, size int64, ownerID uint) (string, error)

	// Delete removes a stored file. Returns false without error when the
	// path does not exist.
	Delete(ctx context.Context, path string) (bool, error)
}

// registerUsecase orchestrates user creation, brochure storage and company
// creation as one atomic unit.
type registerUsecase struct {
	users     UserRepository
	brochures BrochureStore
	log       *slog.Logger
}

// NewRegisterUsecase creates a registration workflow. The logger is injected
// so tests can pass a discarding or capturing handler.
func NewRegisterUsecase(users UserRepository, brochures BrochureStore, log *slog.Logger) *registerUsecase {
	return &registerUsecase{
		users:     users,
		brochures: brochures,
		log:       log,
	}
}

// Register creates the user and its company inside a single transaction,
// storing the brochure (if any) keyed by the new user's ID. On success it
// returns the reloaded aggregate with the company attached.
//
// The file write cannot be rolled back by the database, so a brochure stored
// before a failed commit is removed again with a compensating delete.
func (u *registerUsecase) Register(ctx context.Context, account AccountInput, company CompanyInput, brochure *BrochureFile) (*entity.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		created    *entity.User
		storedPath string
	)

	txErr := u.users.WithTx(ctx, func(tx UserRepository) error {
		user := &entity.User{
			FirstName:         account.FirstName,
			LastName:          account.LastName,
			Email:             account.Email,
			Username:          account.Username,
			Password:          string(hashed),
			ParticipationType: account.ParticipationType,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}

		var brochurePath *string
		if brochure != nil {
			path, err := u.brochures.Store(ctx, brochure.Reader, brochure.Name, brochure.Size, user.ID)
			if err != nil {
				return fmt.Errorf("store brochure: %w", err)
			}
			storedPath = path
			brochurePath = &path
		}

		comp := &entity.Company{
			UserID:          user.ID,
			CompanyName:     company.CompanyName,
			Address:         company.Address,
			City:            company.City,
			Region:          company.Region,
			Country:         company.Country,
			YearEstablished: company.YearEstablished,
			Website:         company.Website,
			BrochurePath:    brochurePath,
		}
		if err := tx.CreateCompany(ctx, comp); err != nil {
			return err
		}

		full, err := tx.FindByIDWithCompany(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		created = full
		return nil
	})

	if txErr != nil {
		u.cleanupBrochure(ctx, storedPath)
		return nil, u.mapDuplicate(ctx, account, txErr)
	}

	companyName := ""
	if created.Company != nil {
		companyName = created.Company.CompanyName
	}
	u.log.InfoContext(ctx, "registration completed",
		"user_id", created.ID,
		"email", created.Email,
		"company_name", companyName,
	)
	return created, nil
}

// EmailTaken reports whether the email is already registered.
// Used by the transport layer for the pre-insert validation check.
func (u *registerUsecase) EmailTaken(ctx context.Context, email string) (bool, error) {
	return u.users.EmailExists(ctx, email)
}

// UsernameTaken reports whether the username is already registered.
func (u *registerUsecase) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return u.users.UsernameExists(ctx, username)
}

// cleanupBrochure best-effort deletes a file stored during a transaction
// that later rolled back.
func (u *registerUsecase) cleanupBrochure(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if _, err := u.brochures.Delete(ctx, path); err != nil {
		u.log.WarnContext(ctx, "orphaned brochure cleanup failed", "path", path, "error", err)
	}
}

// mapDuplicate narrows a unique-constraint violation raced in after the
// pre-insert checks to the colliding field. The lookup runs outside the
// aborted transaction, where the conflicting committed row is visible.
func (u *registerUsecase) mapDuplicate(ctx context.Context, account AccountInput, txErr error) error {
	if !isDuplicate(txErr) {
		return fmt.Errorf("registration failed: %w", txErr)
	}
	if taken, err := u.users.EmailExists(ctx, account.Email); err == nil && taken {
		return ErrEmailTaken
	}
	if taken, err := u.users.UsernameExists(ctx, account.Username); err == nil && taken {
		return ErrUsernameTaken
	}
	return fmt.Errorf("registration failed: %w", txErr)
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUser)
}
