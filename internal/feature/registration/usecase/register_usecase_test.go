package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"expo_backend/internal/feature/registration/domain/entity"
)

// mockUserRepository is a stateful mock of the UserRepository interface.
// Unless overridden, writes are recorded and the reload returns them as
// the aggregate a real repository would produce.
type mockUserRepository struct {
	WithTxFunc         func(ctx context.Context, fn func(tx UserRepository) error) error
	CreateUserFunc     func(ctx context.Context, user *entity.User) error
	CreateCompanyFunc  func(ctx context.Context, company *entity.Company) error
	FindByIDFunc       func(ctx context.Context, id uint) (*entity.User, error)
	EmailExistsFunc    func(ctx context.Context, email string) (bool, error)
	UsernameExistsFunc func(ctx context.Context, username string) (bool, error)

	createdUser    *entity.User
	createdCompany *entity.Company
}

func (m *mockUserRepository) WithTx(ctx context.Context, fn func(tx UserRepository) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	return fn(m)
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user *entity.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	user.ID = 7
	m.createdUser = user
	return nil
}

func (m *mockUserRepository) CreateCompany(ctx context.Context, company *entity.Company) error {
	if m.CreateCompanyFunc != nil {
		return m.CreateCompanyFunc(ctx, company)
	}
	company.ID = 3
	m.createdCompany = company
	return nil
}

func (m *mockUserRepository) FindByIDWithCompany(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	if m.createdUser == nil || m.createdUser.ID != id {
		return nil, ErrUserNotFound
	}
	aggregate := *m.createdUser
	aggregate.Company = m.createdCompany
	return &aggregate, nil
}

func (m *mockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.EmailExistsFunc != nil {
		return m.EmailExistsFunc(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	if m.UsernameExistsFunc != nil {
		return m.UsernameExistsFunc(ctx, username)
	}
	return false, nil
}

// mockBrochureStore is a mock of the BrochureStore interface.
type mockBrochureStore struct {
	StoreFunc  func(ctx context.Context, r io.Reader, originalName string, size int64, ownerID uint) (string, error)
	DeleteFunc func(ctx context.Context, path string) (bool, error)

	storeCalls  int
	deletedPath string
}

func (m *mockBrochureStore) Store(ctx context.Context, r io.Reader, originalName string, size int64, ownerID uint) (string, error) {
	m.storeCalls++
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, r, originalName, size, ownerID)
	}
	return "brochures/brochure_7_20250102_150405.pdf", nil
}

func (m *mockBrochureStore) Delete(ctx context.Context, path string) (bool, error) {
	m.deletedPath = path
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path)
	}
	return true, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validAccount() AccountInput {
	return AccountInput{
		FirstName:         "Jane",
		LastName:          "Doe",
		Email:             "jane@x.com",
		Username:          "jane_d",
		Password:          "secret123",
		ParticipationType: entity.ParticipationExhibitor,
	}
}

func validCompany() CompanyInput {
	return CompanyInput{
		CompanyName:     "Acme",
		Address:         "1 Main St",
		City:            "Metropolis",
		Country:         "Oz",
		YearEstablished: 2005,
	}
}

func TestRegisterUsecase_Register(t *testing.T) {
	t.Run("creates user and company without brochure", func(t *testing.T) {
		repo := &mockUserRepository{}
		store := &mockBrochureStore{}
		uc := NewRegisterUsecase(repo, store, discardLogger())

		user, err := uc.Register(context.Background(), validAccount(), validCompany(), nil)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Company == nil {
			t.Fatal("aggregate is missing its company")
		}
		if user.Company.BrochurePath != nil {
			t.Errorf("brochure path should be nil, got %q", *user.Company.BrochurePath)
		}
		if user.ParticipationType != entity.ParticipationExhibitor {
			t.Errorf("participation type not carried through: %q", user.ParticipationType)
		}
		if store.storeCalls != 0 {
			t.Errorf("brochure store should not be called, got %d calls", store.storeCalls)
		}
	})

	t.Run("password is stored as a bcrypt hash", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateUserFunc: func(ctx context.Context, user *entity.User) error {
				if user.Password == "secret123" {
					t.Error("plaintext password reached the repository")
				}
				if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")); err != nil {
					t.Errorf("invalid bcrypt hash: %v", err)
				}
				user.ID = 7
				return errors.New("stop here")
			},
		}
		uc := NewRegisterUsecase(repo, &mockBrochureStore{}, discardLogger())

		_, _ = uc.Register(context.Background(), validAccount(), validCompany(), nil)
	})

	t.Run("stores brochure keyed by the new user ID", func(t *testing.T) {
		repo := &mockUserRepository{}
		store := &mockBrochureStore{
			StoreFunc: func(ctx context.Context, r io.Reader, originalName string, size int64, ownerID uint) (string, error) {
				if ownerID != 7 {
					t.Errorf("expected owner ID 7, got %d", ownerID)
				}
				if originalName != "catalog.pdf" {
					t.Errorf("unexpected original name %q", originalName)
				}
				data, _ := io.ReadAll(r)
				if !bytes.Equal(data, []byte("pdf-bytes")) {
					t.Errorf("unexpected file contents %q", data)
				}
				return "brochures/brochure_7_20250102_150405.pdf", nil
			},
		}
		uc := NewRegisterUsecase(repo, store, discardLogger())

		brochure := &BrochureFile{Name: "catalog.pdf", Size: 9, Reader: strings.NewReader("pdf-bytes")}
		user, err := uc.Register(context.Background(), validAccount(), validCompany(), brochure)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Company == nil || user.Company.BrochurePath == nil {
			t.Fatal("brochure path missing from the aggregate")
		}
		if *user.Company.BrochurePath != "brochures/brochure_7_20250102_150405.pdf" {
			t.Errorf("unexpected brochure path %q", *user.Company.BrochurePath)
		}
	})

	t.Run("deletes stored brochure when the transaction aborts", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateCompanyFunc: func(ctx context.Context, company *entity.Company) error {
				return errors.New("constraint violation")
			},
		}
		store := &mockBrochureStore{}
		uc := NewRegisterUsecase(repo, store, discardLogger())

		brochure := &BrochureFile{Name: "catalog.pdf", Size: 9, Reader: strings.NewReader("pdf-bytes")}
		_, err := uc.Register(context.Background(), validAccount(), validCompany(), brochure)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if store.deletedPath != "brochures/brochure_7_20250102_150405.pdf" {
			t.Errorf("orphaned brochure was not cleaned up, deleted %q", store.deletedPath)
		}
	})

	t.Run("commit-time duplicate email maps to ErrEmailTaken", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateUserFunc: func(ctx context.Context, user *entity.User) error {
				return ErrDuplicateUser
			},
			EmailExistsFunc: func(ctx context.Context, email string) (bool, error) {
				return true, nil
			},
		}
		uc := NewRegisterUsecase(repo, &mockBrochureStore{}, discardLogger())

		_, err := uc.Register(context.Background(), validAccount(), validCompany(), nil)

		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("commit-time duplicate username maps to ErrUsernameTaken", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateUserFunc: func(ctx context.Context, user *entity.User) error {
				return ErrDuplicateUser
			},
			UsernameExistsFunc: func(ctx context.Context, username string) (bool, error) {
				return true, nil
			},
		}
		uc := NewRegisterUsecase(repo, &mockBrochureStore{}, discardLogger())

		_, err := uc.Register(context.Background(), validAccount(), validCompany(), nil)

		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("unresolvable duplicate stays a generic failure", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateUserFunc: func(ctx context.Context, user *entity.User) error {
				return ErrDuplicateUser
			},
		}
		uc := NewRegisterUsecase(repo, &mockBrochureStore{}, discardLogger())

		_, err := uc.Register(context.Background(), validAccount(), validCompany(), nil)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			t.Errorf("should not resolve to a field conflict, got %v", err)
		}
		if !errors.Is(err, ErrDuplicateUser) {
			t.Errorf("underlying cause lost, got %v", err)
		}
	})

	t.Run("repository failure propagates as a generic error", func(t *testing.T) {
		boom := errors.New("database gone")
		repo := &mockUserRepository{
			WithTxFunc: func(ctx context.Context, fn func(tx UserRepository) error) error {
				return boom
			},
		}
		uc := NewRegisterUsecase(repo, &mockBrochureStore{}, discardLogger())

		_, err := uc.Register(context.Background(), validAccount(), validCompany(), nil)

		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped %v, got %v", boom, err)
		}
	})
}

func TestRegisterUsecase_TakenChecks(t *testing.T) {
	repo := &mockUserRepository{
		EmailExistsFunc: func(ctx context.Context, email string) (bool, error) {
			return email == "taken@example.com", nil
		},
		UsernameExistsFunc: func(ctx context.Context, username string) (bool, error) {
			return username == "taken_user", nil
		},
	}
	uc := NewRegisterUsecase(repo, &mockBrochureStore{}, discardLogger())

	if taken, err := uc.EmailTaken(context.Background(), "taken@example.com"); err != nil || !taken {
		t.Errorf("expected taken=true, got taken=%v err=%v", taken, err)
	}
	if taken, err := uc.EmailTaken(context.Background(), "free@example.com"); err != nil || taken {
		t.Errorf("expected taken=false, got taken=%v err=%v", taken, err)
	}
	if taken, err := uc.UsernameTaken(context.Background(), "taken_user"); err != nil || !taken {
		t.Errorf("expected taken=true, got taken=%v err=%v", taken, err)
	}
	if taken, err := uc.UsernameTaken(context.Background(), "free_user"); err != nil || taken {
		t.Errorf("expected taken=false, got taken=%v err=%v", taken, err)
	}
}
