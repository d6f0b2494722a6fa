// Package staff holds personnel records: operator accounts and workshop
// technicians. Accounts carry the role used to gate admin-only operations
// (manual stock adjustments, data reset).
package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trotech/dealer-core/ledger"
)

// =============================================================================
// TYPES
// =============================================================================

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleUser       Role = "USER"
)

// CanAdminister reports whether the role may run admin-gated operations.
func (r Role) CanAdminister() bool { return r == RoleSuperAdmin }

type Account struct {
	ID        string
	Name      string
	Email     string
	Username  string
	Role      Role
	CreatedAt time.Time
}

type TechnicianStatus string

const (
	TechActive  TechnicianStatus = "ACTIVE"
	TechOnBreak TechnicianStatus = "ON_BREAK"
	TechOffDuty TechnicianStatus = "OFF_DUTY"
)

type Technician struct {
	ID             string
	Name           string
	Specialization string
	Status         TechnicianStatus
	JoinedDate     ledger.Date
}

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	SaveAccount(ctx context.Context, a Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	DeleteAccount(ctx context.Context, id string) error

	SaveTechnician(ctx context.Context, t Technician) error
	ListTechnicians(ctx context.Context) ([]Technician, error)
	DeleteTechnician(ctx context.Context, id string) error
}

// =============================================================================
// SERVICE
// =============================================================================

type NewAccount struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3"`
	Role     string `validate:"required,oneof=SUPER_ADMIN USER"`
}

type NewTechnician struct {
	Name           string `validate:"required,min=2"`
	Specialization string `validate:"required,min=2"`
}

type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:    store,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateAccount(ctx context.Context, in NewAccount) (*Account, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}
	acct := Account{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Username:  in.Username,
		Role:      Role(in.Role),
		CreatedAt: s.now(),
	}
	if err := s.store.SaveAccount(ctx, acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *Service) CreateTechnician(ctx context.Context, in NewTechnician) (*Technician, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}
	tech := Technician{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Specialization: in.Specialization,
		Status:         TechActive,
		JoinedDate:     ledger.DateOf(s.now()),
	}
	if err := s.store.SaveTechnician(ctx, tech); err != nil {
		return nil, err
	}
	return &tech, nil
}

func (s *Service) checkInput(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var msgs []string
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s", fe.Field()))
	}
	return &ledger.ValidationError{Messages: msgs}
}

func (s *Service) Accounts(ctx context.Context) ([]Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *Service) Account(ctx context.Context, id string) (*Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *Service) Technicians(ctx context.Context) ([]Technician, error) {
	return s.store.ListTechnicians(ctx)
}

func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.store.DeleteAccount(ctx, id)
}

func (s *Service) DeleteTechnician(ctx context.Context, id string) error {
	return s.store.DeleteTechnician(ctx, id)
}
