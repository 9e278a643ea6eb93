// Package expenses implements the per-user expense operations.
package expenses

import (
	"context"
	"errors"
	"strings"

	"expense-api/internal/apperr"
	"expense-api/internal/models"
	"expense-api/internal/storage"
)

// Store is the persistence the Service needs.
type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	ListExpensesByUser(ctx context.Context, userID int64) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, e *models.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
}

// Input is the client-supplied part of an expense.
// Amount is a pointer so that a missing amount can be told apart from zero.
type Input struct {
	Name     string   `json:"name"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" || in.Amount == nil {
		return apperr.NewValidation("Name, amount and category are required")
	}
	return nil
}

// Service lists and mutates expenses on behalf of an authenticated user.
type Service struct {
	store Store
	// enforceOwnership restricts update and delete to the expense owner.
	// When false any authenticated user may mutate any expense by id.
	enforceOwnership bool
}

// NewService creates a new Service.
func NewService(store Store, enforceOwnership bool) *Service {
	return &Service{store: store, enforceOwnership: enforceOwnership}
}

// List returns every expense owned by username.
func (s *Service) List(ctx context.Context, username string) ([]models.Expense, error) {
	user, err := s.currentUser(ctx, username)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "list expenses")
	}
	return expenses, nil
}

// Create stores a new expense owned by username.
func (s *Service) Create(ctx context.Context, username string, in Input) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	user, err := s.currentUser(ctx, username)
	if err != nil {
		return nil, err
	}

	e := &models.Expense{
		Name:     strings.TrimSpace(in.Name),
		Amount:   *in.Amount,
		Category: strings.TrimSpace(in.Category),
		UserID:   user.ID,
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, apperr.Wrap(err, "create expense")
	}
	return e, nil
}

// Update overwrites name, amount and category of expense id.
func (s *Service) Update(ctx context.Context, username string, id int64, in Input) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e, err := s.editableExpense(ctx, username, id)
	if err != nil {
		return nil, err
	}

	e.Name = strings.TrimSpace(in.Name)
	e.Amount = *in.Amount
	e.Category = strings.TrimSpace(in.Category)
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, expenseNotFound()
		}
		return nil, apperr.Wrap(err, "update expense")
	}
	return e, nil
}

// Delete removes expense id permanently.
func (s *Service) Delete(ctx context.Context, username string, id int64) error {
	if _, err := s.editableExpense(ctx, username, id); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return expenseNotFound()
		}
		return apperr.Wrap(err, "delete expense")
	}
	return nil
}

func (s *Service) currentUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NewNotFound("User not found")
		}
		return nil, apperr.Wrap(err, "lookup user")
	}
	return user, nil
}

// editableExpense loads expense id and, when ownership is enforced, hides
// expenses of other users behind the same not-found error.
func (s *Service) editableExpense(ctx context.Context, username string, id int64) (*models.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, expenseNotFound()
		}
		return nil, apperr.Wrap(err, "get expense")
	}
	if !s.enforceOwnership {
		return e, nil
	}

	user, err := s.currentUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if e.UserID != user.ID {
		return nil, expenseNotFound()
	}
	return e, nil
}

func expenseNotFound() error {
	return apperr.NewNotFound("Expense not found")
}
