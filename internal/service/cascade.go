package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/canteenhub/api/internal/store"
)

// Errors returned by the cascade service.
var (
	ErrBranchNotFound  = errors.New("branch not found")
	ErrCanteenNotFound = errors.New("canteen not found")
)

// CascadeStore defines the DB methods needed for cascading deletes.
// Satisfied by *store.Queries.
type CascadeStore interface {
	ListCanteenIDsByBranch(ctx context.Context, branchID int64) ([]int64, error)
	DeleteMenuItemsByCanteens(ctx context.Context, canteenIDs []int64) error
	DeleteMenuItemsByCanteen(ctx context.Context, canteenID int64) error
	DeleteCanteensByBranch(ctx context.Context, branchID int64) (int64, error)
	DeleteCanteen(ctx context.Context, id int64) (int64, error)
	ClearAdminBranch(ctx context.Context, branchID int64) error
	ClearAdminCanteen(ctx context.Context, canteenID int64) error
	DeleteBranch(ctx context.Context, id int64) (int64, error)
}

// NewCascadeStore creates a CascadeStore from a DBTX (pool or tx).
type NewCascadeStore func(db store.DBTX) CascadeStore

// CascadeService removes a branch or canteen together with everything
// hanging off it, inside one transaction so a mid-sequence failure
// never leaves orphaned rows.
type CascadeService struct {
	pool     store.Beginner
	newStore NewCascadeStore
}

// NewCascadeService creates a new CascadeService.
func NewCascadeService(pool store.Beginner, newStore NewCascadeStore) *CascadeService {
	return &CascadeService{pool: pool, newStore: newStore}
}

// DeleteCanteen removes a canteen, its menu items, and detaches any
// admins assigned to it. ErrCanteenNotFound (and a full rollback) when
// the canteen row itself is gone.
func (s *CascadeService) DeleteCanteen(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	st := s.newStore(tx)

	if err := st.DeleteMenuItemsByCanteen(ctx, id); err != nil {
		return fmt.Errorf("delete menu items: %w", err)
	}
	if err := st.ClearAdminCanteen(ctx, id); err != nil {
		return fmt.Errorf("unlink admins: %w", err)
	}
	affected, err := st.DeleteCanteen(ctx, id)
	if err != nil {
		return fmt.Errorf("delete canteen: %w", err)
	}
	if affected == 0 {
		return ErrCanteenNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DeleteBranch removes a branch, every canteen under it, their menu
// items, and detaches admins pointing at the branch. ErrBranchNotFound
// (and a full rollback) when the branch row itself is gone.
func (s *CascadeService) DeleteBranch(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	st := s.newStore(tx)

	canteenIDs, err := st.ListCanteenIDsByBranch(ctx, id)
	if err != nil {
		return fmt.Errorf("list canteens: %w", err)
	}
	if len(canteenIDs) > 0 {
		if err := st.DeleteMenuItemsByCanteens(ctx, canteenIDs); err != nil {
			return fmt.Errorf("delete menu items: %w", err)
		}
		for _, canteenID := range canteenIDs {
			if err := st.ClearAdminCanteen(ctx, canteenID); err != nil {
				return fmt.Errorf("unlink canteen admins: %w", err)
			}
		}
	}
	if _, err := st.DeleteCanteensByBranch(ctx, id); err != nil {
		return fmt.Errorf("delete canteens: %w", err)
	}
	if err := st.ClearAdminBranch(ctx, id); err != nil {
		return fmt.Errorf("unlink admins: %w", err)
	}
	affected, err := st.DeleteBranch(ctx, id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if affected == 0 {
		return ErrBranchNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
