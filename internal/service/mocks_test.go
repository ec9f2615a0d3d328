package service

// Моки репозиториев для unit-тестов сервисного слоя.

import (
	"context"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

// mockPartRepo — мок PartRepository.
type mockPartRepo struct {
	createFn      func(ctx context.Context, p *model.Part) error
	getByIDFn     func(ctx context.Context, id string) (*model.Part, error)
	getByPartNoFn func(ctx context.Context, partNo string) (*model.Part, error)
	listFn        func(ctx context.Context, customer *string) ([]*model.Part, error)
	customersFn   func(ctx context.Context) ([]string, error)
	updateFn      func(ctx context.Context, p *model.Part) error
	deleteFn      func(ctx context.Context, id string) error
}

func (m *mockPartRepo) Create(ctx context.Context, p *model.Part) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPartRepo) GetByID(ctx context.Context, id string) (*model.Part, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockPartRepo) GetByPartNo(ctx context.Context, partNo string) (*model.Part, error) {
	if m.getByPartNoFn != nil {
		return m.getByPartNoFn(ctx, partNo)
	}
	return nil, repository.ErrNotFound
}

func (m *mockPartRepo) List(ctx context.Context, customer *string) ([]*model.Part, error) {
	if m.listFn != nil {
		return m.listFn(ctx, customer)
	}
	return nil, nil
}

func (m *mockPartRepo) Customers(ctx context.Context) ([]string, error) {
	if m.customersFn != nil {
		return m.customersFn(ctx)
	}
	return nil, nil
}

func (m *mockPartRepo) Update(ctx context.Context, p *model.Part) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockPartRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockReportRepo — мок ReportRepository.
type mockReportRepo struct {
	createFn          func(ctx context.Context, rep *model.InspectionReport) error
	getByIDFn         func(ctx context.Context, id string) (*model.InspectionReport, error)
	listFn            func(ctx context.Context, filter repository.ReportFilter) ([]*model.InspectionReport, error)
	applyTransitionFn func(ctx context.Context, id string, expected workflow.Status, patch *workflow.Patch) error
	deleteFn          func(ctx context.Context, id string) error
}

func (m *mockReportRepo) Create(ctx context.Context, rep *model.InspectionReport) error {
	if m.createFn != nil {
		return m.createFn(ctx, rep)
	}
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*model.InspectionReport, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockReportRepo) List(ctx context.Context, filter repository.ReportFilter) ([]*model.InspectionReport, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockReportRepo) ApplyTransition(ctx context.Context, id string, expected workflow.Status, patch *workflow.Patch) error {
	if m.applyTransitionFn != nil {
		return m.applyTransitionFn(ctx, id, expected, patch)
	}
	return nil
}

func (m *mockReportRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockUserRepo — мок UserRepository.
type mockUserRepo struct {
	createFn      func(ctx context.Context, u *model.User) error
	getByIDFn     func(ctx context.Context, id string) (*model.User, error)
	getByEmailFn  func(ctx context.Context, email string) (*model.User, error)
	getByIDsFn    func(ctx context.Context, ids []string) ([]*model.User, error)
	listFn        func(ctx context.Context) ([]*model.User, error)
	countByRoleFn func(ctx context.Context, role workflow.Role) (int, error)
	deleteFn      func(ctx context.Context, id string) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role workflow.Role) (int, error) {
	if m.countByRoleFn != nil {
		return m.countByRoleFn(ctx, role)
	}
	return 0, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
