// parts.go — сервис управления карточками деталей.
// Создание, изменение и удаление доступны только роли Quality Head
// (проверяется на уровне маршрутов); здесь — валидация и работа с БД.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

// PartService — сервис карточек деталей.
type PartService struct {
	partRepo repository.PartRepository
	cache    *GridCache
	logger   *slog.Logger
}

// NewPartService создаёт сервис деталей.
func NewPartService(partRepo repository.PartRepository, cache *GridCache, logger *slog.Logger) *PartService {
	return &PartService{
		partRepo: partRepo,
		cache:    cache,
		logger:   logger.With(slog.String("component", "part_service")),
	}
}

// PartInput — входные данные создания/обновления детали.
type PartInput struct {
	PartNo          string                     `json:"partNo"`
	PartName        string                     `json:"partName"`
	Customer        string                     `json:"customer"`
	Characteristics []model.CharacteristicSpec `json:"characteristics"`
}

// validatePartInput проверяет обязательные поля карточки: все реквизиты
// заполнены, есть минимум одна полностью заполненная характеристика.
func validatePartInput(in PartInput) error {
	if strings.TrimSpace(in.PartNo) == "" {
		return fmt.Errorf("%w: не заполнен номер детали", ErrValidation)
	}
	if strings.TrimSpace(in.PartName) == "" {
		return fmt.Errorf("%w: не заполнено название детали", ErrValidation)
	}
	if strings.TrimSpace(in.Customer) == "" {
		return fmt.Errorf("%w: не заполнен заказчик", ErrValidation)
	}
	if len(in.Characteristics) == 0 {
		return fmt.Errorf("%w: требуется минимум одна характеристика", ErrValidation)
	}
	for i, c := range in.Characteristics {
		if strings.TrimSpace(c.Name) == "" ||
			strings.TrimSpace(c.Specification) == "" ||
			strings.TrimSpace(c.CheckMethod) == "" {
			return fmt.Errorf("%w: характеристика %d заполнена не полностью", ErrValidation, i+1)
		}
	}
	return nil
}

// Create создаёт карточку детали.
func (s *PartService) Create(ctx context.Context, in PartInput) (*model.Part, error) {
	if err := validatePartInput(in); err != nil {
		return nil, err
	}

	p := &model.Part{
		ID:              uuid.New().String(),
		PartNo:          strings.TrimSpace(in.PartNo),
		PartName:        strings.TrimSpace(in.PartName),
		Customer:        strings.TrimSpace(in.Customer),
		Characteristics: in.Characteristics,
	}

	if err := s.partRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: деталь %q уже существует", ErrConflict, p.PartNo)
		}
		return nil, fmt.Errorf("сохранение детали: %w", err)
	}

	s.cache.Purge()
	s.logger.Info("Деталь создана",
		slog.String("part_id", p.ID),
		slog.String("part_no", p.PartNo),
		slog.String("customer", p.Customer),
	)
	return p, nil
}

// Get возвращает деталь по ID.
func (s *PartService) Get(ctx context.Context, id string) (*model.Part, error) {
	p, err := s.partRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение детали: %w", err)
	}
	return p, nil
}

// List возвращает детали, опционально по заказчику.
func (s *PartService) List(ctx context.Context, customer *string) ([]*model.Part, error) {
	parts, err := s.partRepo.List(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("получение списка деталей: %w", err)
	}
	return parts, nil
}

// Update обновляет карточку детали целиком.
func (s *PartService) Update(ctx context.Context, id string, in PartInput) (*model.Part, error) {
	if err := validatePartInput(in); err != nil {
		return nil, err
	}

	p, err := s.partRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение детали для обновления: %w", err)
	}

	p.PartNo = strings.TrimSpace(in.PartNo)
	p.PartName = strings.TrimSpace(in.PartName)
	p.Customer = strings.TrimSpace(in.Customer)
	p.Characteristics = in.Characteristics

	if err := s.partRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: деталь %q уже существует", ErrConflict, p.PartNo)
		}
		return nil, fmt.Errorf("обновление детали: %w", err)
	}

	s.cache.Purge()
	s.logger.Info("Деталь обновлена", slog.String("part_id", id))
	return p, nil
}

// Delete удаляет карточку детали. Поданные отчёты не удаляются:
// они несут замороженную копию реквизитов.
func (s *PartService) Delete(ctx context.Context, id string) error {
	if err := s.partRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление детали: %w", err)
	}

	s.cache.Purge()
	s.logger.Info("Деталь удалена", slog.String("part_id", id))
	return nil
}
