// Package services реализует бизнес-логику регулярных расходов: валидацию правил,
// кэширование, журнал аудита и публикацию изменений в realtime-ленту.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/barbershop-manager/internal/expense"
	"github.com/magabrotheeeer/barbershop-manager/internal/lib/sl"
	"github.com/magabrotheeeer/barbershop-manager/internal/models"
	"github.com/magabrotheeeer/barbershop-manager/internal/realtime"
)

// Имя таблицы в журнале аудита и в realtime-событиях.
const table = "recurring_expenses"

const cacheTTL = time.Hour

// Repository определяет методы для работы с правилами расходов в хранилище.
type Repository interface {
	CreateRecurringExpense(ctx context.Context, e models.RecurringExpense) (int, error)
	GetRecurringExpense(ctx context.Context, userUID string, id int) (*models.RecurringExpense, error)
	UpdateRecurringExpense(ctx context.Context, e models.RecurringExpense) (time.Time, error)
	DeleteRecurringExpense(ctx context.Context, userUID string, id int) error
	CountRecurringExpenses(ctx context.Context, userUID string) (int, error)
	ListRecurringExpenses(ctx context.Context, userUID string, limit, offset int) ([]*models.RecurringExpense, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Auditor пишет журнал изменений. Ошибки не возвращаются.
type Auditor interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// ChangePublisher рассылает изменение строк подписчикам пользователя.
type ChangePublisher interface {
	Publish(userUID, table, action, id string, row any)
}

// Service реализует CRUD регулярных расходов.
type Service struct {
	repo  Repository
	cache Cache
	audit Auditor
	feed  ChangePublisher
	log   *slog.Logger
	now   func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, audit Auditor, feed ChangePublisher, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		audit: audit,
		feed:  feed,
		log:   log,
		now:   time.Now,
	}
}

func cacheKey(id int) string {
	return fmt.Sprintf("recurring_expense:%d", id)
}

// Create валидирует форму, сохраняет правило и возвращает его.
func (s *Service) Create(ctx context.Context, userUID string, in models.RecurringExpenseInput) (*models.RecurringExpense, error) {
	const op = "services.expense.Create"
	e, err := expense.Build(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now().UTC()
	e.UserUID = userUID
	e.CreatedAt = now
	e.UpdatedAt = now

	id, err := s.repo.CreateRecurringExpense(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e.ID = id
	s.log.Info("created recurring expense", slog.Int("id", id))

	if err := s.cache.Set(ctx, cacheKey(id), e, cacheTTL); err != nil {
		s.log.Warn("failed to cache recurring expense", slog.Int("id", id), sl.Err(err))
	}
	s.changed(ctx, userUID, models.AuditCreate, realtime.ActionInsert, &e)
	return &e, nil
}

// Read возвращает правило владельца, используя кэш или репозиторий.
func (s *Service) Read(ctx context.Context, userUID string, id int) (*models.RecurringExpense, error) {
	const op = "services.expense.Read"
	var cached models.RecurringExpense
	found, err := s.cache.Get(ctx, cacheKey(id), &cached)
	if err != nil {
		s.log.Warn("failed to read recurring expense from cache", slog.Int("id", id), sl.Err(err))
	}
	if found && cached.UserUID == userUID {
		return &cached, nil
	}

	e, err := s.repo.GetRecurringExpense(ctx, userUID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, cacheKey(id), e, cacheTTL); err != nil {
		s.log.Warn("failed to cache recurring expense", slog.Int("id", id), sl.Err(err))
	}
	return e, nil
}

// Update полностью перезаписывает правило. Проверки версий нет: побеждает последняя запись.
func (s *Service) Update(ctx context.Context, userUID string, id int, in models.RecurringExpenseInput) (*models.RecurringExpense, error) {
	const op = "services.expense.Update"
	e, err := expense.Build(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e.ID = id
	e.UserUID = userUID
	e.UpdatedAt = s.now().UTC()

	createdAt, err := s.repo.UpdateRecurringExpense(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e.CreatedAt = createdAt
	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate recurring expense", slog.Int("id", id), sl.Err(err))
	}
	s.log.Info("updated recurring expense", slog.Int("id", id))
	s.changed(ctx, userUID, models.AuditUpdate, realtime.ActionUpdate, &e)
	return &e, nil
}

// Delete удаляет правило владельца.
func (s *Service) Delete(ctx context.Context, userUID string, id int) error {
	const op = "services.expense.Delete"
	if err := s.repo.DeleteRecurringExpense(ctx, userUID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate recurring expense", slog.Int("id", id), sl.Err(err))
	}
	s.log.Info("deleted recurring expense", slog.Int("id", id))
	s.changed(ctx, userUID, models.AuditDelete, realtime.ActionDelete, &models.RecurringExpense{ID: id, UserUID: userUID})
	return nil
}

// List возвращает страницу правил. Сначала считается общее количество, затем
// читается страница. page начинается с 1.
func (s *Service) List(ctx context.Context, userUID string, page, pageSize int) (*models.RecurringExpensePage, error) {
	const op = "services.expense.List"
	total, err := s.repo.CountRecurringExpenses(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, err := s.repo.ListRecurringExpenses(ctx, userUID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.RecurringExpensePage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// All возвращает все правила пользователя без пагинации.
func (s *Service) All(ctx context.Context, userUID string) ([]*models.RecurringExpense, error) {
	const op = "services.expense.All"
	items, err := s.repo.ListRecurringExpenses(ctx, userUID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (s *Service) changed(ctx context.Context, userUID, auditAction, feedAction string, e *models.RecurringExpense) {
	id := strconv.Itoa(e.ID)
	entry := models.AuditEntry{
		UserUID:  userUID,
		Action:   auditAction,
		Entity:   table,
		EntityID: id,
	}
	var row any
	if feedAction != realtime.ActionDelete {
		entry.Details = map[string]string{"label": e.Label, "frequency": string(e.Frequency)}
		row = e
	}
	s.audit.Record(ctx, entry)
	s.feed.Publish(userUID, table, feedAction, id, row)
}
