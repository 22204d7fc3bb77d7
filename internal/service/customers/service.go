package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/messaging/kafka"
	"github.com/antonvlasov/shop/internal/metrics"
)

// RegisterRequest — входные данные регистрации клиента.
type RegisterRequest struct {
	Name  string
	Email string
}

// Service реализует регистрацию клиентов поверх CustomerRepository.
// Email уникален: повторная регистрация отклоняется без создания записи.
type Service struct {
	customers domain.CustomerRepository
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.WorkflowMetrics
}

// NewService создаёт рабочий экземпляр сервиса регистрации.
func NewService(
	customers domain.CustomerRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "customers")
	}
	return &Service{
		customers: customers,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewWorkflowMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	customers domain.CustomerRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	svc := NewService(customers, outbox, logger)
	svc.metrics = nil
	return svc
}

// Register проверяет уникальность email и создаёт нового клиента.
// При занятом email возвращает ErrEmailAlreadyRegistered, не создавая запись.
func (s *Service) Register(_ context.Context, req RegisterRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	candidate := domain.Customer{Name: name, Email: email}
	if errs := candidate.ValidateInvariants(); len(errs) > 0 {
		s.recordRejected(metrics.RejectReasonInvalidRequest)
		return domain.Customer{}, errs[0]
	}

	_, err := s.customers.GetByEmail(email)
	switch {
	case err == nil:
		s.logger.WithField("email", email).Info("registration rejected: email is taken")
		s.recordRejected(metrics.RejectReasonDuplicateEmail)
		return domain.Customer{}, domain.ErrEmailAlreadyRegistered
	case !errors.Is(err, domain.ErrCustomerNotFound):
		s.logger.WithError(err).Error("failed to check email uniqueness")
		return domain.Customer{}, fmt.Errorf("lookup customer by email: %w", err)
	}

	created, err := s.customers.Create(candidate)
	if err != nil {
		// Параллельная регистрация могла занять email между проверкой и записью.
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			s.recordRejected(metrics.RejectReasonDuplicateEmail)
			return domain.Customer{}, err
		}
		s.logger.WithError(err).Error("failed to create customer")
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCustomerRegistered()
	}
	s.emitRegisteredEvent(created)

	s.logger.WithFields(log.Fields{
		"customer_id": created.ID,
		"email":       created.Email,
	}).Info("customer registered")

	return created, nil
}

func (s *Service) recordRejected(reason string) {
	if s.metrics != nil {
		s.metrics.RecordRejected(reason)
	}
}

func (s *Service) emitRegisteredEvent(customer domain.Customer) {
	if s.outbox == nil {
		return
	}

	event := kafka.NewCustomerRegisteredEvent(customer.ID, customer.Email)
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.ID).Error("marshal registered event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "customer",
		AggregateID:   customer.ID,
		EventType:     string(kafka.EventTypeCustomerRegistered),
		Payload:       payload,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.ID).Error("enqueue registered event failed")
	} else if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}
