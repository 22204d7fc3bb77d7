package customers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/antonvlasov/shop/internal/domain"
	"github.com/antonvlasov/shop/internal/service/customers"
	"github.com/antonvlasov/shop/internal/storage/memory"
)

func newService(t *testing.T) (*customers.Service, domain.CustomerRepository, domain.OutboxRepository) {
	t.Helper()
	repo := memory.NewCustomerRepository()
	outbox := memory.NewOutboxRepository()
	svc := customers.NewServiceWithoutMetrics(repo, outbox, nil)
	return svc, repo, outbox
}

func TestRegister(t *testing.T) {
	svc, repo, outbox := newService(t)

	created, err := svc.Register(context.Background(), customers.RegisterRequest{
		Name:  "Анна",
		Email: "anna@example.com",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Register() не заполнил ID")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("Register() не заполнил CreatedAt")
	}

	stored, err := repo.GetByEmail("anna@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if stored.ID != created.ID {
		t.Fatalf("сохранён клиент %q, ожидался %q", stored.ID, created.ID)
	}

	stats, err := outbox.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("в outbox %d событий, ожидалось 1", stats.PendingCount)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, outbox := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, customers.RegisterRequest{Name: "Анна", Email: "anna@example.com"}); err != nil {
		t.Fatalf("первая регистрация: %v", err)
	}

	_, err := svc.Register(ctx, customers.RegisterRequest{Name: "Другая Анна", Email: "anna@example.com"})
	if !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		t.Fatalf("Register() error = %v, ожидался ErrEmailAlreadyRegistered", err)
	}

	// Email сравнивается без учёта регистра.
	_, err = svc.Register(ctx, customers.RegisterRequest{Name: "Анна", Email: "ANNA@example.com"})
	if !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		t.Fatalf("Register() с другим регистром: error = %v, ожидался ErrEmailAlreadyRegistered", err)
	}

	stats, err := outbox.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("отклонённые регистрации не должны порождать события, в outbox %d", stats.PendingCount)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     customers.RegisterRequest
		wantErr error
	}{
		{
			name:    "пустое имя",
			req:     customers.RegisterRequest{Name: "   ", Email: "a@example.com"},
			wantErr: domain.ErrCustomerNameRequired,
		},
		{
			name:    "пустой email",
			req:     customers.RegisterRequest{Name: "Анна", Email: ""},
			wantErr: domain.ErrCustomerEmailRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, ожидался %v", err, tt.wantErr)
			}
		})
	}
}
