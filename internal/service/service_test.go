package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/subscriptio/subscriptio/internal/auth"
	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/storage"
	"github.com/subscriptio/subscriptio/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "subscriptio-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func monthlySub(userID, name string, amount float64, anchorDay int) *models.Subscription {
	return &models.Subscription{
		UserID: userID,
		Name:   name,
		Amount: amount,
		Recurrence: &models.Recurrence{
			Kind: models.RecurrenceMonthly, Interval: 1, AnchorDay: anchorDay,
		},
	}
}

func TestSubscriptionServiceValidation(t *testing.T) {
	svc := NewSubscriptionService(newTestStore(t))
	ctx := context.Background()

	tests := []struct {
		name string
		sub  *models.Subscription
	}{
		{"missing name", &models.Subscription{Amount: 10}},
		{"negative amount", &models.Subscription{Name: "X", Amount: -1}},
		{"unknown recurrence kind", &models.Subscription{
			Name: "X", Amount: 10,
			Recurrence: &models.Recurrence{Kind: "weekly", Interval: 1, AnchorDay: 1},
		}},
		{"zero interval", &models.Subscription{
			Name: "X", Amount: 10,
			Recurrence: &models.Recurrence{Kind: models.RecurrenceMonthly, Interval: 0, AnchorDay: 1},
		}},
		{"anchor day out of range", &models.Subscription{
			Name: "X", Amount: 10,
			Recurrence: &models.Recurrence{Kind: models.RecurrenceMonthly, Interval: 1, AnchorDay: 32},
		}},
		{"percent share over 100", &models.Subscription{
			Name: "X", Amount: 10,
			Participants: []models.ParticipantShare{
				{PersonID: "p1", Kind: models.SharePercent, Value: 150},
			},
		}},
		{"share without person", &models.Subscription{
			Name: "X", Amount: 10,
			Participants: []models.ParticipantShare{
				{Kind: models.SharePercent, Value: 50},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, "user1", tt.sub)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSubscriptionServiceOwnership(t *testing.T) {
	store := newTestStore(t)
	svc := NewSubscriptionService(store)
	ctx := context.Background()

	sub := monthlySub("user1", "Netflix", 19.99, 15)
	if err := svc.Create(ctx, "user1", sub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(ctx, "user2", sub.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, "user2", sub.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete got %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, "user1", sub.ID); err != nil {
		t.Errorf("owner should read own subscription, got %v", err)
	}
}

func TestSubscriptionServiceSchedule(t *testing.T) {
	store := newTestStore(t)
	svc := NewSubscriptionService(store)
	ctx := context.Background()
	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	sub := monthlySub("user1", "Netflix", 19.99, 15)
	if err := svc.Create(ctx, "user1", sub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("preview does not persist", func(t *testing.T) {
		payments, err := svc.Schedule(ctx, "user1", sub.ID, from, 3)
		if err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
		if len(payments) != 3 {
			t.Fatalf("got %d payments, want 3", len(payments))
		}

		stored, err := store.ListPaymentsBySubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("ListPaymentsBySubscription failed: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("preview stored %d payments, want 0", len(stored))
		}
	})

	t.Run("materialize persists and is idempotent", func(t *testing.T) {
		created, err := svc.MaterializeSchedule(ctx, "user1", sub.ID, from, 3)
		if err != nil {
			t.Fatalf("MaterializeSchedule failed: %v", err)
		}
		if len(created) != 3 {
			t.Fatalf("got %d created, want 3", len(created))
		}

		again, err := svc.MaterializeSchedule(ctx, "user1", sub.ID, from, 3)
		if err != nil {
			t.Fatalf("second MaterializeSchedule failed: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("second run created %d payments, want 0", len(again))
		}

		stored, _ := store.ListPaymentsBySubscription(ctx, sub.ID)
		if len(stored) != 3 {
			t.Errorf("stored %d payments, want 3", len(stored))
		}
	})

	t.Run("negative horizon rejected", func(t *testing.T) {
		if _, err := svc.Schedule(ctx, "user1", sub.ID, from, -1); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("got %v, want ErrInvalidInput", err)
		}
	})
}

func TestSubscriptionServiceReports(t *testing.T) {
	store := newTestStore(t)
	svc := NewSubscriptionService(store)
	ctx := context.Background()
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	netflix := monthlySub("user1", "Netflix", 15, 10)
	netflix.Category = "Streaming"
	insurance := &models.Subscription{
		UserID: "user1", Name: "Insurance", Amount: 240, Category: "Insurance",
		Recurrence: &models.Recurrence{Kind: models.RecurrenceAnnual, Interval: 1, AnchorDay: 15},
	}
	for _, sub := range []*models.Subscription{netflix, insurance} {
		if err := svc.Create(ctx, "user1", sub); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	t.Run("forecast uses settings default months", func(t *testing.T) {
		forecast, err := svc.Forecast(ctx, "user1", 0, now)
		if err != nil {
			t.Fatalf("Forecast failed: %v", err)
		}
		if len(forecast) != 12 {
			t.Fatalf("got %d months, want 12 from default settings", len(forecast))
		}
		// 15 monthly + 240/12 annual.
		if forecast[0].Total != 35 {
			t.Errorf("month total = %v, want 35", forecast[0].Total)
		}
	})

	t.Run("breakdown groups by category", func(t *testing.T) {
		breakdown, err := svc.Breakdown(ctx, "user1")
		if err != nil {
			t.Fatalf("Breakdown failed: %v", err)
		}
		if len(breakdown) != 2 {
			t.Fatalf("got %d categories, want 2", len(breakdown))
		}
		if breakdown[0].Category != "Insurance" || breakdown[0].MonthlyEquivalent != 20 {
			t.Errorf("top category = %+v, want Insurance at 20/month", breakdown[0])
		}
	})

	t.Run("expiring respects explicit threshold", func(t *testing.T) {
		expiring, err := svc.Expiring(ctx, "user1", 10, now)
		if err != nil {
			t.Fatalf("Expiring failed: %v", err)
		}
		if len(expiring) != 1 || expiring[0].Name != "Netflix" {
			t.Errorf("got %+v, want just Netflix (renews on the 10th)", expiring)
		}
		if expiring[0].DaysUntilRenewal != 9 {
			t.Errorf("daysUntilRenewal = %d, want 9", expiring[0].DaysUntilRenewal)
		}
	})
}

func TestPaymentService(t *testing.T) {
	store := newTestStore(t)
	subs := NewSubscriptionService(store)
	payments := NewPaymentService(store)
	ctx := context.Background()

	shared := monthlySub("user1", "Netflix", 20, 15)
	shared.Shared = true
	shared.Participants = []models.ParticipantShare{
		{PersonID: "p1", Kind: models.SharePercent, Value: 25},
		{PersonID: "p2", Kind: models.SharePercent, Value: 25},
	}
	if err := subs.Create(ctx, "user1", shared); err != nil {
		t.Fatalf("Create subscription failed: %v", err)
	}

	t.Run("create derives splits from shares", func(t *testing.T) {
		payment := &models.Payment{
			SubscriptionID: shared.ID,
			DueDate:        time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			Amount:         20,
		}
		if err := payments.Create(ctx, "user1", payment); err != nil {
			t.Fatalf("Create payment failed: %v", err)
		}
		if len(payment.Splits) != 2 {
			t.Fatalf("got %d splits, want 2 derived from shares", len(payment.Splits))
		}
		if payment.Splits[0].Amount != 5 || payment.Splits[1].Amount != 5 {
			t.Errorf("splits = %+v, want 5.00 each", payment.Splits)
		}
	})

	t.Run("check split reports owner remainder", func(t *testing.T) {
		list, err := payments.ListBySubscription(ctx, "user1", shared.ID)
		if err != nil || len(list) == 0 {
			t.Fatalf("ListBySubscription failed: %v", err)
		}
		check, err := payments.CheckSplit(ctx, "user1", list[0].ID)
		if err != nil {
			t.Fatalf("CheckSplit failed: %v", err)
		}
		if check.Valid {
			t.Error("splits cover half the amount, check should be invalid")
		}
		if check.OwnerAmount != 10 {
			t.Errorf("ownerAmount = %v, want 10", check.OwnerAmount)
		}
	})

	t.Run("mark paid defaults paid date to now", func(t *testing.T) {
		list, _ := payments.ListBySubscription(ctx, "user1", shared.ID)
		paid, err := payments.MarkPaid(ctx, "user1", list[0].ID, time.Time{}, "p1")
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if !paid.Paid || paid.PaidDate == nil || paid.PayerID != "p1" {
			t.Errorf("got %+v, want paid now by p1", paid)
		}
	})

	t.Run("settle split tags a settlement id", func(t *testing.T) {
		list, _ := payments.ListBySubscription(ctx, "user1", shared.ID)
		settled, err := payments.SettleSplit(ctx, "user1", list[0].ID, "p2")
		if err != nil {
			t.Fatalf("SettleSplit failed: %v", err)
		}
		var split *models.Split
		for i := range settled.Splits {
			if settled.Splits[i].PersonID == "p2" {
				split = &settled.Splits[i]
			}
		}
		if split == nil || !split.Paid || split.SettlementID == "" {
			t.Errorf("splits = %+v, want p2 settled with an id", settled.Splits)
		}
	})

	t.Run("settle unknown person rejected", func(t *testing.T) {
		list, _ := payments.ListBySubscription(ctx, "user1", shared.ID)
		if _, err := payments.SettleSplit(ctx, "user1", list[0].ID, "stranger"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("got %v, want ErrInvalidInput", err)
		}
	})

	t.Run("other user cannot touch the payment", func(t *testing.T) {
		list, _ := payments.ListBySubscription(ctx, "user1", shared.ID)
		if _, err := payments.Get(ctx, "user2", list[0].ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})
}

func TestPeopleServiceBalances(t *testing.T) {
	store := newTestStore(t)
	people := NewPeopleService(store)
	subs := NewSubscriptionService(store)
	payments := NewPaymentService(store)
	ctx := context.Background()

	mario := &models.Person{Name: "Mario"}
	if err := people.Create(ctx, "user1", mario); err != nil {
		t.Fatalf("Create person failed: %v", err)
	}

	sub := monthlySub("user1", "Netflix", 20, 15)
	sub.Shared = true
	sub.Participants = []models.ParticipantShare{
		{PersonID: mario.ID, Kind: models.SharePercent, Value: 50},
	}
	if err := subs.Create(ctx, "user1", sub); err != nil {
		t.Fatalf("Create subscription failed: %v", err)
	}

	payment := &models.Payment{
		SubscriptionID: sub.ID,
		DueDate:        time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
		Amount:         20,
	}
	if err := payments.Create(ctx, "user1", payment); err != nil {
		t.Fatalf("Create payment failed: %v", err)
	}

	balances, err := people.Balances(ctx, "user1")
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	balance, ok := balances[mario.ID]
	if !ok {
		t.Fatalf("no balance for mario, got %+v", balances)
	}
	if balance.TotalOwed != 10 || balance.NetBalance != 10 {
		t.Errorf("balance = %+v, want 10 owed", balance)
	}
	if len(balance.PendingPayments) != 1 {
		t.Errorf("got %d pending payments, want 1", len(balance.PendingPayments))
	}

	// Deleting the subscription keeps the payment in the balance.
	if err := subs.Delete(ctx, "user1", sub.ID); err != nil {
		t.Fatalf("Delete subscription failed: %v", err)
	}
	balances, err = people.Balances(ctx, "user1")
	if err != nil {
		t.Fatalf("Balances after delete failed: %v", err)
	}
	if balances[mario.ID].TotalOwed != 10 {
		t.Errorf("orphaned payment dropped from balances: %+v", balances[mario.ID])
	}
}

func TestNotificationServiceRefresh(t *testing.T) {
	store := newTestStore(t)
	subs := NewSubscriptionService(store)
	notifications := NewNotificationService(store)
	ctx := context.Background()
	now := time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)

	soon := monthlySub("user1", "Netflix", 15, 25)
	farOff := monthlySub("user1", "Insurance", 30, 10)
	for _, sub := range []*models.Subscription{soon, farOff} {
		if err := subs.Create(ctx, "user1", sub); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	created, err := notifications.Refresh(ctx, "user1", now)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(created) != 1 || created[0].SubscriptionID != soon.ID {
		t.Fatalf("got %+v, want one reminder for Netflix", created)
	}
	if created[0].Message != "Netflix renews in 5 days" {
		t.Errorf("message = %q", created[0].Message)
	}

	t.Run("refresh replaces instead of duplicating", func(t *testing.T) {
		if _, err := notifications.Refresh(ctx, "user1", now); err != nil {
			t.Fatalf("second Refresh failed: %v", err)
		}
		list, err := notifications.List(ctx, "user1")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("got %d notifications, want 1", len(list))
		}
	})

	t.Run("mark read is scoped to the user", func(t *testing.T) {
		list, _ := notifications.List(ctx, "user1")
		if err := notifications.MarkRead(ctx, "user2", list[0].ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound for another user", err)
		}
		if err := notifications.MarkRead(ctx, "user1", list[0].ID); err != nil {
			t.Errorf("MarkRead failed: %v", err)
		}
	})
}

func TestAuthServiceSessions(t *testing.T) {
	// Uses the real authenticator and token manager against the sqlite store.
	store := newTestStore(t)
	svc := newAuthServiceForTest(store)
	ctx := context.Background()

	session, err := svc.Register(ctx, "mario@email.com", "Mario", "correcthorse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if session.Token == "" || session.User.ID == "" {
		t.Fatalf("session incomplete: %+v", session)
	}

	t.Run("register seeds default settings", func(t *testing.T) {
		settings, err := svc.GetSettings(ctx, session.User.ID)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if settings.Currency != "EUR" {
			t.Errorf("currency = %s, want EUR default", settings.Currency)
		}
	})

	t.Run("login returns a session", func(t *testing.T) {
		login, err := svc.Login(ctx, "mario@email.com", "correcthorse")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if login.User.ID != session.User.ID {
			t.Errorf("login user = %s, want %s", login.User.ID, session.User.ID)
		}
	})

	t.Run("settings validation", func(t *testing.T) {
		err := svc.UpdateSettings(ctx, session.User.ID, &models.Settings{Currency: "", ForecastMonths: 6, ExpiringDays: 7})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("got %v, want ErrInvalidInput", err)
		}
		if err := svc.UpdateSettings(ctx, session.User.ID, &models.Settings{Currency: "USD", ForecastMonths: 6, ExpiringDays: 3}); err != nil {
			t.Fatalf("UpdateSettings failed: %v", err)
		}
		settings, _ := svc.GetSettings(ctx, session.User.ID)
		if settings.Currency != "USD" || settings.ForecastMonths != 6 {
			t.Errorf("settings = %+v, want stored values", settings)
		}
	})
}

func newAuthServiceForTest(store storage.Store) *AuthService {
	return NewAuthService(
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager("test-secret-key", time.Hour),
		store,
	)
}
