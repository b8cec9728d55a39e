package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "subscriptio-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSubscriptions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateSubscription generates ID and timestamps", func(t *testing.T) {
		sub := &models.Subscription{
			UserID:   "user1",
			Name:     "Netflix",
			Category: "Streaming",
			Amount:   19.99,
			Shared:   true,
			Recurrence: &models.Recurrence{
				Kind: models.RecurrenceMonthly, Interval: 1, AnchorDay: 15,
			},
			Participants: []models.ParticipantShare{
				{PersonID: "p1", Kind: models.SharePercent, Value: 50},
				{PersonID: "p2", Kind: models.SharePercent, Value: 50},
			},
		}

		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}
		if sub.ID == "" {
			t.Error("Expected subscription ID to be generated")
		}
		if sub.CreatedAt == 0 || sub.UpdatedAt == 0 {
			t.Error("Expected timestamps to be set")
		}
		if sub.Status != models.StatusActive {
			t.Errorf("Expected default status active, got %s", sub.Status)
		}
	})

	t.Run("GetSubscription retrieves recurrence and shares", func(t *testing.T) {
		end := time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)
		original := &models.Subscription{
			UserID: "user1",
			Name:   "Finanziamento Auto",
			Amount: 299.99,
			Recurrence: &models.Recurrence{
				Kind: models.RecurrenceMonthly, Interval: 1, AnchorDay: 5,
			},
			Installments: 24,
			EndDate:      &end,
			Shared:       true,
			Participants: []models.ParticipantShare{
				{PersonID: "p1", Kind: models.ShareFixed, Value: 150},
				{PersonID: "p2", Kind: models.SharePercent, Value: 50},
			},
		}
		if err := store.CreateSubscription(ctx, original); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		got, err := store.GetSubscription(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if got.Name != original.Name || got.Amount != original.Amount {
			t.Errorf("got %s/%v, want %s/%v", got.Name, got.Amount, original.Name, original.Amount)
		}
		if got.Recurrence == nil || got.Recurrence.AnchorDay != 5 {
			t.Errorf("recurrence not restored: %+v", got.Recurrence)
		}
		if got.EndDate == nil || !got.EndDate.Equal(end) {
			t.Errorf("endDate not restored: %v", got.EndDate)
		}
		if got.Installments != 24 {
			t.Errorf("installments = %d, want 24", got.Installments)
		}
		if len(got.Participants) != 2 {
			t.Fatalf("got %d shares, want 2", len(got.Participants))
		}
		// Share order is preserved.
		if got.Participants[0].Kind != models.ShareFixed || got.Participants[0].Value != 150 {
			t.Errorf("first share = %+v, want fixed 150", got.Participants[0])
		}
	})

	t.Run("subscription without recurrence round-trips as nil", func(t *testing.T) {
		sub := &models.Subscription{UserID: "user1", Name: "One-off", Amount: 10}
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}
		got, err := store.GetSubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if got.Recurrence != nil {
			t.Errorf("expected nil recurrence, got %+v", got.Recurrence)
		}
	})

	t.Run("UpdateSubscription replaces shares in place", func(t *testing.T) {
		sub := &models.Subscription{
			UserID: "user1", Name: "Spotify", Amount: 9.99, Shared: true,
			Recurrence: &models.Recurrence{Kind: models.RecurrenceMonthly, Interval: 1, AnchorDay: 20},
			Participants: []models.ParticipantShare{
				{PersonID: "p1", Kind: models.SharePercent, Value: 100},
			},
		}
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		sub.Amount = 10.99
		sub.Participants = []models.ParticipantShare{
			{PersonID: "p1", Kind: models.SharePercent, Value: 50},
			{PersonID: "p3", Kind: models.SharePercent, Value: 50},
		}
		if err := store.UpdateSubscription(ctx, sub); err != nil {
			t.Fatalf("UpdateSubscription failed: %v", err)
		}

		got, err := store.GetSubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if got.Amount != 10.99 {
			t.Errorf("amount = %v, want 10.99", got.Amount)
		}
		if len(got.Participants) != 2 || got.Participants[1].PersonID != "p3" {
			t.Errorf("shares not replaced: %+v", got.Participants)
		}
	})

	t.Run("ListSubscriptions is scoped to the user", func(t *testing.T) {
		other := &models.Subscription{UserID: "user2", Name: "Else", Amount: 1}
		if err := store.CreateSubscription(ctx, other); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		subs, err := store.ListSubscriptions(ctx, "user2")
		if err != nil {
			t.Fatalf("ListSubscriptions failed: %v", err)
		}
		if len(subs) != 1 || subs[0].Name != "Else" {
			t.Errorf("got %+v, want just user2's subscription", subs)
		}
	})

	t.Run("missing subscription reports ErrNotFound", func(t *testing.T) {
		_, err := store.GetSubscription(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
		if err := store.DeleteSubscription(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("delete got %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStorePayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sub := &models.Subscription{UserID: "user1", Name: "Netflix", Amount: 19.99}
	if err := store.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription failed: %v", err)
	}

	t.Run("payment round-trips with splits", func(t *testing.T) {
		payment := &models.Payment{
			SubscriptionID: sub.ID,
			DueDate:        time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			Amount:         19.99,
			Splits: []models.Split{
				{PersonID: "p1", Amount: 10.00},
				{PersonID: "p2", Amount: 9.99, Paid: true, SettlementID: "st1"},
			},
		}
		if err := store.CreatePayment(ctx, payment); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		got, err := store.GetPayment(ctx, payment.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if !got.DueDate.Equal(payment.DueDate) {
			t.Errorf("dueDate = %v, want %v", got.DueDate, payment.DueDate)
		}
		if len(got.Splits) != 2 {
			t.Fatalf("got %d splits, want 2", len(got.Splits))
		}
		if !got.Splits[1].Paid || got.Splits[1].SettlementID != "st1" {
			t.Errorf("second split = %+v, want paid with settlement st1", got.Splits[1])
		}
		if got.PaidDate != nil {
			t.Errorf("paidDate should be nil, got %v", got.PaidDate)
		}
	})

	t.Run("marking paid persists paid date and payer", func(t *testing.T) {
		payment := &models.Payment{
			SubscriptionID: sub.ID,
			DueDate:        time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC),
			Amount:         19.99,
		}
		if err := store.CreatePayment(ctx, payment); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		paidDate := time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)
		payment.Paid = true
		payment.PaidDate = &paidDate
		payment.PayerID = "p1"
		if err := store.UpdatePayment(ctx, payment); err != nil {
			t.Fatalf("UpdatePayment failed: %v", err)
		}

		got, err := store.GetPayment(ctx, payment.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if !got.Paid || got.PayerID != "p1" {
			t.Errorf("got paid=%v payer=%s, want paid by p1", got.Paid, got.PayerID)
		}
		if got.PaidDate == nil || !got.PaidDate.Equal(paidDate) {
			t.Errorf("paidDate = %v, want %v", got.PaidDate, paidDate)
		}
	})

	t.Run("deleting the subscription orphans its payments", func(t *testing.T) {
		doomed := &models.Subscription{UserID: "user1", Name: "Doomed", Amount: 5}
		if err := store.CreateSubscription(ctx, doomed); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}
		payment := &models.Payment{
			SubscriptionID: doomed.ID,
			DueDate:        time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			Amount:         5,
		}
		if err := store.CreatePayment(ctx, payment); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		if err := store.DeleteSubscription(ctx, doomed.ID); err != nil {
			t.Fatalf("DeleteSubscription failed: %v", err)
		}

		// The payment survives its subscription.
		if _, err := store.GetPayment(ctx, payment.ID); err != nil {
			t.Errorf("orphaned payment should remain, got %v", err)
		}
	})

	t.Run("ListPaymentsBySubscription orders by due date", func(t *testing.T) {
		payments, err := store.ListPaymentsBySubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("ListPaymentsBySubscription failed: %v", err)
		}
		for i := 1; i < len(payments); i++ {
			if payments[i].DueDate.Before(payments[i-1].DueDate) {
				t.Errorf("payments out of order at %d", i)
			}
		}
	})
}

func TestSQLiteStorePeopleAndUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("person CRUD", func(t *testing.T) {
		person := &models.Person{
			UserID: "user1",
			Name:   "Mario Rossi",
			Email:  "mario.rossi@email.com",
			IBAN:   "IT60X0542811101000000123456",
		}
		if err := store.CreatePerson(ctx, person); err != nil {
			t.Fatalf("CreatePerson failed: %v", err)
		}

		person.Phone = "+39 333 1234567"
		if err := store.UpdatePerson(ctx, person); err != nil {
			t.Fatalf("UpdatePerson failed: %v", err)
		}

		got, err := store.GetPerson(ctx, person.ID)
		if err != nil {
			t.Fatalf("GetPerson failed: %v", err)
		}
		if got.Phone != person.Phone || got.IBAN != person.IBAN {
			t.Errorf("got %+v, want updated person", got)
		}

		if err := store.DeletePerson(ctx, person.ID); err != nil {
			t.Fatalf("DeletePerson failed: %v", err)
		}
		if _, err := store.GetPerson(ctx, person.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("users are unique by email", func(t *testing.T) {
		user := models.NewUser("owner@subscriptio.app", "Owner", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		byEmail, err := store.GetUserByEmail(ctx, "owner@subscriptio.app")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID {
			t.Errorf("got %s, want %s", byEmail.ID, user.ID)
		}

		dup := models.NewUser("owner@subscriptio.app", "Dup", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("expected duplicate email to fail")
		}
	})
}

func TestSQLiteStoreSettingsAndNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("settings default until stored", func(t *testing.T) {
		settings, err := store.GetSettings(ctx, "user1")
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if settings.Currency != "EUR" || settings.ForecastMonths != 12 || settings.ExpiringDays != 7 {
			t.Errorf("got %+v, want defaults", settings)
		}

		settings.ForecastMonths = 6
		if err := store.PutSettings(ctx, settings); err != nil {
			t.Fatalf("PutSettings failed: %v", err)
		}
		settings.Currency = "USD"
		if err := store.PutSettings(ctx, settings); err != nil {
			t.Fatalf("PutSettings upsert failed: %v", err)
		}

		got, err := store.GetSettings(ctx, "user1")
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if got.Currency != "USD" || got.ForecastMonths != 6 {
			t.Errorf("got %+v, want stored settings", got)
		}
	})

	t.Run("notifications list newest first and mark read", func(t *testing.T) {
		first := &models.Notification{UserID: "user1", SubscriptionID: "s1", Message: "renews soon", CreatedAt: 100}
		second := &models.Notification{UserID: "user1", SubscriptionID: "s2", Message: "renews tomorrow", CreatedAt: 200}
		for _, n := range []*models.Notification{first, second} {
			if err := store.CreateNotification(ctx, n); err != nil {
				t.Fatalf("CreateNotification failed: %v", err)
			}
		}

		list, err := store.ListNotifications(ctx, "user1")
		if err != nil {
			t.Fatalf("ListNotifications failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != second.ID {
			t.Fatalf("got %+v, want newest first", list)
		}

		if err := store.MarkNotificationRead(ctx, first.ID); err != nil {
			t.Fatalf("MarkNotificationRead failed: %v", err)
		}
		list, _ = store.ListNotifications(ctx, "user1")
		for _, n := range list {
			if n.ID == first.ID && !n.Read {
				t.Error("notification should be read")
			}
		}

		if err := store.DeleteNotificationsForSubscription(ctx, "user1", "s2"); err != nil {
			t.Fatalf("DeleteNotificationsForSubscription failed: %v", err)
		}
		list, _ = store.ListNotifications(ctx, "user1")
		if len(list) != 1 || list[0].ID != first.ID {
			t.Errorf("got %+v, want only the first notification", list)
		}
	})
}
