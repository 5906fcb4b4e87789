package services

import (
	"context"
	"testing"
	"time"

	"vpn-backend/internal/database"
	"vpn-backend/internal/models"
	"vpn-backend/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	invoice   *payment.Invoice
	rate      float64
	createErr error
	getErr    error
	getCalls  int
}

func (f *fakeProcessor) CreateInvoice(ctx context.Context, req payment.InvoiceRequest) (*payment.Invoice, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.invoice, nil
}

func (f *fakeProcessor) GetInvoice(ctx context.Context, id string) (*payment.Invoice, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.invoice == nil || f.invoice.ID != id {
		return nil, nil
	}
	return f.invoice, nil
}

func (f *fakeProcessor) GetRate(ctx context.Context, pair string) (float64, error) {
	if f.getErr != nil {
		return 0, f.getErr
	}
	return f.rate, nil
}

func seedAccount(t *testing.T, username string, ref uint) models.Account {
	t.Helper()
	_, err := SignUp(username, "password123", "", ref)
	require.NoError(t, err)
	var account models.Account
	require.NoError(t, database.DB.Where("username = ?", username).First(&account).Error)
	return account
}

func TestCreateTopUpInvoice(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	referrer := seedAccount(t, "ref", 0)
	payer := seedAccount(t, "payer", referrer.ID)

	now := time.Now().Truncate(time.Second)
	Pay = &fakeProcessor{invoice: &payment.Invoice{
		ID:             "inv-1",
		URL:            "https://pay.example/i/inv-1",
		Status:         "UNCONFIRMED",
		BTCPrice:       0.0005,
		InvoiceTime:    now,
		ExpirationTime: now.Add(15 * time.Minute),
	}}

	url, err := CreateTopUpInvoice(payer, 3, models.PaymentTypeCrypto)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/i/inv-1", url)

	var entry models.Payment
	require.NoError(t, database.DB.Where("invoice_id = ?", "inv-1").First(&entry).Error)
	assert.Equal(t, payer.ID, entry.ClientID)
	assert.Equal(t, referrer.ID, entry.Ref)
	assert.Equal(t, models.EntryTypeTopUp, entry.Type)
	assert.Equal(t, models.StatusUnconfirmed, entry.Status)
	assert.Equal(t, 3, entry.Months)
	assert.Equal(t, float64(15), entry.Price) // 3 months * 5 EUR
	// round(1e8 * 0.0005 * 0.3) = 15000 satoshis
	assert.EqualValues(t, 15000, entry.RewardSatoshis)

	// A retried creation for the same processor invoice does not duplicate
	_, err = CreateTopUpInvoice(payer, 3, models.PaymentTypeCrypto)
	require.NoError(t, err)
	var count int64
	database.DB.Model(&models.Payment{}).Where("invoice_id = ?", "inv-1").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateTopUpInvoiceUpstreamFailure(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	payer := seedAccount(t, "payer", 0)
	Pay = &fakeProcessor{createErr: assert.AnError}

	_, err := CreateTopUpInvoice(payer, 1, models.PaymentTypeCrypto)
	assert.ErrorIs(t, err, ErrUpstreamFailure)

	var count int64
	database.DB.Model(&models.Payment{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestReconcileInvoiceIsIdempotent(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	payer := seedAccount(t, "payer", 0)

	var before models.Subscription
	require.NoError(t, database.DB.Where("client_id = ?", payer.ID).First(&before).Error)

	entry := models.Payment{
		ID:        newEntryID(),
		ClientID:  payer.ID,
		PublicKey: payer.PublicKey,
		Months:    2,
		Type:      models.EntryTypeTopUp,
		Status:    models.StatusUnconfirmed,
		InvoiceID: "inv-7",
	}
	require.NoError(t, database.DB.Create(&entry).Error)

	Pay = &fakeProcessor{invoice: &payment.Invoice{ID: "inv-7", Status: "CONFIRMED"}}

	require.NoError(t, ReconcileInvoice("inv-7"))
	require.NoError(t, ReconcileInvoice("inv-7")) // redelivery

	var updated models.Payment
	require.NoError(t, database.DB.Where("invoice_id = ?", "inv-7").First(&updated).Error)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	// Extended exactly once: 2 months * 30 days
	var after models.Subscription
	require.NoError(t, database.DB.Where("client_id = ?", payer.ID).First(&after).Error)
	assert.WithinDuration(t, before.ExpireAt.AddDate(0, 0, 60), after.ExpireAt, time.Second)
}

func TestReconcileInvoiceNonConfirmedStatusDoesNotExtend(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	payer := seedAccount(t, "payer", 0)

	var before models.Subscription
	require.NoError(t, database.DB.Where("client_id = ?", payer.ID).First(&before).Error)

	entry := models.Payment{
		ID:        newEntryID(),
		ClientID:  payer.ID,
		Months:    1,
		Type:      models.EntryTypeTopUp,
		Status:    models.StatusUnconfirmed,
		InvoiceID: "inv-8",
	}
	require.NoError(t, database.DB.Create(&entry).Error)

	Pay = &fakeProcessor{invoice: &payment.Invoice{ID: "inv-8", Status: "EXPIRED"}}
	require.NoError(t, ReconcileInvoice("inv-8"))

	var updated models.Payment
	require.NoError(t, database.DB.Where("invoice_id = ?", "inv-8").First(&updated).Error)
	assert.Equal(t, models.EntryStatus("EXPIRED"), updated.Status)

	var after models.Subscription
	require.NoError(t, database.DB.Where("client_id = ?", payer.ID).First(&after).Error)
	assert.WithinDuration(t, before.ExpireAt, after.ExpireAt, time.Second)
}

func TestReconcileInvoiceUnknown(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	Pay = &fakeProcessor{}
	assert.ErrorIs(t, ReconcileInvoice("missing"), ErrInvoiceNotFound)

	// Known to the processor but absent from the ledger
	Pay = &fakeProcessor{invoice: &payment.Invoice{ID: "inv-9", Status: "CONFIRMED"}}
	assert.ErrorIs(t, ReconcileInvoice("inv-9"), ErrInvoiceNotFound)
}

func TestGetRateUsesCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	fake := &fakeProcessor{rate: 30000}
	Pay = fake

	rate, err := GetRate()
	require.NoError(t, err)
	assert.Equal(t, float64(30000), rate)

	// Second read is served from redis, not the processor
	fake.rate = 99999
	rate, err = GetRate()
	require.NoError(t, err)
	assert.Equal(t, float64(30000), rate)
}

func TestGetRateRejectsNonPositiveQuote(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	Pay = &fakeProcessor{rate: 0}
	_, err := GetRate()
	assert.ErrorIs(t, err, ErrUpstreamFailure)

	Pay = &fakeProcessor{rate: -1}
	_, err = GetRate()
	assert.ErrorIs(t, err, ErrUpstreamFailure)

	// Nothing was cached for the bad quotes
	Pay = &fakeProcessor{rate: 25000}
	rate, err := GetRate()
	require.NoError(t, err)
	assert.Equal(t, float64(25000), rate)
}
