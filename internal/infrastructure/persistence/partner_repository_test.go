package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bahikhata/backend/internal/domain/ledger"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestVendorRepositoryTenantScoping(t *testing.T) {
	t.Run("lookup always carries the tenant id", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormVendorRepository(gormDB)

		tenantID := uuid.New()
		vendorID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "name", "balance"}).
			AddRow(vendorID, tenantID, 1, "Sharma Wholesale", "0")
		mock.ExpectQuery(`SELECT \* FROM "vendors" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, vendorID, 1).
			WillReturnRows(rows)

		vendor, err := repo.FindByIDForTenant(context.Background(), tenantID, vendorID)

		require.NoError(t, err)
		assert.Equal(t, vendorID, vendor.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vendor of another tenant reads as not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormVendorRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "vendors" WHERE tenant_id`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRetailerRepositoryFindWithOutstanding(t *testing.T) {
	t.Run("filters on the denormalized balance columns", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormRetailerRepository(gormDB)

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "version", "name", "balance", "crate_balance", "udhaar_balance",
		}).
			AddRow(uuid.New(), tenantID, 1, "Big Shop", "900", 0, "900").
			AddRow(uuid.New(), tenantID, 1, "Crate Only", "0", 12, "0")
		mock.ExpectQuery(`udhaar_balance <> 0 OR crate_balance <> 0`).
			WillReturnRows(rows)

		retailers, err := repo.FindWithOutstanding(context.Background(), tenantID)

		require.NoError(t, err)
		assert.Len(t, retailers, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionReaders(t *testing.T) {
	t.Run("open range queries by tenant and counterparty only", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		readers := NewGormReaders(gormDB)

		tenantID := uuid.New()
		vendorID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "vendor_id", "net_amount", "date"}).
			AddRow(uuid.New(), tenantID, vendorID, "1000", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		mock.ExpectQuery(`SELECT \* FROM "purchase_invoices" WHERE tenant_id = \$1 AND vendor_id = \$2`).
			WithArgs(tenantID, vendorID).
			WillReturnRows(rows)

		invoices, err := readers.PurchaseInvoices.ListForVendor(
			context.Background(), tenantID, vendorID, ledger.DateRange{})

		require.NoError(t, err)
		assert.Len(t, invoices, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bounded range adds both date conditions", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		readers := NewGormReaders(gormDB)

		tenantID := uuid.New()
		from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "cash_postings" WHERE tenant_id = \$1 AND date >= \$2 AND date <= \$3`).
			WithArgs(tenantID, from, to).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "amount", "date"}))

		postings, err := readers.CashPostings.ListForTenant(
			context.Background(), tenantID, ledger.DateRange{From: &from, To: &to})

		require.NoError(t, err)
		assert.Empty(t, postings)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("crate transactions can be read tenant-wide", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		readers := NewGormReaders(gormDB)

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "retailer_id", "type", "quantity", "date"}).
			AddRow(uuid.New(), tenantID, uuid.New(), "ISSUE", 10, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)).
			AddRow(uuid.New(), tenantID, uuid.New(), "RETURN", 4, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC))
		mock.ExpectQuery(`SELECT \* FROM "crate_transactions" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(rows)

		crates, err := readers.CrateTransactions.ListForTenant(context.Background(), tenantID)

		require.NoError(t, err)
		assert.Len(t, crates, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
