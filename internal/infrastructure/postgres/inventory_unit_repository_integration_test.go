//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/entity"
	"github.com/jhoicas/pos-checkout/internal/domain/repository"
	"github.com/jhoicas/pos-checkout/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-checkout/pkg/config"
)

const (
	companyA = "11111111-1111-1111-1111-111111111111"
	companyB = "22222222-2222-2222-2222-222222222222"
	product1 = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	branch1  = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

// setupTestDB levanta un contenedor PostgreSQL, crea inventory_items y carga unidades de prueba.
func setupTestDB(t *testing.T) (*postgres.InventoryUnitRepo, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: connStr}, postgres.DefaultPoolSettings())
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		CREATE TABLE inventory_items (
			id            UUID PRIMARY KEY,
			company_id    UUID NOT NULL,
			product_id    UUID NOT NULL,
			variant_id    UUID,
			branch_id     UUID,
			serial_number TEXT,
			imei          TEXT,
			mac_address   TEXT,
			status        TEXT NOT NULL,
			condition     TEXT,
			location      TEXT,
			selling_price DECIMAL(15, 2),
			created_at    TIMESTAMPTZ NOT NULL
		)`)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := []struct {
		id, company, branch, serial, imei, status string
		price                                     any
		age                                       time.Duration
	}{
		{"00000000-0000-0000-0000-000000000001", companyA, branch1, "SN-OLD", "", "available", decimal.NewFromInt(1200000), 3 * time.Hour},
		{"00000000-0000-0000-0000-000000000002", companyA, branch1, "", "356938035643809", "available", nil, time.Hour},
		{"00000000-0000-0000-0000-000000000003", companyA, "", "SN-SOLD", "", "sold", nil, 2 * time.Hour},
		{"00000000-0000-0000-0000-000000000004", companyA, "", "SN-OTHER-BRANCH", "", "available", nil, 0},
		{"00000000-0000-0000-0000-000000000005", companyB, branch1, "SN-B", "", "available", nil, 0},
	}
	for _, r := range rows {
		var branch any
		if r.branch != "" {
			branch = r.branch
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO inventory_items (id, company_id, product_id, branch_id, serial_number, imei, status, condition, location, selling_price, created_at)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, 'new', 'A-1', $8, $9)`,
			r.id, r.company, product1, branch, r.serial, r.imei, r.status, r.price, base.Add(-r.age))
		require.NoError(t, err)
	}

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return postgres.NewInventoryUnitRepository(pool), cleanup
}

func TestListAvailable_FiltraYOrdena(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	units, err := repo.ListAvailable(context.Background(), repository.UnitQuery{
		CompanyID: companyA,
		ProductID: product1,
		Status:    entity.UnitStatusAvailable,
		Limit:     100,
	})
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "00000000-0000-0000-0000-000000000004", units[0].ID)
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", units[1].ID)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", units[2].ID)

	old := units[2]
	assert.Equal(t, "SN-OLD", old.Identifiers.Serial)
	assert.Equal(t, "new", old.Condition)
	assert.Equal(t, "A-1", old.Location)
	assert.Equal(t, branch1, old.BranchID)
	assert.True(t, old.SellingPrice.Equal(decimal.NewFromInt(1200000)))
	assert.True(t, old.IsEligible())

	assert.Equal(t, "356938035643809", units[1].Identifiers.IMEI)
	assert.True(t, units[1].SellingPrice.IsZero())
}

func TestListAvailable_FiltroSucursalYLimite(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	units, err := repo.ListAvailable(ctx, repository.UnitQuery{CompanyID: companyA, ProductID: product1, BranchID: branch1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, units, 2)

	units, err = repo.ListAvailable(ctx, repository.UnitQuery{CompanyID: companyA, ProductID: product1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "00000000-0000-0000-0000-000000000004", units[0].ID)
}

func TestListAvailable_SinEmpresa(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.ListAvailable(context.Background(), repository.UnitQuery{ProductID: product1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
