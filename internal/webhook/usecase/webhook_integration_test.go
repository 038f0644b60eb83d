package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffrun/opsdesk/internal/database"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	ordersRepository "github.com/diffrun/opsdesk/internal/orders/repository"
	outboxRepository "github.com/diffrun/opsdesk/internal/outbox/repository"
	"github.com/diffrun/opsdesk/internal/testutil"
	"github.com/diffrun/opsdesk/internal/webhook/domain"
	"github.com/diffrun/opsdesk/internal/webhook/repository"
)

type integrationDialect struct {
	name  string
	setup func(t *testing.T) *sql.DB
	build func(db *sql.DB) WebhookUseCase
}

func integrationDialects() []integrationDialect {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return []integrationDialect{
		{"postgres", testutil.SetupPostgresDB, func(db *sql.DB) WebhookUseCase {
			return NewWebhookUseCase(database.NewTxManager(db),
				repository.NewPostgreSQLEventRepository(db),
				ordersRepository.NewPostgreSQLOrderRepository(db),
				outboxRepository.NewPostgreSQLOutboxEventRepository(db),
				ist, logger)
		}},
		{"mysql", testutil.SetupMySQLDB, func(db *sql.DB) WebhookUseCase {
			return NewWebhookUseCase(database.NewTxManager(db),
				repository.NewMySQLEventRepository(db),
				ordersRepository.NewMySQLOrderRepository(db),
				outboxRepository.NewMySQLOutboxEventRepository(db),
				ist, logger)
		}},
	}
}

func countPickupEmails(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM outbox_events WHERE event_type = 'email.pickup_shipped'`).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestWebhookUseCase_Integration(t *testing.T) {
	ctx := context.Background()

	for _, d := range integrationDialects() {
		t.Run(d.name, func(t *testing.T) {
			db := d.setup(t)
			defer testutil.TeardownDB(t, db)
			uc := d.build(db)

			t.Run("Success_RedeliveryIsNoop", func(t *testing.T) {
				testutil.CreateTestOrder(t, db, d.name, testutil.OrderFixture{
					OrderID: "2001", Email: "parent@example.com", Paid: true,
				})
				p := pickupPayload()
				p.OrderID = "2001"
				p.AWB = "AWB2001"

				first, err := uc.HandleShiprocket(ctx, p, []byte(`{"awb":"AWB2001"}`))
				require.NoError(t, err)
				assert.Equal(t, domain.OutcomeApplied, first.Outcome)
				assert.True(t, first.PickupClaimed)

				second, err := uc.HandleShiprocket(ctx, p, []byte(`{"awb":"AWB2001"}`))
				require.NoError(t, err)
				assert.Equal(t, domain.OutcomeDuplicate, second.Outcome)
				assert.Equal(t, 1, countPickupEmails(t, db))
			})

			t.Run("Success_ConcurrentDeliveriesClaimOnce", func(t *testing.T) {
				testutil.CreateTestOrder(t, db, d.name, testutil.OrderFixture{
					OrderID: "2002", Email: "other@example.com", Paid: true,
				})
				before := countPickupEmails(t, db)

				const workers = 8
				var (
					wg      sync.WaitGroup
					mu      sync.Mutex
					claimed int
				)
				for i := range workers {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						p := pickupPayload()
						p.OrderID = "2002"
						p.AWB = "AWB2002"
						p.CurrentTimestamp = fmt.Sprintf("23 05 2025 11:%02d:00", i)
						p.Scans = []ordersDomain.Scan{{Date: p.CurrentTimestamp, Activity: "Picked Up"}}

						result, err := uc.HandleShiprocket(ctx, p, nil)
						if !assert.NoError(t, err) {
							return
						}
						if result.PickupClaimed {
							mu.Lock()
							claimed++
							mu.Unlock()
						}
					}(i)
				}
				wg.Wait()

				assert.Equal(t, 1, claimed)
				assert.Equal(t, before+1, countPickupEmails(t, db))
			})

			t.Run("Success_UnknownOrderNotRetried", func(t *testing.T) {
				p := pickupPayload()
				p.OrderID = "missing"
				p.AWB = "NOPE"

				result, err := uc.HandleShiprocket(ctx, p, nil)
				require.NoError(t, err)
				assert.Equal(t, domain.OutcomeUnmatched, result.Outcome)

				result, err = uc.HandleShiprocket(ctx, p, nil)
				require.NoError(t, err)
				assert.Equal(t, domain.OutcomeDuplicate, result.Outcome)
			})
		})
	}
}
