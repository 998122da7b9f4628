package integration

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"comanda-pos/internal/model"
	"comanda-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestTab(t *testing.T, tabRepo repository.TabRepository, tableNumber int) *model.Tab {
	t.Helper()

	tab := &model.Tab{
		ID:          uuid.New(),
		TableNumber: tableNumber,
		Status:      model.TabStatusOpen,
		OpenedAt:    time.Now(),
		Total:       decimal.Zero,
	}
	require.NoError(t, tabRepo.OpenTab(context.Background(), tab))
	return tab
}

func addTestItem(t *testing.T, tabRepo repository.TabRepository, tabID, productID uuid.UUID, quantity int, price string) *model.LineItem {
	t.Helper()

	item := &model.LineItem{
		ID:        uuid.New(),
		TabID:     tabID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(price),
	}
	require.NoError(t, tabRepo.AddItem(context.Background(), item))
	return item
}

func TestTabRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	tabRepo := repository.NewTabRepository(testDB.Pool, logger)
	catalogRepo := repository.NewCatalogRepository(testDB.Pool, logger)

	t.Run("Open and fetch a tab", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 5)

		got, err := tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, tab.ID, got.ID)
		assert.Equal(t, 5, got.TableNumber)
		assert.Equal(t, model.TabStatusOpen, got.Status)
		assert.True(t, got.Total.IsZero())
		assert.Equal(t, 0, got.ItemCount)
		assert.Nil(t, got.ClosedAt)
		assert.Nil(t, got.PaymentMethod)
	})

	t.Run("Missing tab is nil without error", func(t *testing.T) {
		got, err := tabRepo.GetTab(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Second open tab for the same table conflicts", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		openTestTab(t, tabRepo, 7)

		second := &model.Tab{
			ID:          uuid.New(),
			TableNumber: 7,
			Status:      model.TabStatusOpen,
			OpenedAt:    time.Now(),
			Total:       decimal.Zero,
		}
		err := tabRepo.OpenTab(ctx, second)
		assert.ErrorIs(t, err, model.ErrTableOccupied)
	})

	t.Run("Concurrent opens for the same table produce exactly one tab", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		const attempts = 8
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tab := &model.Tab{
					ID:          uuid.New(),
					TableNumber: 12,
					Status:      model.TabStatusOpen,
					OpenedAt:    time.Now(),
					Total:       decimal.Zero,
				}
				errs[i] = tabRepo.OpenTab(ctx, tab)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, model.ErrTableOccupied)
			}
		}
		assert.Equal(t, 1, succeeded)

		var count int
		err := testDB.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM tabs WHERE table_number = 12 AND status = 'open'").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Adding and removing items keeps the aggregate consistent", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 3)

		item := addTestItem(t, tabRepo, tab.ID, products["cafe com leite"], 3, "10.00")

		got, err := tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		assert.Equal(t, "30.00", got.Total.StringFixed(2))
		assert.Equal(t, 3, got.ItemCount)

		addTestItem(t, tabRepo, tab.ID, products["agua mineral"], 2, "3.00")

		got, err = tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		assert.Equal(t, "36.00", got.Total.StringFixed(2))
		assert.Equal(t, 5, got.ItemCount)

		require.NoError(t, tabRepo.RemoveItem(ctx, tab.ID, item.ID))

		got, err = tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		assert.Equal(t, "6.00", got.Total.StringFixed(2))
		assert.Equal(t, 2, got.ItemCount)

		items, err := tabRepo.GetTabItems(ctx, tab.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, products["agua mineral"], items[0].ProductID)
		assert.Equal(t, "agua mineral", items[0].ProductName)
		assert.Equal(t, "6.00", items[0].Subtotal.StringFixed(2))
	})

	t.Run("Removing the only item brings the tab back to zero", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 4)
		item := addTestItem(t, tabRepo, tab.ID, products["agua mineral"], 3, "10.00")

		require.NoError(t, tabRepo.RemoveItem(ctx, tab.ID, item.ID))

		got, err := tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		assert.Equal(t, "0.00", got.Total.StringFixed(2))
		assert.Equal(t, 0, got.ItemCount)
	})

	t.Run("Aggregate matches recomputed line items over a random mutation sequence", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 20)

		productIDs := []uuid.UUID{
			products["agua mineral"],
			products["cafe com leite"],
			products["porcao de fritas"],
		}
		prices := []string{"0.05", "3.00", "7.50", "10.00", "25.90"}

		// After every mutation the cached aggregate must equal the sums
		// recomputed from the line items themselves.
		checkAggregate := func(step int) {
			t.Helper()

			got, err := tabRepo.GetTab(ctx, tab.ID)
			require.NoError(t, err)

			var sum decimal.Decimal
			var count int
			err = testDB.Pool.QueryRow(ctx, `
				SELECT COALESCE(SUM(quantity * unit_price), 0), COALESCE(SUM(quantity), 0)
				FROM line_items
				WHERE tab_id = $1
			`, tab.ID).Scan(&sum, &count)
			require.NoError(t, err)

			assert.True(t, got.Total.Equal(sum),
				"step %d: cached total %s != recomputed %s", step, got.Total, sum)
			assert.Equal(t, count, got.ItemCount,
				"step %d: cached item count diverged", step)
		}

		rng := rand.New(rand.NewSource(20240615))
		var live []uuid.UUID

		for step := 0; step < 60; step++ {
			if len(live) > 0 && rng.Intn(3) == 0 {
				idx := rng.Intn(len(live))
				require.NoError(t, tabRepo.RemoveItem(ctx, tab.ID, live[idx]))
				live = append(live[:idx], live[idx+1:]...)
			} else {
				item := addTestItem(t, tabRepo, tab.ID,
					productIDs[rng.Intn(len(productIDs))],
					1+rng.Intn(4),
					prices[rng.Intn(len(prices))])
				live = append(live, item.ID)
			}
			checkAggregate(step)
		}

		for len(live) > 0 {
			require.NoError(t, tabRepo.RemoveItem(ctx, tab.ID, live[len(live)-1]))
			live = live[:len(live)-1]
		}

		got, err := tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		assert.Equal(t, "0.00", got.Total.StringFixed(2))
		assert.Equal(t, 0, got.ItemCount)
	})

	t.Run("Adding to an unknown tab is not found", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		item := &model.LineItem{
			ID:        uuid.New(),
			TabID:     uuid.New(),
			ProductID: products["agua mineral"],
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("3.00"),
		}
		err := tabRepo.AddItem(ctx, item)
		assert.ErrorIs(t, err, model.ErrTabNotFound)
	})

	t.Run("Adding an unknown product is not found", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 2)

		item := &model.LineItem{
			ID:        uuid.New(),
			TabID:     tab.ID,
			ProductID: uuid.New(),
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("3.00"),
		}
		err := tabRepo.AddItem(ctx, item)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Adding to a closed tab conflicts", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 6)
		require.NoError(t, tabRepo.CloseTab(ctx, tab.ID, "dinheiro", time.Now()))

		item := &model.LineItem{
			ID:        uuid.New(),
			TabID:     tab.ID,
			ProductID: products["agua mineral"],
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("3.00"),
		}
		err := tabRepo.AddItem(ctx, item)
		assert.ErrorIs(t, err, model.ErrTabClosed)
	})

	t.Run("Removing an item scoped to another tab is not found", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		first := openTestTab(t, tabRepo, 8)
		second := openTestTab(t, tabRepo, 9)
		item := addTestItem(t, tabRepo, first.ID, products["agua mineral"], 1, "3.00")

		err := tabRepo.RemoveItem(ctx, second.ID, item.ID)
		assert.ErrorIs(t, err, model.ErrLineItemNotFound)

		// The item is still on the first tab.
		got, err := tabRepo.GetTab(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.ItemCount)
	})

	t.Run("Close records payment method and timestamp", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 10)
		require.NoError(t, tabRepo.CloseTab(ctx, tab.ID, "dinheiro", time.Now()))

		got, err := tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		assert.Equal(t, model.TabStatusClosed, got.Status)
		require.NotNil(t, got.PaymentMethod)
		assert.Equal(t, "dinheiro", *got.PaymentMethod)
		assert.NotNil(t, got.ClosedAt)
	})

	t.Run("Closing twice conflicts", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 11)
		require.NoError(t, tabRepo.CloseTab(ctx, tab.ID, "pix", time.Now()))

		err := tabRepo.CloseTab(ctx, tab.ID, "pix", time.Now())
		assert.ErrorIs(t, err, model.ErrTabClosed)
	})

	t.Run("Closing a missing tab is not found", func(t *testing.T) {
		err := tabRepo.CloseTab(ctx, uuid.New(), "pix", time.Now())
		assert.ErrorIs(t, err, model.ErrTabNotFound)
	})

	t.Run("Reopen clears payment method and closed timestamp", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 13)
		require.NoError(t, tabRepo.CloseTab(ctx, tab.ID, "cartao", time.Now()))
		require.NoError(t, tabRepo.ReopenTab(ctx, tab.ID))

		got, err := tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		assert.Equal(t, model.TabStatusOpen, got.Status)
		assert.Nil(t, got.PaymentMethod)
		assert.Nil(t, got.ClosedAt)
	})

	t.Run("Reopening an open tab is a no-op", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 14)
		assert.NoError(t, tabRepo.ReopenTab(ctx, tab.ID))
	})

	t.Run("Reopen conflicts while another open tab holds the table", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		closed := openTestTab(t, tabRepo, 15)
		require.NoError(t, tabRepo.CloseTab(ctx, closed.ID, "pix", time.Now()))
		openTestTab(t, tabRepo, 15)

		err := tabRepo.ReopenTab(ctx, closed.ID)
		assert.ErrorIs(t, err, model.ErrTableOccupied)
	})

	t.Run("Deleting a tab cascades to its line items", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 16)
		addTestItem(t, tabRepo, tab.ID, products["agua mineral"], 2, "3.00")

		require.NoError(t, tabRepo.DeleteTab(ctx, tab.ID))

		got, err := tabRepo.GetTab(ctx, tab.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		var count int
		err = testDB.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM line_items WHERE tab_id = $1", tab.ID).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Open tabs list is ordered by table number", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		openTestTab(t, tabRepo, 9)
		openTestTab(t, tabRepo, 2)
		closed := openTestTab(t, tabRepo, 5)
		require.NoError(t, tabRepo.CloseTab(ctx, closed.ID, "pix", time.Now()))

		tabs, err := tabRepo.ListOpenTabs(ctx)
		require.NoError(t, err)
		require.Len(t, tabs, 2)
		assert.Equal(t, 2, tabs[0].TableNumber)
		assert.Equal(t, 9, tabs[1].TableNumber)
	})

	t.Run("Products referenced by line items cannot be deleted", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 17)
		addTestItem(t, tabRepo, tab.ID, products["agua mineral"], 1, "3.00")

		err := catalogRepo.DeleteProduct(ctx, products["agua mineral"])
		assert.ErrorIs(t, err, model.ErrProductInUse)
	})
}

func TestCatalogRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	catalogRepo := repository.NewCatalogRepository(testDB.Pool, logger)

	t.Run("Duplicate category names conflict", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		first := &model.Category{ID: uuid.New(), Name: "bebidas", CreatedAt: time.Now()}
		require.NoError(t, catalogRepo.CreateCategory(ctx, first))

		second := &model.Category{ID: uuid.New(), Name: "bebidas", CreatedAt: time.Now()}
		err := catalogRepo.CreateCategory(ctx, second)
		assert.ErrorIs(t, err, model.ErrCategoryExists)
	})

	t.Run("Categories with products cannot be deleted", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		category := &model.Category{ID: uuid.New(), Name: "porcoes", CreatedAt: time.Now()}
		require.NoError(t, catalogRepo.CreateCategory(ctx, category))

		product := &model.Product{
			ID:         uuid.New(),
			Name:       "porcao de fritas",
			Price:      decimal.RequireFromString("25.90"),
			CategoryID: &category.ID,
			CreatedAt:  time.Now(),
		}
		require.NoError(t, catalogRepo.CreateProduct(ctx, product))

		err := catalogRepo.DeleteCategory(ctx, category.ID)
		assert.ErrorIs(t, err, model.ErrCategoryInUse)

		// After the product is gone the category can be removed.
		require.NoError(t, catalogRepo.DeleteProduct(ctx, product.ID))
		assert.NoError(t, catalogRepo.DeleteCategory(ctx, category.ID))
	})

	t.Run("Products with an unknown category are rejected", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		missing := uuid.New()
		product := &model.Product{
			ID:         uuid.New(),
			Name:       "agua",
			Price:      decimal.RequireFromString("3.00"),
			CategoryID: &missing,
			CreatedAt:  time.Now(),
		}
		err := catalogRepo.CreateProduct(ctx, product)
		assert.ErrorIs(t, err, model.ErrCategoryNotFound)
	})

	t.Run("Unit price lookup", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		price, err := catalogRepo.GetUnitPrice(ctx, products["cafe com leite"])
		require.NoError(t, err)
		assert.Equal(t, "7.50", price.StringFixed(2))

		_, err = catalogRepo.GetUnitPrice(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestReportRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	tabRepo := repository.NewTabRepository(testDB.Pool, logger)
	reportRepo := repository.NewReportRepository(testDB.Pool, logger)

	t.Run("Revenue sums closed tabs per payment method", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		cash := openTestTab(t, tabRepo, 1)
		addTestItem(t, tabRepo, cash.ID, products["cafe com leite"], 2, "10.00")
		require.NoError(t, tabRepo.CloseTab(ctx, cash.ID, "dinheiro", time.Now()))

		card := openTestTab(t, tabRepo, 2)
		addTestItem(t, tabRepo, card.ID, products["agua mineral"], 5, "3.00")
		require.NoError(t, tabRepo.CloseTab(ctx, card.ID, "cartao", time.Now()))

		stillOpen := openTestTab(t, tabRepo, 3)
		addTestItem(t, tabRepo, stillOpen.ID, products["agua mineral"], 1, "3.00")

		from := time.Now().AddDate(0, 0, -1)
		to := time.Now().AddDate(0, 0, 1)
		byMethod, err := reportRepo.RevenueByPaymentMethod(ctx, from, to)
		require.NoError(t, err)

		require.Contains(t, byMethod, "dinheiro")
		require.Contains(t, byMethod, "cartao")
		assert.Equal(t, "20.00", byMethod["dinheiro"].StringFixed(2))
		assert.Equal(t, "15.00", byMethod["cartao"].StringFixed(2))
	})

	t.Run("Closed tabs are listed newest first, open tabs excluded", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		first := openTestTab(t, tabRepo, 1)
		require.NoError(t, tabRepo.CloseTab(ctx, first.ID, "pix", time.Now().Add(-time.Hour)))

		second := openTestTab(t, tabRepo, 1)
		require.NoError(t, tabRepo.CloseTab(ctx, second.ID, "dinheiro", time.Now()))

		openTestTab(t, tabRepo, 2)

		tabs, err := reportRepo.ClosedTabs(ctx, nil, nil)
		require.NoError(t, err)
		require.Len(t, tabs, 2)
		assert.Equal(t, second.ID, tabs[0].ID)
		assert.Equal(t, first.ID, tabs[1].ID)
	})

	t.Run("Closed tabs range filter", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		old := openTestTab(t, tabRepo, 1)
		require.NoError(t, tabRepo.CloseTab(ctx, old.ID, "pix", time.Now().AddDate(0, 0, -10)))

		recent := openTestTab(t, tabRepo, 1)
		require.NoError(t, tabRepo.CloseTab(ctx, recent.ID, "pix", time.Now()))

		from := time.Now().AddDate(0, 0, -1)
		tabs, err := reportRepo.ClosedTabs(ctx, &from, nil)
		require.NoError(t, err)
		require.Len(t, tabs, 1)
		assert.Equal(t, recent.ID, tabs[0].ID)
	})

	t.Run("Top products rank by summed quantity", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedCatalog(t, testDB.Pool)

		tab := openTestTab(t, tabRepo, 1)
		addTestItem(t, tabRepo, tab.ID, products["agua mineral"], 7, "3.00")
		addTestItem(t, tabRepo, tab.ID, products["cafe com leite"], 2, "7.50")
		addTestItem(t, tabRepo, tab.ID, products["cafe com leite"], 3, "7.50")

		top, err := reportRepo.TopProducts(ctx, 5)
		require.NoError(t, err)
		require.Len(t, top, 2)

		assert.Equal(t, "agua mineral", top[0].ProductName)
		assert.Equal(t, 7, top[0].TotalQuantity)
		assert.Equal(t, "bebidas", top[0].CategoryName)

		assert.Equal(t, "cafe com leite", top[1].ProductName)
		assert.Equal(t, 5, top[1].TotalQuantity)
	})
}
