package service

import (
	"context"
	"testing"
	"time"

	"comanda-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReportRepository is a mock implementation of ReportRepository.
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) RevenueByPaymentMethod(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockReportRepository) ClosedTabs(ctx context.Context, from, to *time.Time) ([]model.Tab, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tab), args.Error(1)
}

func (m *MockReportRepository) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TopProduct), args.Error(1)
}

func TestReportService_Revenue(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	day := time.Date(2024, 6, 15, 14, 30, 0, 0, time.Local)
	from := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 1)

	tests := []struct {
		name              string
		byMethod          map[string]decimal.Decimal
		expectedAll       string
		expectedDinheiro  string
		expectedCartaoPix string
	}{
		{
			name: "Cash and card/pix are bucketed separately",
			byMethod: map[string]decimal.Decimal{
				"dinheiro": decimal.RequireFromString("20.00"),
				"cartao":   decimal.RequireFromString("10.00"),
				"pix":      decimal.RequireFromString("5.00"),
			},
			expectedAll:       "35.00",
			expectedDinheiro:  "20.00",
			expectedCartaoPix: "15.00",
		},
		{
			name: "Unknown methods count as card/pix",
			byMethod: map[string]decimal.Decimal{
				"vale": decimal.RequireFromString("8.50"),
			},
			expectedAll:       "8.50",
			expectedDinheiro:  "0.00",
			expectedCartaoPix: "8.50",
		},
		{
			name:              "No closed tabs yields zero buckets",
			byMethod:          map[string]decimal.Decimal{},
			expectedAll:       "0.00",
			expectedDinheiro:  "0.00",
			expectedCartaoPix: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockReportRepository)
			service := NewReportService(mockRepo, logger)

			mockRepo.On("RevenueByPaymentMethod", ctx, from, to).Return(tt.byMethod, nil)

			report, err := service.Revenue(ctx, day)

			require.NoError(t, err)
			require.NotNil(t, report)
			assert.Equal(t, "2024-06-15", report.Date)
			assert.Equal(t, tt.expectedAll, report.All.StringFixed(2))
			assert.Equal(t, tt.expectedDinheiro, report.Dinheiro.StringFixed(2))
			assert.Equal(t, tt.expectedCartaoPix, report.CartaoPix.StringFixed(2))

			mockRepo.AssertExpectations(t)
		})
	}

	t.Run("Zero day defaults to today", func(t *testing.T) {
		mockRepo := new(MockReportRepository)
		service := NewReportService(mockRepo, logger)

		mockRepo.On("RevenueByPaymentMethod", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(map[string]decimal.Decimal{}, nil)

		report, err := service.Revenue(ctx, time.Time{})

		require.NoError(t, err)
		assert.Equal(t, time.Now().Format("2006-01-02"), report.Date)

		mockRepo.AssertExpectations(t)
	})
}

func TestReportService_ClosedTabs(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("Inverted range is rejected", func(t *testing.T) {
		mockRepo := new(MockReportRepository)
		service := NewReportService(mockRepo, logger)

		from := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, -1)

		tabs, err := service.ClosedTabs(ctx, &from, &to)

		require.Error(t, err)
		assert.Nil(t, tabs)
		var derr *model.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, model.KindValidation, derr.Kind)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Nil repository result becomes empty slice", func(t *testing.T) {
		mockRepo := new(MockReportRepository)
		service := NewReportService(mockRepo, logger)

		mockRepo.On("ClosedTabs", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return([]model.Tab(nil), nil)

		tabs, err := service.ClosedTabs(ctx, nil, nil)

		require.NoError(t, err)
		assert.NotNil(t, tabs)
		assert.Empty(t, tabs)
	})

	t.Run("Tabs pass through", func(t *testing.T) {
		mockRepo := new(MockReportRepository)
		service := NewReportService(mockRepo, logger)

		closedAt := time.Now()
		method := "dinheiro"
		expected := []model.Tab{
			{ID: uuid.New(), TableNumber: 2, Status: model.TabStatusClosed, Total: decimal.RequireFromString("42.00"), ClosedAt: &closedAt, PaymentMethod: &method},
		}
		mockRepo.On("ClosedTabs", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(expected, nil)

		tabs, err := service.ClosedTabs(ctx, nil, nil)

		require.NoError(t, err)
		assert.Equal(t, expected, tabs)
	})
}

func TestReportService_TopProducts(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	tests := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{name: "Zero limit falls back to default", limit: 0, expectedLimit: 5},
		{name: "Negative limit falls back to default", limit: -3, expectedLimit: 5},
		{name: "Explicit limit respected", limit: 10, expectedLimit: 10},
		{name: "Oversized limit is clamped", limit: 500, expectedLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockReportRepository)
			service := NewReportService(mockRepo, logger)

			mockRepo.On("TopProducts", ctx, tt.expectedLimit).Return([]model.TopProduct{}, nil)

			products, err := service.TopProducts(ctx, tt.limit)

			require.NoError(t, err)
			assert.NotNil(t, products)

			mockRepo.AssertExpectations(t)
		})
	}
}
