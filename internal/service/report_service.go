package service

import (
	"context"
	"fmt"
	"time"

	"comanda-pos/internal/model"
	"comanda-pos/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultTopProducts = 5
	maxTopProducts     = 50
)

// reportService implements ReportService.
type reportService struct {
	reportRepo repository.ReportRepository
	logger     zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(reportRepo repository.ReportRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		logger:     logger.With().Str("service", "report").Logger(),
	}
}

// Revenue reports a day's revenue split by payment method. Cash (dinheiro)
// gets its own bucket; every other method is reported under cartao/pix.
// Buckets default to 0.00 when no closed tabs match the day.
func (s *reportService) Revenue(ctx context.Context, day time.Time) (*model.RevenueReport, error) {
	if day.IsZero() {
		day = time.Now()
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	byMethod, err := s.reportRepo.RevenueByPaymentMethod(ctx, from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get revenue")
		return nil, fmt.Errorf("failed to get revenue: %w", err)
	}

	report := &model.RevenueReport{
		Date:      from.Format("2006-01-02"),
		All:       decimal.Zero,
		Dinheiro:  decimal.Zero,
		CartaoPix: decimal.Zero,
	}

	for method, sum := range byMethod {
		report.All = report.All.Add(sum)
		if method == model.PaymentMethodDinheiro {
			report.Dinheiro = report.Dinheiro.Add(sum)
		} else {
			report.CartaoPix = report.CartaoPix.Add(sum)
		}
	}

	s.logger.Debug().
		Str("date", report.Date).
		Str("all", report.All.StringFixed(2)).
		Msg("revenue report built")

	return report, nil
}

// ClosedTabs lists closed tabs, optionally filtered by closed-at range.
func (s *reportService) ClosedTabs(ctx context.Context, from, to *time.Time) ([]model.Tab, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, model.NewDomainError(model.KindValidation, model.ErrCodeInvalidFormat, "Range end must not precede range start")
	}

	tabs, err := s.reportRepo.ClosedTabs(ctx, from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list closed tabs")
		return nil, fmt.Errorf("failed to list closed tabs: %w", err)
	}

	if tabs == nil {
		tabs = []model.Tab{}
	}

	return tabs, nil
}

// TopProducts lists the best-selling products by summed quantity.
func (s *reportService) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	if limit <= 0 {
		limit = defaultTopProducts
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}

	products, err := s.reportRepo.TopProducts(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to get top products")
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}

	if products == nil {
		products = []model.TopProduct{}
	}

	return products, nil
}
