package usecase

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/reports/domain"
)

// ErrInvalidPrinter indicates a printer filter outside the production printers.
var ErrInvalidPrinter = errors.Wrap(errors.ErrInvalidInput, "invalid printer")

// reportsUseCase implements ReportsUseCase.
type reportsUseCase struct {
	repo     ReportRepository
	location *time.Location
	now      func() time.Time
}

// NewReportsUseCase creates a new ReportsUseCase bucketing in location.
func NewReportsUseCase(repo ReportRepository, location *time.Location) ReportsUseCase {
	return &reportsUseCase{
		repo:     repo,
		location: location,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// series loads both windows concurrently and buckets them with value.
func series[T int | float64](
	ctx context.Context,
	r *reportsUseCase,
	q domain.RangeQuery,
	paidOnly bool,
	value func(domain.Fact) T,
) (*domain.Series[T], error) {
	periods, err := q.Resolve(r.now(), r.location)
	if err != nil {
		return nil, err
	}
	locale := domain.ParseLocale(q.Locale)

	var current, previous []domain.Fact
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = r.repo.ListFacts(gctx, domain.FactQuery{Window: periods.Current, Locale: &locale, PaidOnly: paidOnly})
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = r.repo.ListFacts(gctx, domain.FactQuery{Window: periods.Previous, Locale: &locale, PaidOnly: paidOnly})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.Series[T]{
		Labels:         domain.Labels(periods.Current, periods.Granularity, r.location),
		PreviousLabels: domain.Labels(periods.Previous, periods.Granularity, r.location),
		Current:        domain.Bucket(current, periods.Current, periods.Granularity, r.location, value),
		Previous:       domain.Bucket(previous, periods.Previous, periods.Granularity, r.location, value),
		Granularity:    periods.Granularity,
	}, nil
}

// Orders counts eligible orders per bucket.
func (r *reportsUseCase) Orders(ctx context.Context, q domain.RangeQuery) (*domain.Series[int], error) {
	s, err := series(ctx, r, q, false, func(domain.Fact) int { return 1 })
	if err != nil {
		return nil, err
	}
	s.Exclusions = domain.ExcludedDiscountCodes
	return s, nil
}

// Revenue sums total price per bucket over every paid order. Discount codes
// are not excluded, so the series carries no exclusions; amounts are summed
// across currencies.
func (r *reportsUseCase) Revenue(ctx context.Context, q domain.RangeQuery) (*domain.Series[float64], error) {
	s, err := series(ctx, r, q, true, func(f domain.Fact) float64 { return f.TotalPrice })
	if err != nil {
		return nil, err
	}
	s.CurrencyHint = domain.CurrencyHintMixed
	return s, nil
}

// ShipStatus is always day-level; a one-day range reports the last week.
func (r *reportsUseCase) ShipStatus(
	ctx context.Context,
	q domain.RangeQuery,
	printer string,
) (*domain.ShipStatusReport, error) {
	printers, err := printerFilter(printer)
	if err != nil {
		return nil, err
	}
	if q.Range == domain.Range1Day {
		q.Range = domain.Range1Week
	}
	periods, err := q.Resolve(r.now(), r.location)
	if err != nil {
		return nil, err
	}

	locale := domain.ParseLocale(q.Locale)
	facts, err := r.repo.ListFacts(ctx, domain.FactQuery{
		Window:   periods.Current,
		Locale:   &locale,
		Printers: printers,
	})
	if err != nil {
		return nil, err
	}

	report := domain.ShipStatus(facts, periods.Current, r.location)
	return &report, nil
}

// productionFacts loads the non-cancelled production orders processed between
// the dates.
func (r *reportsUseCase) productionFacts(ctx context.Context, startDate, endDate string) ([]domain.Fact, error) {
	periods, err := domain.CustomPeriods(startDate, endDate, r.location)
	if err != nil {
		return nil, err
	}
	return r.productionFactsIn(ctx, periods.Current)
}

func (r *reportsUseCase) productionFactsIn(ctx context.Context, w domain.Window) ([]domain.Fact, error) {
	return r.repo.ListFacts(ctx, domain.FactQuery{
		Window:           w,
		Printers:         domain.ProductionPrinters,
		ExcludeCancelled: true,
	})
}

// SLASummary classifies the production orders processed between the dates.
func (r *reportsUseCase) SLASummary(ctx context.Context, startDate, endDate string) (*domain.SLASummary, error) {
	facts, err := r.productionFacts(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	summary := domain.Summarize(facts, r.now(), r.location)
	return &summary, nil
}

// ProductionKPIs covers every non-cancelled production order.
func (r *reportsUseCase) ProductionKPIs(ctx context.Context) (map[string]domain.PrinterKPI, error) {
	facts, err := r.repo.ListFacts(ctx, domain.FactQuery{
		AllTime:          true,
		Printers:         domain.ProductionPrinters,
		ExcludeCancelled: true,
	})
	if err != nil {
		return nil, err
	}
	return domain.ProductionKPIs(facts), nil
}

// ProductionGraph splits the production orders processed between the dates.
func (r *reportsUseCase) ProductionGraph(
	ctx context.Context,
	startDate, endDate string,
) (*domain.ProductionGraph, error) {
	facts, err := r.productionFacts(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	graph := domain.NewProductionGraph(facts, startDate, endDate)
	return &graph, nil
}

// SLACohorts reports the delivered share per processing day.
func (r *reportsUseCase) SLACohorts(ctx context.Context, startDate, endDate string) ([]domain.CohortDay, error) {
	facts, err := r.productionFacts(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return domain.SLACohorts(facts, r.location), nil
}

// CohortOrders lists one processing day's orders. A day outside the range
// has no orders.
func (r *reportsUseCase) CohortOrders(
	ctx context.Context,
	startDate, endDate, cohortDate string,
) ([]domain.CohortOrder, error) {
	facts, err := r.productionFacts(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return domain.CohortOrders(facts, cohortDate, r.location), nil
}

// DeliveryLatency spreads each processing day's orders over delivery latency.
func (r *reportsUseCase) DeliveryLatency(ctx context.Context, startDate, endDate string) ([]domain.LatencyRow, error) {
	facts, err := r.productionFacts(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return domain.DeliveryLatency(facts, r.location), nil
}

// WeeklySLA loads every selected week in one query and splits it in Go.
func (r *reportsUseCase) WeeklySLA(ctx context.Context, q domain.WeeklyQuery) (*domain.WeeklySLAReport, error) {
	now := r.now()
	weeks, mode, err := q.Resolve(now, r.location)
	if err != nil {
		return nil, err
	}

	facts, err := r.productionFactsIn(ctx, domain.Window{
		Start: weeks[0].Window.Start,
		End:   weeks[len(weeks)-1].Window.End,
	})
	if err != nil {
		return nil, err
	}

	timeline, rows := domain.WeeklySLA(facts, weeks, r.location)
	report := &domain.WeeklySLAReport{
		Timeline: timeline,
		Weeks:    rows,
		Meta: domain.WeeklyMeta{
			Mode:        mode,
			WeeksShown:  len(rows),
			GeneratedAt: now.In(r.location),
		},
	}
	if mode == domain.WeeklyModeRolling {
		excluded := q.ExcludeWeeks
		report.Meta.ExcludedRecentWeeks = &excluded
	}
	return report, nil
}

// PreviewVsOrders counts preview jobs by creation and paid orders the way the
// revenue series dates them, for both windows.
func (r *reportsUseCase) PreviewVsOrders(ctx context.Context, q domain.RangeQuery) (*domain.Conversion, error) {
	periods, err := q.Resolve(r.now(), r.location)
	if err != nil {
		return nil, err
	}
	locale := domain.ParseLocale(q.Locale)

	var (
		jobs   [2][]time.Time
		orders [2][]domain.Fact
	)
	windows := [2]domain.Window{periods.Current, periods.Previous}
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		g.Go(func() error {
			var err error
			jobs[i], err = r.repo.ListJobCreations(gctx, w, &locale)
			return err
		})
		g.Go(func() error {
			var err error
			orders[i], err = r.repo.ListFacts(gctx, domain.FactQuery{Window: w, Locale: &locale, PaidOnly: true})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	count := func(domain.Fact) int { return 1 }
	gran := periods.Granularity
	c := &domain.Conversion{
		Labels:         domain.Labels(periods.Current, gran, r.location),
		PreviousLabels: domain.Labels(periods.Previous, gran, r.location),
		CurrentJobs:    domain.CountTimes(jobs[0], periods.Current, gran, r.location),
		PreviousJobs:   domain.CountTimes(jobs[1], periods.Previous, gran, r.location),
		CurrentOrders:  domain.Bucket(orders[0], periods.Current, gran, r.location, count),
		PreviousOrders: domain.Bucket(orders[1], periods.Previous, gran, r.location, count),
		Granularity:    gran,
	}
	c.ConversionCurrent = domain.ConversionRates(c.CurrentOrders, c.CurrentJobs)
	c.ConversionPrevious = domain.ConversionRates(c.PreviousOrders, c.PreviousJobs)
	return c, nil
}

// OrderStatus is day-level like ShipStatus, but "all" also covers orders not
// yet assigned a printer.
func (r *reportsUseCase) OrderStatus(
	ctx context.Context,
	q domain.RangeQuery,
	printer string,
) (*domain.OrderStatusReport, error) {
	printers, err := printerFilter(printer)
	if err != nil {
		return nil, err
	}
	label := strings.ToLower(strings.TrimSpace(printer))
	if label == "" || label == "all" {
		label = "all"
		printers = nil
	}
	if q.Range == domain.Range1Day {
		q.Range = domain.Range1Week
	}
	periods, err := q.Resolve(r.now(), r.location)
	if err != nil {
		return nil, err
	}

	locale := domain.ParseLocale(q.Locale)
	facts, err := r.repo.ListFacts(ctx, domain.FactQuery{
		Window:   periods.Current,
		Locale:   &locale,
		Printers: printers,
	})
	if err != nil {
		return nil, err
	}

	report := domain.OrderStatus(facts, periods.Current, r.location, label)
	return &report, nil
}

func printerFilter(printer string) ([]string, error) {
	printer = strings.ToLower(strings.TrimSpace(printer))
	if printer == "" || printer == "all" {
		return domain.ProductionPrinters, nil
	}
	for _, p := range domain.ProductionPrinters {
		if strings.EqualFold(p, printer) {
			return []string{p}, nil
		}
	}
	return nil, errors.Wrapf(ErrInvalidPrinter, "printer %q", printer)
}
