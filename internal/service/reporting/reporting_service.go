package reporting

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/session"
)

const dateLayout = models.DateLayout

// WeatherClient fetches the current conditions at the farm.
type WeatherClient interface {
	CurrentWeather(ctx context.Context) (*models.CurrentWeather, error)
}

// ProfileClient fetches a farmer with the herd.
type ProfileClient interface {
	Farmer(ctx context.Context, id int) (*models.FarmerProfile, error)
}

// Collection is an owner-scoped record list that can refresh itself.
type Collection[T any] interface {
	Load(ctx context.Context) error
	Owned() []T
	Total() float64
}

// Service builds the dashboard figures and the weekly summary text.
type Service struct {
	store       session.Store
	weather     WeatherClient
	profiles    ProfileClient
	sales       Collection[models.SaleRecord]
	productions Collection[models.ProductionRecord]
	logger      *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(
	store session.Store,
	weather WeatherClient,
	profiles ProfileClient,
	sales Collection[models.SaleRecord],
	productions Collection[models.ProductionRecord],
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		weather:     weather,
		profiles:    profiles,
		sales:       sales,
		productions: productions,
		logger:      logger,
	}
}

// Summary loads sales, production, herd and weather concurrently and aggregates them.
//
// Weather and profile failures degrade the summary; record load failures abort it.
func (s *Service) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	current, err := s.store.Get()
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if current == nil {
		return nil, apperrors.ErrNoSession
	}

	summary := &models.DashboardSummary{
		FarmerID:   current.UserID(),
		FarmerName: current.DisplayName(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.sales.Load(gctx) })
	g.Go(func() error { return s.productions.Load(gctx) })
	g.Go(func() error {
		weather, err := s.weather.CurrentWeather(gctx)
		if err != nil {
			s.logger.Warn("weather lookup failed", zap.Error(err))
			summary.WeatherError = apperrors.Message(err)
			return nil
		}
		summary.Weather = weather
		summary.WeatherLabel = weather.Condition()
		return nil
	})
	g.Go(func() error {
		profile, err := s.profiles.Farmer(gctx, current.UserID())
		if err != nil {
			s.logger.Warn("farmer profile lookup failed", zap.Int("farmer_id", current.UserID()), zap.Error(err))
			return nil
		}
		summary.TotalAnimals = len(profile.Animals)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	sales := s.sales.Owned()
	productions := s.productions.Owned()

	// Revenue is shown as a whole number.
	summary.TotalSales = int(s.sales.Total())
	summary.SalesSeries = series(sales,
		func(r models.SaleRecord) string { return r.SaleDate },
		func(r models.SaleRecord) float64 { return r.Amount })
	summary.TotalProduction = s.productions.Total()
	summary.ProductionSeries = series(productions,
		func(r models.ProductionRecord) string { return r.ProductionDate },
		func(r models.ProductionRecord) float64 { return r.Quantity })

	return summary, nil
}

// WeeklyReport summarizes the seven days ending at end as a short text message.
func (s *Service) WeeklyReport(ctx context.Context, end time.Time) (string, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return "", err
	}

	start := end.AddDate(0, 0, -6)
	var revenue float64
	var salesCount int
	for _, sale := range s.sales.Owned() {
		if inPeriod(sale.SaleDate, start, end) {
			revenue += sale.Amount
			salesCount++
		}
	}

	var produced float64
	var productionCount int
	for _, p := range s.productions.Owned() {
		if inPeriod(p.ProductionDate, start, end) {
			produced += p.Quantity
			productionCount++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly farm summary for %s (%s - %s)\n", summary.FarmerName, start.Format(dateLayout), end.Format(dateLayout))
	if salesCount == 0 {
		b.WriteString("Sales: no records this week.\n")
	} else {
		fmt.Fprintf(&b, "Sales: %d across %d records.\n", int(revenue), salesCount)
	}
	if productionCount == 0 {
		b.WriteString("Production: no records this week.\n")
	} else {
		fmt.Fprintf(&b, "Production: %.2f across %d records.\n", produced, productionCount)
	}
	fmt.Fprintf(&b, "Animals: %d. All-time revenue: %d.", summary.TotalAnimals, summary.TotalSales)
	if summary.Weather != nil {
		fmt.Fprintf(&b, "\nWeather: %s, %.1f°C.", summary.WeatherLabel, summary.Weather.Temperature)
	}

	return b.String(), nil
}

// series sums values per calendar day, ordered by date.
func series[T any](items []T, date func(T) string, value func(T) float64) []models.SeriesPoint {
	byDay := make(map[string]float64)
	for _, item := range items {
		day, err := parseDate(date(item))
		if err != nil {
			continue
		}
		byDay[day.Format(dateLayout)] += value(item)
	}

	points := make([]models.SeriesPoint, 0, len(byDay))
	for day, total := range byDay {
		points = append(points, models.SeriesPoint{Date: day, Value: total})
	}
	slices.SortFunc(points, func(a, b models.SeriesPoint) int { return cmp.Compare(a.Date, b.Date) })
	return points
}

func inPeriod(value string, start, end time.Time) bool {
	day, err := parseDate(value)
	if err != nil {
		return false
	}
	from, _ := parseDate(start.Format(dateLayout))
	to, _ := parseDate(end.Format(dateLayout))
	return !day.Before(from) && !day.After(to)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}
	return time.Parse(dateLayout, value)
}
