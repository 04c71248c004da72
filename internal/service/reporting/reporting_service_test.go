package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/session"
)

type fakeCollection[T any] struct {
	items   []T
	total   float64
	loadErr error
	loads   int
}

func (f *fakeCollection[T]) Load(context.Context) error {
	f.loads++
	return f.loadErr
}

func (f *fakeCollection[T]) Owned() []T     { return f.items }
func (f *fakeCollection[T]) Total() float64 { return f.total }

type fakeWeather struct {
	weather *models.CurrentWeather
	err     error
}

func (f fakeWeather) CurrentWeather(context.Context) (*models.CurrentWeather, error) {
	return f.weather, f.err
}

type fakeProfiles struct {
	profile *models.FarmerProfile
	err     error
}

func (f fakeProfiles) Farmer(context.Context, int) (*models.FarmerProfile, error) {
	return f.profile, f.err
}

func loggedIn(t *testing.T) session.Store {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(models.Session{User: models.Farmer{ID: 7, Name: "Jane"}, Token: "tok"}))
	return store
}

func fixtures() (*fakeCollection[models.SaleRecord], *fakeCollection[models.ProductionRecord]) {
	sales := &fakeCollection[models.SaleRecord]{
		items: []models.SaleRecord{
			{ID: 1, Amount: 500.75, SaleDate: "2024-05-02"},
			{ID: 2, Amount: 200, SaleDate: "2024-05-01 00:00:00"},
			{ID: 3, Amount: 100, SaleDate: "2024-05-02"},
			{ID: 4, Amount: 50, SaleDate: "2024-04-01"},
		},
		total: 850.75,
	}
	productions := &fakeCollection[models.ProductionRecord]{
		items: []models.ProductionRecord{
			{ID: 1, Quantity: 12.5, ProductionDate: "2024-05-03"},
			{ID: 2, Quantity: 10, ProductionDate: "2024-05-03"},
		},
		total: 22.5,
	}
	return sales, productions
}

func herd(n int) *models.FarmerProfile {
	profile := &models.FarmerProfile{Farmer: models.Farmer{ID: 7, Name: "Jane"}}
	for i := 0; i < n; i++ {
		profile.Animals = append(profile.Animals, models.ProfileAnimal{Animal: models.Animal{ID: i + 1}})
	}
	return profile
}

func TestSummary(t *testing.T) {
	sales, productions := fixtures()
	weather := fakeWeather{weather: &models.CurrentWeather{Temperature: 21.4, WeatherCode: 80}}
	svc := NewService(loggedIn(t), weather, fakeProfiles{profile: herd(3)}, sales, productions, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, summary.FarmerID)
	assert.Equal(t, "Jane", summary.FarmerName)
	assert.Equal(t, 850, summary.TotalSales)
	assert.Equal(t, []models.SeriesPoint{
		{Date: "2024-04-01", Value: 50},
		{Date: "2024-05-01", Value: 200},
		{Date: "2024-05-02", Value: 600.75},
	}, summary.SalesSeries)
	assert.InDelta(t, 22.5, summary.TotalProduction, 1e-9)
	assert.Equal(t, []models.SeriesPoint{{Date: "2024-05-03", Value: 22.5}}, summary.ProductionSeries)
	assert.Equal(t, 3, summary.TotalAnimals)
	assert.Equal(t, "Showers", summary.WeatherLabel)
	assert.Empty(t, summary.WeatherError)
	assert.Equal(t, 1, sales.loads)
	assert.Equal(t, 1, productions.loads)
}

func TestSummaryDegradesWithoutWeatherOrProfile(t *testing.T) {
	sales, productions := fixtures()
	weather := fakeWeather{err: &apperrors.TransportError{Op: "GET /v1/forecast", Err: errors.New("timeout")}}
	svc := NewService(loggedIn(t), weather, fakeProfiles{err: &apperrors.HTTPError{Status: 500}}, sales, productions, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Nil(t, summary.Weather)
	assert.Equal(t, "Unable to reach the server. Check your connection and try again.", summary.WeatherError)
	assert.Zero(t, summary.TotalAnimals)
	assert.Equal(t, 850, summary.TotalSales)
}

func TestSummaryFailsWhenRecordsFail(t *testing.T) {
	sales, productions := fixtures()
	sales.loadErr = &apperrors.HTTPError{Status: 500}
	svc := NewService(loggedIn(t), fakeWeather{}, fakeProfiles{profile: herd(1)}, sales, productions, nil)

	_, err := svc.Summary(context.Background())
	assert.True(t, apperrors.IsStatus(err, 500))
}

func TestSummaryRequiresSession(t *testing.T) {
	sales, productions := fixtures()
	svc := NewService(session.NewMemoryStore(), fakeWeather{}, fakeProfiles{}, sales, productions, nil)

	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
}

func TestWeeklyReport(t *testing.T) {
	sales, productions := fixtures()
	weather := fakeWeather{weather: &models.CurrentWeather{Temperature: 19, WeatherCode: 0}}
	svc := NewService(loggedIn(t), weather, fakeProfiles{profile: herd(4)}, sales, productions, nil)

	end := time.Date(2024, 5, 3, 20, 0, 0, 0, time.UTC)
	report, err := svc.WeeklyReport(context.Background(), end)
	require.NoError(t, err)

	assert.Contains(t, report, "Weekly farm summary for Jane (2024-04-27 - 2024-05-03)")
	assert.Contains(t, report, "Sales: 800 across 3 records.")
	assert.Contains(t, report, "Production: 22.50 across 2 records.")
	assert.Contains(t, report, "Animals: 4. All-time revenue: 850.")
	assert.Contains(t, report, "Weather: Clear, 19.0°C.")
}

func TestWeeklyReportEmptyWeek(t *testing.T) {
	sales, productions := fixtures()
	svc := NewService(loggedIn(t), fakeWeather{err: errors.New("down")}, fakeProfiles{profile: herd(0)}, sales, productions, nil)

	report, err := svc.WeeklyReport(context.Background(), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, report, "Sales: no records this week.")
	assert.Contains(t, report, "Production: no records this week.")
	assert.NotContains(t, report, "Weather:")
}
