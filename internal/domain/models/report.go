package models

import "time"

// CurrentWeather mirrors Open-Meteo's current_weather block.
type CurrentWeather struct {
	Temperature float64 `json:"temperature" bson:"temperature"`
	WindSpeed   float64 `json:"windspeed" bson:"windspeed"`
	WeatherCode int     `json:"weathercode" bson:"weathercode"`
	Time        string  `json:"time" bson:"time"`
}

// Condition maps the WMO weather code to the label shown on the dashboard.
func (w CurrentWeather) Condition() string {
	switch w.WeatherCode {
	case 0:
		return "Clear"
	case 61:
		return "Rain Showers"
	case 71:
		return "Rain"
	case 80:
		return "Showers"
	default:
		return "Unknown Weather"
	}
}

// SeriesPoint is one bar or line point on a dashboard chart.
type SeriesPoint struct {
	Date  string  `json:"date" bson:"date"`
	Value float64 `json:"value" bson:"value"`
}

// DashboardSummary aggregates the owner-scoped figures displayed on the dashboard.
type DashboardSummary struct {
	FarmerID         int             `json:"farmer_id" bson:"farmer_id"`
	FarmerName       string          `json:"farmer_name" bson:"farmer_name"`
	Weather          *CurrentWeather `json:"weather,omitempty" bson:"weather,omitempty"`
	WeatherLabel     string          `json:"weather_label,omitempty" bson:"weather_label,omitempty"`
	WeatherError     string          `json:"weather_error,omitempty" bson:"-"`
	TotalAnimals     int             `json:"total_animals" bson:"total_animals"`
	TotalSales       int             `json:"total_sales" bson:"total_sales"`
	SalesSeries      []SeriesPoint   `json:"sales_series" bson:"sales_series"`
	TotalProduction  float64         `json:"total_production" bson:"total_production"`
	ProductionSeries []SeriesPoint   `json:"production_series" bson:"production_series"`
}

// DashboardSnapshot is a dated summary persisted by the scheduler.
type DashboardSnapshot struct {
	Date      time.Time        `bson:"date" json:"date"`
	Summary   DashboardSummary `bson:"summary" json:"summary"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}
