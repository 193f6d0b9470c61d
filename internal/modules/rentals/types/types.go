package types

import (
	"strconv"
	"time"
)

// Season is the categorical season code carried by every record.
type Season int

var seasonNames = map[Season]string{
	1: "Spring",
	2: "Summer",
	3: "Fall",
	4: "Winter",
}

// Name returns the display name for the season. Unknown codes render as "Season N".
func (s Season) Name() string {
	if name, ok := seasonNames[s]; ok {
		return name
	}
	return "Season " + strconv.Itoa(int(s))
}

// WeatherCode is the integer weather condition (1-4) carried by every record.
type WeatherCode int

const (
	WeatherClear WeatherCode = iota + 1
	WeatherMist
	WeatherLightPrecipitation
	WeatherHeavyPrecipitation
)

var weatherLabels = map[WeatherCode]string{
	WeatherClear:              "Clear",
	WeatherMist:               "Mist/Cloudy",
	WeatherLightPrecipitation: "Light Snow/Rain",
	WeatherHeavyPrecipitation: "Heavy Rain/Ice",
}

// Label returns the human-readable label for the code. ok is false for codes
// outside the fixed mapping; such codes have no label.
func (c WeatherCode) Label() (label string, ok bool) {
	label, ok = weatherLabels[c]
	return label, ok
}

// WeatherLabels returns every known label in code order.
func WeatherLabels() []string {
	out := make([]string, 0, len(weatherLabels))
	for c := WeatherClear; c <= WeatherHeavyPrecipitation; c++ {
		out = append(out, weatherLabels[c])
	}
	return out
}

// IsWeatherLabel reports whether label is one of the known weather labels.
func IsWeatherLabel(label string) bool {
	for _, l := range weatherLabels {
		if l == label {
			return true
		}
	}
	return false
}

// HourlyRecord is one row of the hourly rental data.
type HourlyRecord struct {
	Date        time.Time   `json:"date"`
	Hour        int         `json:"hour"`
	Season      Season      `json:"season"`
	Weather     WeatherCode `json:"weather"`
	Temperature float64     `json:"temperature"`
	Humidity    float64     `json:"humidity"`
	Windspeed   float64     `json:"windspeed"`
	Total       int         `json:"total"`
}

// DailyRecord is one row of the daily rental data.
type DailyRecord struct {
	Date    time.Time   `json:"date"`
	Season  Season      `json:"season"`
	Weather WeatherCode `json:"weather"`
	Total   int         `json:"total"`
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
