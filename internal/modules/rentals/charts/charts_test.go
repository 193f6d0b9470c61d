package charts

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

func hourly(season types.Season, temp float64, total int) pipeline.HourlyRow {
	return pipeline.HourlyRow{
		HourlyRecord: types.HourlyRecord{Season: season, Weather: 1, Temperature: temp, Total: total},
		WeatherLabel: "Clear",
	}
}

func sampleResult() pipeline.Result {
	return pipeline.Result{
		SeasonSummary: []pipeline.SeasonTotal{{Season: 3, Total: 1061129}, {Season: 2, Total: 918589}},
		WeatherSummary: []pipeline.WeatherTotal{
			{Label: "Clear", Total: 2338173},
			{Label: "Mist/Cloudy", Total: 795952},
		},
		Hourly: []pipeline.HourlyRow{
			hourly(1, 9.84, 16),
			hourly(2, 24.6, 412),
			hourly(3, 30.1, 380),
			hourly(3, math.NaN(), 12),
		},
	}
}

func TestRender_AllCharts(t *testing.T) {
	res := sampleResult()
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, name, res); err != nil {
				t.Fatalf("Render(%s): %v", name, err)
			}
			out := buf.String()
			if !strings.Contains(out, "<svg") {
				t.Fatalf("Render(%s) did not produce svg: %.80q", name, out)
			}
			if strings.Contains(out, EmptyMessage) {
				t.Errorf("Render(%s) rendered the placeholder for non-empty data", name)
			}
		})
	}
}

func TestRender_BarLabels(t *testing.T) {
	var buf bytes.Buffer
	if err := SeasonBars(&buf, sampleResult().SeasonSummary); err != nil {
		t.Fatalf("SeasonBars: %v", err)
	}
	for _, want := range []string{"Fall", "Summer", "Total Rentals by Season"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("season chart missing %q", want)
		}
	}
}

func TestRender_ScatterLegend(t *testing.T) {
	var buf bytes.Buffer
	if err := TemperatureScatter(&buf, sampleResult().Hourly); err != nil {
		t.Fatalf("TemperatureScatter: %v", err)
	}
	for _, want := range []string{"Spring", "Summer", "Fall"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("scatter legend missing %q", want)
		}
	}
}

func TestRender_EmptyInputsUsePlaceholder(t *testing.T) {
	for _, name := range Names {
		var buf bytes.Buffer
		if err := Render(&buf, name, pipeline.Result{}); err != nil {
			t.Fatalf("Render(%s) on empty result: %v", name, err)
		}
		if !strings.Contains(buf.String(), EmptyMessage) {
			t.Errorf("Render(%s) on empty result = %.120q; want placeholder", name, buf.String())
		}
	}
}

func TestRender_SinglePointAndZeroTotals(t *testing.T) {
	var buf bytes.Buffer
	if err := TemperatureScatter(&buf, []pipeline.HourlyRow{hourly(1, 12, 0)}); err != nil {
		t.Fatalf("TemperatureScatter single point: %v", err)
	}
	buf.Reset()
	if err := SeasonBars(&buf, []pipeline.SeasonTotal{{Season: 1, Total: 0}}); err != nil {
		t.Fatalf("SeasonBars zero total: %v", err)
	}
}

func TestRender_OnlyNaNTemperatures(t *testing.T) {
	var buf bytes.Buffer
	if err := TemperatureScatter(&buf, []pipeline.HourlyRow{hourly(1, math.NaN(), 4)}); err != nil {
		t.Fatalf("TemperatureScatter: %v", err)
	}
	if !strings.Contains(buf.String(), EmptyMessage) {
		t.Error("scatter with no temperatures should render the placeholder")
	}
}

func TestRender_UnknownChart(t *testing.T) {
	err := Render(&bytes.Buffer{}, "hourly.png", pipeline.Result{})
	if !errors.Is(err, ErrUnknownChart) {
		t.Fatalf("Render(unknown) error = %v; want ErrUnknownChart", err)
	}
}

func TestColor_WrapsNegativeAndLargeIndexes(t *testing.T) {
	if color(-1) != palette[len(palette)-1] {
		t.Error("color(-1) should wrap to the last palette entry")
	}
	if color(len(palette)) != palette[0] {
		t.Error("color(len) should wrap to the first palette entry")
	}
}
