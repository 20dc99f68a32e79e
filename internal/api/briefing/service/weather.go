package briefingService

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// weatherReport is the subset of an OpenWeather current-weather payload the
// briefing reads.
type weatherReport struct {
	Name string `json:"name"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// parseWeather reports ok only when the temperature and a description are
// both present.
func parseWeather(raw []byte) (weatherReport, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return weatherReport{}, false
	}

	var w weatherReport
	if err := json.Unmarshal(raw, &w); err != nil {
		return weatherReport{}, false
	}
	if w.Main.Temp == nil || len(w.Weather) == 0 || strings.TrimSpace(w.Weather[0].Description) == "" {
		return weatherReport{}, false
	}
	return w, true
}

func (w weatherReport) summary(city string) string {
	return fmt.Sprintf("🌤️ The weather in %s is currently %s°C with %s.",
		city,
		strconv.FormatFloat(*w.Main.Temp, 'f', -1, 64),
		strings.TrimSpace(w.Weather[0].Description),
	)
}
