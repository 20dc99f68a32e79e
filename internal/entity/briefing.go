package entity

import jsoniter "github.com/json-iterator/go"

type BriefingInput struct {
	UserName      string              `json:"user_name"`
	FestivalName  string              `json:"festival_name"`
	Quote         string              `json:"quote"`
	Author        string              `json:"author"`
	HistoryEvents []string            `json:"history_events"`
	City          string              `json:"city"`
	Weather       jsoniter.RawMessage `json:"weather"`
}

// BriefingBundle is always fully populated; each field falls back on its own.
type BriefingBundle struct {
	Greeting         string `json:"greeting"`
	QuoteExplanation string `json:"quote_explanation"`
	DetailedHistory  string `json:"detailed_history"`
	DetailedWeather  string `json:"detailed_weather"`
}
