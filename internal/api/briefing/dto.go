package briefing

import jsoniter "github.com/json-iterator/go"

type BriefingRequest struct {
	UserName      string              `json:"user_name" validate:"required,max=100"`
	FestivalName  string              `json:"festival_name" validate:"max=100"`
	Quote         string              `json:"quote" validate:"max=1000"`
	Author        string              `json:"author" validate:"max=100"`
	HistoryEvents []string            `json:"history_events" validate:"max=50"`
	City          string              `json:"city" validate:"max=100"`
	Weather       jsoniter.RawMessage `json:"weather"`
}
