package briefingService

import (
	"fmt"
	"strings"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	quoteFallback   = "Have a great day!"
	historyFallback = "No historical fact found for today."
	weatherFallback = "Weather data is currently unavailable."
)

// GenerateBriefing asks for all four sections in one call. Every field that
// the model leaves empty, mistypes or cannot ground in the input falls back on
// its own static text.
func (s *briefingService) GenerateBriefing(ctx context.Context, in entity.BriefingInput) entity.BriefingBundle {
	requestID := contextPkg.GetRequestID(ctx)

	weather, weatherOK := parseWeather(in.Weather)
	city := s.city(in, weather)
	events := nonEmpty(in.HistoryEvents)

	bundle := s.staticBundle(in, city, weather, weatherOK)
	if s.chat == nil {
		return bundle
	}

	c, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	out, err := s.chat.Complete(c, llm.Request{
		Messages:    llm.UserText(briefingPrompt(in, events, city, s.now().In(s.cfg.Location))),
		Tier:        llm.TierSmart,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		err = llm.NormalizeError(c, err)
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("[briefingService.GenerateBriefing] briefing call failed")
		return bundle
	}

	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal([]byte(llm.StripCodeFence(out)), &fields); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("[briefingService.GenerateBriefing] briefing payload rejected")
		return bundle
	}

	bundle.Greeting = pick(fields, "greeting", bundle.Greeting)
	if strings.TrimSpace(in.Quote) != "" {
		bundle.QuoteExplanation = pick(fields, "quote_explanation", bundle.QuoteExplanation)
	}
	if len(events) > 0 {
		bundle.DetailedHistory = pick(fields, "detailed_history", bundle.DetailedHistory)
	}
	if weatherOK {
		bundle.DetailedWeather = pick(fields, "detailed_weather", bundle.DetailedWeather)
	}

	return bundle
}

func (s *briefingService) staticBundle(in entity.BriefingInput, city string, weather weatherReport, weatherOK bool) entity.BriefingBundle {
	b := entity.BriefingBundle{
		Greeting:         greeting(in),
		QuoteExplanation: quoteFallback,
		DetailedHistory:  historyFallback,
		DetailedWeather:  weatherFallback,
	}
	if weatherOK {
		b.DetailedWeather = weather.summary(city)
	}
	return b
}

func (s *briefingService) city(in entity.BriefingInput, weather weatherReport) string {
	if c := strings.TrimSpace(in.City); c != "" {
		return c
	}
	if c := strings.TrimSpace(weather.Name); c != "" {
		return c
	}
	return s.cfg.City
}

func greeting(in entity.BriefingInput) string {
	name := strings.TrimSpace(in.UserName)
	if name == "" {
		name = "friend"
	}
	if festival := strings.TrimSpace(in.FestivalName); festival != "" {
		return fmt.Sprintf("Happy %s, %s!", festival, name)
	}
	return fmt.Sprintf("☀️ Good Morning, %s!", name)
}

// pick returns the named field when it decodes to a non-empty string.
func pick(fields map[string]jsoniter.RawMessage, key, fallback string) string {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
