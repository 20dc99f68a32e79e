package assistantService

import (
	"regexp"
	"strings"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/Dhruvin6677/ai-buddy/pkg/nlp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var (
	pnrInTextRe   = regexp.MustCompile(`\b\d{10}\b`)
	spacedDigitRe = regexp.MustCompile(`(\d)[\s-]+(\d)`)
)

// ClassifyIntent never fails: any upstream or decoding problem yields
// general_query with empty entities.
func (s *assistantService) ClassifyIntent(ctx context.Context, text string, now time.Time) entity.ClassificationResult {
	requestID := contextPkg.GetRequestID(ctx)

	if s.chat == nil || strings.TrimSpace(text) == "" {
		return entity.GeneralQuery()
	}
	now = now.In(s.cfg.Location)

	c, cancel := context.WithTimeout(ctx, s.cfg.ClassifyTimeout)
	defer cancel()

	raw, err := s.chat.Complete(c, llm.Request{
		Messages:    llm.UserText(classifyPrompt(text, now)),
		Tier:        llm.TierSmart,
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		err = llm.NormalizeError(c, err)
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("[assistantService.ClassifyIntent] classification call failed")
		return entity.GeneralQuery()
	}

	result, err := entity.ParseClassification([]byte(llm.StripCodeFence(raw)))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("[assistantService.ClassifyIntent] classification payload rejected")
		return entity.GeneralQuery()
	}

	switch result.Intent {
	case entity.IntentSetReminder:
		for i := range result.Reminders {
			result.Reminders[i] = s.resolveReminder(result.Reminders[i], text, now)
		}
	case entity.IntentLogExpense:
		for i := range result.Expenses {
			result.Expenses[i] = s.resolveExpense(result.Expenses[i], now)
		}
	case entity.IntentTrainTracking:
		if result.Train == nil || !validPNR(result.Train.PNR) {
			result.Train = &entity.TrainEntity{PNR: pnrFromText(text)}
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"intent":     result.Intent,
	}).Debug("[assistantService.ClassifyIntent] message classified")

	return result
}

// resolveReminder pins the reminder to an absolute time. The model's timestamp
// wins; the user's own words are the fallback. A recurring reminder whose
// first time already passed moves to its next occurrence.
func (s *assistantService) resolveReminder(r entity.ReminderEntity, text string, now time.Time) entity.ReminderEntity {
	r.Task = strings.TrimSpace(r.Task)

	r.Recurrence = nlp.NormalizeRecurrence(r.Recurrence)
	if r.Recurrence == "" {
		r.Recurrence = nlp.NormalizeRecurrence(text)
	}

	at, ok := s.resolver.Resolve(r.Timestamp, now)
	if !ok {
		at, ok = s.resolver.Resolve(text, now)
	}
	if !ok {
		r.At = time.Time{}
		r.Timestamp = ""
		return r
	}

	if r.Recurrence != "" {
		for !at.After(now) {
			next, valid := nlp.NextOccurrence(at, r.Recurrence)
			if !valid {
				break
			}
			at = next
		}
	}

	r.At = at
	r.Timestamp = at.Format(nlp.TimestampLayout)
	return r
}

func (s *assistantService) resolveExpense(e entity.ExpenseEntity, now time.Time) entity.ExpenseEntity {
	e.Item = strings.TrimSpace(e.Item)
	e.Place = strings.TrimSpace(e.Place)

	at, ok := s.resolver.Resolve(e.Timestamp, now)
	if !ok {
		at = now
	}
	e.At = at
	e.Timestamp = at.Format(nlp.TimestampLayout)
	return e
}

func validPNR(pnr string) bool {
	return len(pnr) == 10 && pnrInTextRe.MatchString(pnr)
}

func pnrFromText(text string) string {
	if m := pnrInTextRe.FindString(text); m != "" {
		return m
	}
	joined := text
	for spacedDigitRe.MatchString(joined) {
		joined = spacedDigitRe.ReplaceAllString(joined, "$1$2")
	}
	return pnrInTextRe.FindString(joined)
}
