package assistantService

import (
	"fmt"
	"strings"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	trainService "github.com/Dhruvin6677/ai-buddy/internal/api/train/service"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"golang.org/x/net/context"
)

const (
	aiUnavailableText   = "❌ AI service unavailable."
	generalFailureText  = "⚠️ I'm having trouble thinking right now."
	trainUnavailable    = "❌ Train tracking is not available right now."
	trainMissingPNRText = "🚆 Please send the 10-digit PNR number you want me to track."
)

// HandleMessage runs one inbound message to completion. Messages from the
// same user are processed one at a time; an active draft session takes the
// message before classification.
func (s *assistantService) HandleMessage(ctx context.Context, msg assistant.IncomingMessage) (*assistant.Reply, error) {
	if err := validateMessage(msg); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(msg.UserID)
	defer unlock()

	ctx = contextPkg.WithUserID(ctx, msg.UserID)

	session, active, err := s.activeSession(ctx, msg.UserID)
	if err != nil {
		return nil, err
	}
	if active {
		dr, err := s.continueDraft(ctx, msg, session)
		if err != nil {
			return nil, err
		}
		return &assistant.Reply{Text: dr.Text, Intent: entity.IntentEmailAssistant, DraftState: dr.State.String()}, nil
	}

	result := s.ClassifyIntent(ctx, msg.Text, s.currentTime())

	log.FromContext(s.log, ctx).
		WithField("intent", result.Intent).
		Info("[assistantService.HandleMessage] dispatching message")

	reply := &assistant.Reply{Intent: result.Intent}

	switch result.Intent {
	case entity.IntentSetReminder:
		reply.Text = s.setReminders(ctx, msg.UserID, result.Reminders)
	case entity.IntentGetReminders:
		reply.Text = s.remindersText(ctx, msg.UserID)
	case entity.IntentLogExpense:
		reply.Text = s.logExpenses(ctx, msg.UserID, result.Expenses)
	case entity.IntentEmailAssistant:
		hint := recipientFromText(msg.Text)
		if result.Email != nil && emailAddressRe.MatchString(result.Email.Recipient) {
			hint = emailAddressRe.FindString(result.Email.Recipient)
		}
		dr, err := s.startDraft(ctx, msg, hint)
		if err != nil {
			return nil, err
		}
		reply.Text = dr.Text
		reply.DraftState = dr.State.String()
	case entity.IntentTrainTracking:
		reply.Text = s.trainText(ctx, result.Train)
	case entity.IntentGetBotIdentity:
		reply.Text = s.identityText()
	case entity.IntentGetFeatures:
		reply.Text = s.featuresText()
	case entity.IntentGeneralQuery:
		reply.Text = s.generalReply(ctx, msg.Text)
	default:
		reply.Text = notConnectedText(result)
	}

	return reply, nil
}

func (s *assistantService) trainText(ctx context.Context, train *entity.TrainEntity) string {
	if s.train == nil {
		return trainUnavailable
	}
	if train == nil || train.PNR == "" {
		return trainMissingPNRText
	}
	return trainService.FormatStatus(s.train.LookupPNR(ctx, train.PNR))
}

func (s *assistantService) generalReply(ctx context.Context, text string) string {
	if s.chat == nil {
		return aiUnavailableText
	}

	c, cancel := context.WithTimeout(ctx, s.cfg.ReplyTimeout)
	defer cancel()

	out, err := s.chat.Complete(c, llm.Request{
		Messages:    llm.UserText(text),
		Tier:        llm.TierSmart,
		Temperature: 0.7,
	})
	if err != nil {
		err = llm.NormalizeError(c, err)
		log.FromContext(s.log, ctx).
			WithError(err).
			Warn("[assistantService.generalReply] reply generation failed")
		return generalFailureText
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return generalFailureText
	}
	return out
}

func (s *assistantService) identityText() string {
	if s.cfg.BotOwner == "" {
		return fmt.Sprintf("🤖 I'm *%s*, your personal assistant on WhatsApp.", s.cfg.BotName)
	}
	return fmt.Sprintf("🤖 I'm *%s*, your personal assistant on WhatsApp. I was created by *%s*.", s.cfg.BotName, s.cfg.BotOwner)
}

func (s *assistantService) featuresText() string {
	return fmt.Sprintf(`✨ *Here's what %s can do:*

⏰ *Reminders* - "remind me to call mom every day at 9pm"
📋 *List reminders* - "show my reminders"
💸 *Expenses* - "spent 250 on lunch at Cafe Coffee Day"
📧 *Emails* - "write an email to my manager about leave"
🚆 *Train status* - "track PNR 8204567890"
💬 *Questions* - ask me anything

Type "cancel" at any time to stop an email draft.`, s.cfg.BotName)
}

// notConnectedText answers intents whose integrations are not part of this
// deployment, echoing what was understood.
func notConnectedText(result entity.ClassificationResult) string {
	understood := ""
	switch result.Intent {
	case entity.IntentScheduleMeeting:
		if m := result.Meeting; m != nil && m.Topic != "" {
			understood = fmt.Sprintf(" a meeting about *%s*", m.Topic)
		}
	case entity.IntentConvertCurrency:
		if len(result.Conversions) > 0 {
			c := result.Conversions[0]
			understood = fmt.Sprintf(" converting *%.2f %s* to *%s*", float64(c.Amount), strings.ToUpper(c.FromCurrency), strings.ToUpper(c.ToCurrency))
		}
	case entity.IntentGetWeather:
		if l := result.Location; l != nil && l.Location != "" {
			understood = fmt.Sprintf(" the weather in *%s*", l.Location)
		}
	case entity.IntentDriveSearchFile, entity.IntentYoutubeSearch:
		if q := result.Search; q != nil && q.Query != "" {
			understood = fmt.Sprintf(" a search for *%s*", q.Query)
		}
	case entity.IntentDriveAnalyzeFile:
		if f := result.File; f != nil && f.Filename != "" {
			understood = fmt.Sprintf(" analysing *%s*", f.Filename)
		}
	}

	feature := strings.ReplaceAll(string(result.Intent), "_", " ")
	if understood != "" {
		return fmt.Sprintf("🔌 I understood you want%s, but %s isn't connected yet.", understood, feature)
	}
	return fmt.Sprintf("🔌 Sorry, %s isn't connected yet.", feature)
}
