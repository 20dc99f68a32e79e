package assistantService

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
)

const classifyPromptTemplate = `You are an intent router for a personal assistant. Classify the user's message and extract structured data.

Current date and time: %s (%s)

Intents and the shape of "entities":
- "schedule_meeting": {"attendees": ["name"], "topic": "string", "duration_minutes": int}
- "set_reminder": ARRAY of {"task": "string", "timestamp": "YYYY-MM-DD HH:MM:SS", "recurrence": "string or null"}
  The timestamp is mandatory. For a recurring rule without a start date use the first occurrence from now:
  today if the time has not passed yet, otherwise tomorrow. Never return a null timestamp.
- "get_reminders": {}
- "log_expense": ARRAY of {"cost": number, "item": "string", "place": "string", "timestamp": "YYYY-MM-DD HH:MM:SS"}
- "convert_currency": ARRAY of {"amount": number, "from_currency": "code", "to_currency": "code"}
- "get_weather": {"location": "city"}
- "drive_search_file": {"query": "string"}
- "drive_upload_file": {}
- "drive_analyze_file": {"filename": "string"}
- "youtube_search": {"query": "string"}
- "email_assistant": {"recipient": "email address if given", "topic": "string"}
- "get_bot_identity": {}
- "get_features": {}
- "train_tracking": {"pnr": "10 digit PNR number"}
- "general_query": {} for conversation and anything else

User message: %q

Return only a JSON object with the keys "intent" and "entities".`

func classifyPrompt(text string, now time.Time) string {
	return fmt.Sprintf(classifyPromptTemplate, now.Format("2006-01-02 Monday, 15:04:05"), now.Location(), text)
}

const draftPromptTemplate = `You are an expert email assistant. Current time: %s.
The sender is %s.%s

Goal: help the user write a good email.

Rules:
1. If the request is short or vague, do not draft yet. Ask what is missing: who it is for, the reason and the key facts.
2. Once you have enough detail, write a draft starting with "Subject:" followed by the body, signed by the sender.
   Then ask: "Shall I send this, or do you want to make changes?"
3. Revisions: apply the change and show the full updated draft again.
4. Scheduling: understand "send it tomorrow at 10am", "send in 2 hours" or "send now".
5. Only when the user explicitly confirms sending, reply with exactly this and nothing else:

JSON_ACTION: {
  "action": "SEND_EMAIL",
  "recipient_email": "address or null",
  "subject": "final subject",
  "body": "final body",
  "scheduled_time": "YYYY-MM-DD HH:MM:SS or NOW"
}`

func draftSystemPrompt(session entity.DraftSession, now time.Time, slots draftSlots) string {
	sender := session.SenderIdentity
	if sender == "" {
		sender = "the user"
	}

	var known []string
	if session.RecipientHint != "" {
		known = append(known, "recipient email: "+session.RecipientHint)
	}
	if len(session.Attachments) > 0 {
		known = append(known, fmt.Sprintf("attachments ready: %d", len(session.Attachments)))
	}
	if missing := slots.missing(); len(missing) > 0 {
		known = append(known, "still unclear: "+strings.Join(missing, ", "))
	}

	extra := ""
	if len(known) > 0 {
		extra = "\nKnown details: " + strings.Join(known, "; ") + "."
	}

	return fmt.Sprintf(draftPromptTemplate, now.Format("2006-01-02 15:04:05"), sender, extra)
}
