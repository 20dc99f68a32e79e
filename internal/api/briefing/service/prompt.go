package briefingService

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
)

const briefingPromptTemplate = `You are a helpful Indian friend writing an engaging daily briefing.
Today's date is %s. The user's name is %s.

Return a single JSON object with the keys "greeting", "quote_explanation", "detailed_history" and "detailed_weather".

1. greeting: today's festival is %q. If a festival is given, greet for it, e.g. "Happy Raksha Bandhan, %s!".
   Otherwise use "☀️ Good Morning, %s!".
2. quote_explanation: explain %q by %s in one insightful sentence.
3. detailed_history: pick the most interesting of these events and summarise it in 2-3 sentences: %s
4. detailed_weather: a friendly forecast for %s with temperature, conditions and one suggestion. Data: %s

Return only the JSON object.`

func briefingPrompt(in entity.BriefingInput, events []string, city string, now time.Time) string {
	festival := strings.TrimSpace(in.FestivalName)
	if festival == "" {
		festival = "None"
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = "Unknown"
	}

	eventsJSON, _ := json.Marshal(events)
	weather := strings.TrimSpace(string(in.Weather))
	if weather == "" {
		weather = "{}"
	}

	return fmt.Sprintf(briefingPromptTemplate,
		now.Format("Monday, January 02, 2006"), in.UserName,
		festival, in.UserName, in.UserName,
		in.Quote, author,
		string(eventsJSON),
		city, weather,
	)
}
