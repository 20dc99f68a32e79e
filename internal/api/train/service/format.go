package trainService

import (
	"fmt"
	"strings"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	"github.com/Dhruvin6677/ai-buddy/pkg/fallback"
)

const lookupFailedText = "❌ Could not fetch PNR status. Please check the number or try again later."

// FormatStatus renders a lookup result as chat text.
func FormatStatus(result fallback.Result[entity.TrainStatus]) string {
	if !result.Success {
		return lookupFailedText
	}
	info := result.Data

	delay := "✅ Running On Time"
	if info.DelayMinutes > 0 {
		delay = fmt.Sprintf("⚠️ Delayed by %d mins", info.DelayMinutes)
	}

	var b strings.Builder
	b.WriteString("🚆 *Train Journey Detected*\n")
	fmt.Fprintf(&b, "🚂 *%s*\n", info.TrainName)
	fmt.Fprintf(&b, "🎫 PNR: *%s*\n\n", info.PNR)
	fmt.Fprintf(&b, "✅ Status: *%s* (Coach %s, Seat %s)\n", info.CurrentStatus, info.Coach, info.Berth)
	fmt.Fprintf(&b, "📍 Location: %s\n", info.CurrentLocation)
	fmt.Fprintf(&b, "🕒 Status: %s\n\n", delay)
	b.WriteString("🔔 *Smart Alert:* I've enabled background tracking for this trip. I'll wake you up 30 mins before arrival!")
	return b.String()
}
