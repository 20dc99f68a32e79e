package assistantService

import (
	"fmt"
	"strings"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const expenseNeedsGoogle = "🔗 Connect your Google account first so I can log expenses to your sheet."

// logExpenses appends one sheet row per item. A failing row does not stop
// the rest.
func (s *assistantService) logExpenses(ctx context.Context, userID string, expenses []entity.ExpenseEntity) string {
	if len(expenses) == 0 {
		return "💸 I couldn't find an amount to log. Try \"spent 250 on lunch at Cafe Coffee Day\"."
	}
	if s.google == nil || !s.google.Connected(ctx, userID) {
		return expenseNeedsGoogle
	}

	lines := make([]string, 0, len(expenses)+1)
	link := ""
	for _, e := range expenses {
		row := expenseRow(e)
		if e.Cost <= 0 || row.Item == "" {
			lines = append(lines, fmt.Sprintf("⚠️ Skipped an entry without a valid amount or item (%q).", e.Item))
			continue
		}

		sheetLink, err := s.google.AppendExpense(ctx, userID, row.Values())
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"user_id":    userID,
				"item":       row.Item,
				"error":      err.Error(),
			}).Error("[assistantService.logExpenses] failed to append expense")
			lines = append(lines, fmt.Sprintf("❌ Failed to log *%s*. The sheet might be deleted or permissions revoked.", row.Item))
			continue
		}

		link = sheetLink
		lines = append(lines, fmt.Sprintf("✅ Logged: *₹%s* for *%s*", row.Cost, row.Item))
	}

	if link != "" {
		lines = append(lines, "🔗 View Sheet: "+link)
	}
	return strings.Join(lines, "\n")
}

func expenseRow(e entity.ExpenseEntity) entity.ExpenseRow {
	place := utils.TitleCase(e.Place)
	if place == "" {
		place = "N/A"
	}
	return entity.ExpenseRow{
		Date:  e.At.Format("2006-01-02"),
		Time:  e.At.Format("03:04 PM"),
		Item:  utils.TitleCase(e.Item),
		Place: place,
		Cost:  fmt.Sprintf("%.2f", float64(e.Cost)),
	}
}
