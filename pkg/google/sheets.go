package google

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	drive "google.golang.org/api/drive/v3"
	sheets "google.golang.org/api/sheets/v4"
)

const (
	ExpenseSheetTitle = "AI Buddy Expenses"
	spreadsheetMime   = "application/vnd.google-apps.spreadsheet"
)

var expenseHeader = []interface{}{"Date", "Time", "Item", "Place", "Cost"}

// AppendExpense appends one row to the user's expense sheet, creating the
// sheet with a header row on first use. It returns the sheet link.
func (g *googleProvider) AppendExpense(ctx context.Context, userID string, row []interface{}) (string, error) {
	opt, err := g.clientOption(ctx, userID)
	if err != nil {
		return "", err
	}

	sheetsSvc, err := sheets.NewService(ctx, opt)
	if err != nil {
		return "", err
	}
	driveSvc, err := drive.NewService(ctx, opt)
	if err != nil {
		return "", err
	}

	sheetID, err := g.findOrCreateSheet(ctx, userID, sheetsSvc, driveSvc)
	if err != nil {
		return "", err
	}

	_, err = sheetsSvc.Spreadsheets.Values.Append(sheetID, "A1", &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", err
	}

	return sheetLink(sheetID), nil
}

func (g *googleProvider) findOrCreateSheet(ctx context.Context, userID string, sheetsSvc *sheets.Service, driveSvc *drive.Service) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", ExpenseSheetTitle, spreadsheetMime)
	list, err := driveSvc.Files.List().Q(query).Fields("files(id)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	created, err := sheetsSvc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: ExpenseSheetTitle},
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	_, err = sheetsSvc.Spreadsheets.Values.Append(created.SpreadsheetId, "A1", &sheets.ValueRange{
		Values: [][]interface{}{expenseHeader},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", err
	}

	g.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"sheet_id": created.SpreadsheetId,
	}).Info("[google.findOrCreateSheet] created expense sheet")

	return created.SpreadsheetId, nil
}

func sheetLink(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}
