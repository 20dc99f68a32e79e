package entity

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrMalformedClassification = errors.New("malformed classification payload")

type Intent string

const (
	IntentScheduleMeeting  Intent = "schedule_meeting"
	IntentSetReminder      Intent = "set_reminder"
	IntentGetReminders     Intent = "get_reminders"
	IntentLogExpense       Intent = "log_expense"
	IntentConvertCurrency  Intent = "convert_currency"
	IntentGetWeather       Intent = "get_weather"
	IntentDriveSearchFile  Intent = "drive_search_file"
	IntentDriveUploadFile  Intent = "drive_upload_file"
	IntentDriveAnalyzeFile Intent = "drive_analyze_file"
	IntentYoutubeSearch    Intent = "youtube_search"
	IntentEmailAssistant   Intent = "email_assistant"
	IntentGetBotIdentity   Intent = "get_bot_identity"
	IntentGetFeatures      Intent = "get_features"
	IntentTrainTracking    Intent = "train_tracking"
	IntentGeneralQuery     Intent = "general_query"
)

// EntityShape tells callers whether an intent carries one record or many.
type EntityShape uint8

const (
	ShapeNone EntityShape = iota
	ShapeObject
	ShapeList
)

var intentShapes = map[Intent]EntityShape{
	IntentScheduleMeeting:  ShapeObject,
	IntentSetReminder:      ShapeList,
	IntentGetReminders:     ShapeNone,
	IntentLogExpense:       ShapeList,
	IntentConvertCurrency:  ShapeList,
	IntentGetWeather:       ShapeObject,
	IntentDriveSearchFile:  ShapeObject,
	IntentDriveUploadFile:  ShapeNone,
	IntentDriveAnalyzeFile: ShapeObject,
	IntentYoutubeSearch:    ShapeObject,
	IntentEmailAssistant:   ShapeObject,
	IntentGetBotIdentity:   ShapeNone,
	IntentGetFeatures:      ShapeNone,
	IntentTrainTracking:    ShapeObject,
	IntentGeneralQuery:     ShapeNone,
}

func (i Intent) Shape() EntityShape {
	return intentShapes[i]
}

func (i Intent) Valid() bool {
	_, ok := intentShapes[i]
	return ok
}

type MeetingEntity struct {
	Attendees       []string `json:"attendees"`
	Topic           string   `json:"topic"`
	DurationMinutes int      `json:"duration_minutes"`
}

type ConversionEntity struct {
	Amount       Amount `json:"amount"`
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
}

type LocationEntity struct {
	Location string `json:"location"`
}

type SearchEntity struct {
	Query string `json:"query"`
}

type FileEntity struct {
	Filename string `json:"filename"`
}

type EmailEntity struct {
	Recipient string `json:"recipient,omitempty"`
	Topic     string `json:"topic,omitempty"`
}

type TrainEntity struct {
	PNR string `json:"pnr"`
}

// ClassificationResult is a tagged union: only the field matching Intent is
// populated. List intents always carry a non-nil slice.
type ClassificationResult struct {
	Intent      Intent
	Meeting     *MeetingEntity
	Reminders   []ReminderEntity
	Expenses    []ExpenseEntity
	Conversions []ConversionEntity
	Location    *LocationEntity
	Search      *SearchEntity
	File        *FileEntity
	Email       *EmailEntity
	Train       *TrainEntity
}

func GeneralQuery() ClassificationResult {
	return ClassificationResult{Intent: IntentGeneralQuery}
}

// Entities returns the payload in the shape the intent declares.
func (c ClassificationResult) Entities() any {
	switch c.Intent {
	case IntentSetReminder:
		return nonNil(c.Reminders)
	case IntentLogExpense:
		return nonNil(c.Expenses)
	case IntentConvertCurrency:
		return nonNil(c.Conversions)
	case IntentScheduleMeeting:
		return objectOrEmpty(c.Meeting)
	case IntentGetWeather:
		return objectOrEmpty(c.Location)
	case IntentDriveSearchFile, IntentYoutubeSearch:
		return objectOrEmpty(c.Search)
	case IntentDriveAnalyzeFile:
		return objectOrEmpty(c.File)
	case IntentEmailAssistant:
		return objectOrEmpty(c.Email)
	case IntentTrainTracking:
		return objectOrEmpty(c.Train)
	}
	return map[string]any{}
}

func (c ClassificationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Intent   Intent `json:"intent"`
		Entities any    `json:"entities"`
	}{
		Intent:   c.Intent,
		Entities: c.Entities(),
	})
}

// ParseClassification decodes a classifier reply, using the intent tag to
// pick the entity schema. List intents accept a single object and wrap it.
func ParseClassification(raw []byte) (ClassificationResult, error) {
	var wire struct {
		Intent   string              `json:"intent"`
		Entities jsoniter.RawMessage `json:"entities"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return ClassificationResult{}, errors.Join(ErrMalformedClassification, err)
	}

	intent := Intent(strings.ToLower(strings.TrimSpace(wire.Intent)))
	if !intent.Valid() {
		return ClassificationResult{}, fmt.Errorf("%w: unknown intent %q", ErrMalformedClassification, wire.Intent)
	}

	res := ClassificationResult{Intent: intent}
	ents := bytes.TrimSpace(wire.Entities)

	var err error
	switch intent {
	case IntentSetReminder:
		res.Reminders, err = decodeList[ReminderEntity](ents)
	case IntentLogExpense:
		res.Expenses, err = decodeList[ExpenseEntity](ents)
	case IntentConvertCurrency:
		res.Conversions, err = decodeList[ConversionEntity](ents)
	case IntentScheduleMeeting:
		res.Meeting, err = decodeObject[MeetingEntity](ents)
	case IntentGetWeather:
		res.Location, err = decodeObject[LocationEntity](ents)
	case IntentDriveSearchFile, IntentYoutubeSearch:
		res.Search, err = decodeObject[SearchEntity](ents)
	case IntentDriveAnalyzeFile:
		res.File, err = decodeObject[FileEntity](ents)
	case IntentEmailAssistant:
		res.Email, err = decodeObject[EmailEntity](ents)
	case IntentTrainTracking:
		res.Train, err = decodeObject[TrainEntity](ents)
	}
	if err != nil {
		return ClassificationResult{}, fmt.Errorf("%w: %s entities: %v", ErrMalformedClassification, intent, err)
	}

	return res, nil
}

func isEmptyPayload(raw []byte) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}"))
}

func decodeList[T any](raw []byte) ([]T, error) {
	if isEmptyPayload(raw) {
		return []T{}, nil
	}

	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return nonNil(items), nil
	case '{':
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		return []T{item}, nil
	}
	return nil, errors.New("expected an array or object")
}

func decodeObject[T any](raw []byte) (*T, error) {
	if isEmptyPayload(raw) {
		return nil, nil
	}
	if raw[0] != '{' {
		return nil, errors.New("expected an object")
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func objectOrEmpty[T any](item *T) any {
	if item == nil {
		return map[string]any{}
	}
	return item
}
