package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	t.Run("list intent with a single object is wrapped", func(t *testing.T) {
		res, err := ParseClassification([]byte(`{"intent":"set_reminder","entities":{"task":"call mom","timestamp":"2024-01-15 21:00:00","recurrence":"daily"}}`))
		require.NoError(t, err)
		assert.Equal(t, IntentSetReminder, res.Intent)
		require.Len(t, res.Reminders, 1)
		assert.Equal(t, "call mom", res.Reminders[0].Task)
		assert.Equal(t, "daily", res.Reminders[0].Recurrence)
	})

	t.Run("list intent with an array", func(t *testing.T) {
		res, err := ParseClassification([]byte(`{"intent":"log_expense","entities":[{"cost":120,"item":"coffee","place":"cafe"},{"cost":"₹1,200","item":"shoes"}]}`))
		require.NoError(t, err)
		require.Len(t, res.Expenses, 2)
		assert.InDelta(t, 120, float64(res.Expenses[0].Cost), 0.001)
		assert.InDelta(t, 1200, float64(res.Expenses[1].Cost), 0.001)
	})

	t.Run("list intent with empty entities is an empty list", func(t *testing.T) {
		res, err := ParseClassification([]byte(`{"intent":"convert_currency","entities":{}}`))
		require.NoError(t, err)
		assert.NotNil(t, res.Conversions)
		assert.Empty(t, res.Conversions)
	})

	t.Run("object intent", func(t *testing.T) {
		res, err := ParseClassification([]byte(`{"intent":"train_tracking","entities":{"pnr":"8204567890"}}`))
		require.NoError(t, err)
		require.NotNil(t, res.Train)
		assert.Equal(t, "8204567890", res.Train.PNR)
	})

	t.Run("object intent rejects an array", func(t *testing.T) {
		_, err := ParseClassification([]byte(`{"intent":"get_weather","entities":[{"location":"Pune"}]}`))
		assert.ErrorIs(t, err, ErrMalformedClassification)
	})

	t.Run("unknown intent", func(t *testing.T) {
		_, err := ParseClassification([]byte(`{"intent":"order_pizza","entities":{}}`))
		assert.ErrorIs(t, err, ErrMalformedClassification)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseClassification([]byte(`sure! here you go`))
		assert.ErrorIs(t, err, ErrMalformedClassification)
	})
}

func TestClassificationResult_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   ClassificationResult
		want string
	}{
		{
			name: "general query has empty object",
			in:   GeneralQuery(),
			want: `{"intent":"general_query","entities":{}}`,
		},
		{
			name: "list intent without items is an empty array",
			in:   ClassificationResult{Intent: IntentSetReminder},
			want: `{"intent":"set_reminder","entities":[]}`,
		},
		{
			name: "object intent",
			in:   ClassificationResult{Intent: IntentGetWeather, Location: &LocationEntity{Location: "Pune"}},
			want: `{"intent":"get_weather","entities":{"location":"Pune"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestIntentShape(t *testing.T) {
	assert.Equal(t, ShapeList, IntentLogExpense.Shape())
	assert.Equal(t, ShapeObject, IntentScheduleMeeting.Shape())
	assert.Equal(t, ShapeNone, IntentGeneralQuery.Shape())
	assert.False(t, Intent("nope").Valid())
}
