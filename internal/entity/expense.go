package entity

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/Dhruvin6677/ai-buddy/pkg/nlp"
)

// Amount decodes either a JSON number or a money string such as "₹250".
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, ok := nlp.ParseAmount(s)
		if !ok {
			return fmt.Errorf("invalid amount %q", s)
		}
		*a = Amount(v)
		return nil
	}

	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s", b)
	}
	*a = Amount(v)
	return nil
}

type ExpenseEntity struct {
	Cost      Amount    `json:"cost"`
	Item      string    `json:"item"`
	Place     string    `json:"place,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	At        time.Time `json:"-"`
}

// ExpenseRow is one spreadsheet line.
type ExpenseRow struct {
	Date  string
	Time  string
	Item  string
	Place string
	Cost  string
}

func (r ExpenseRow) Values() []interface{} {
	return []interface{}{r.Date, r.Time, r.Item, r.Place, r.Cost}
}
