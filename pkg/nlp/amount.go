package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	unitAmountRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(k|thousand|lakh|lakhs|lac|crore|cr|m|million)\b`)
	numericAmountRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

type AmountExtractor struct {
	numberWords map[string]float64
}

func NewAmountExtractor() *AmountExtractor {
	return &AmountExtractor{
		numberWords: map[string]float64{
			"zero":  0,
			"one":   1,
			"two":   2,
			"three": 3,
			"four":  4,
			"five":  5,
			"six":   6,
			"seven": 7,
			"eight": 8,
			"nine":  9,
			"ten":   10,

			"eleven":   11,
			"twelve":   12,
			"fifteen":  15,
			"twenty":   20,
			"thirty":   30,
			"forty":    40,
			"fifty":    50,
			"sixty":    60,
			"seventy":  70,
			"eighty":   80,
			"ninety":   90,
			"hundred":  100,
			"thousand": 1000,
			"lakh":     100000,
			"million":  1000000,
			"crore":    10000000,
		},
	}
}

// ExtractAmount finds a money amount in free text such as "₹1,200",
// "2.5k" or "two hundred". Currency symbols are ignored.
func (ae *AmountExtractor) ExtractAmount(text string) (float64, bool) {
	text = strings.ToLower(text)

	if m := unitAmountRe.FindStringSubmatch(text); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			multiplier := 1.0
			switch m[2] {
			case "k", "thousand":
				multiplier = 1000
			case "lakh", "lakhs", "lac":
				multiplier = 100000
			case "crore", "cr":
				multiplier = 10000000
			case "m", "million":
				multiplier = 1000000
			}
			return num * multiplier, true
		}
	}

	if m := numericAmountRe.FindString(text); m != "" {
		if amount, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64); err == nil {
			return amount, true
		}
	}

	if amount := ae.parseNumberWords(text); amount > 0 {
		return amount, true
	}

	return 0, false
}

func (ae *AmountExtractor) parseNumberWords(text string) float64 {
	total := 0.0
	current := 0.0

	for _, word := range strings.Fields(CleanText(text)) {
		val, exists := ae.numberWords[word]
		if !exists {
			continue
		}
		switch {
		case val >= 1000:
			if current == 0 {
				current = 1
			}
			total += current * val
			current = 0
		case val == 100:
			if current == 0 {
				current = 1
			}
			current *= val
		default:
			current += val
		}
	}

	return total + current
}

var defaultAmountExtractor = NewAmountExtractor()

// ParseAmount is ExtractAmount on a shared extractor.
func ParseAmount(text string) (float64, bool) {
	return defaultAmountExtractor.ExtractAmount(text)
}
