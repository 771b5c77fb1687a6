package discount

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoObservation means a feed parsed but held no usable rate.
var ErrNoObservation = errors.New("no rate observation in feed")

var hundred = decimal.NewFromInt(100)

// Observation is one dated yield, as a fraction (0.0215 for 2.15%).
type Observation struct {
	Date time.Time
	Rate decimal.Decimal
}

type treasuryFeed struct {
	Entries []struct {
		Properties struct {
			Date  string `xml:"NEW_DATE"`
			Yield string `xml:"TC_20YEAR"`
		} `xml:"content>properties"`
	} `xml:"entry"`
}

// ParseTreasuryXML returns the latest 20-year real yield in a Treasury
// daily real yield curve Atom feed.
func ParseTreasuryXML(data []byte) (Observation, error) {
	var feed treasuryFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return Observation{}, fmt.Errorf("failed to parse treasury feed: %w", err)
	}

	var latest Observation
	found := false
	for _, e := range feed.Entries {
		yield := strings.TrimSpace(e.Properties.Yield)
		if yield == "" {
			continue
		}
		rate, err := decimal.NewFromString(yield)
		if err != nil {
			continue
		}
		date, err := parseFeedDate(e.Properties.Date)
		if err != nil {
			continue
		}
		if !found || date.After(latest.Date) {
			latest = Observation{Date: date, Rate: rate.Div(hundred)}
			found = true
		}
	}
	if !found {
		return Observation{}, ErrNoObservation
	}
	return latest, nil
}

// ParseFREDCSV returns the last numeric row of a FRED graph CSV download.
// Missing observations are published as "." and skipped.
func ParseFREDCSV(data []byte) (Observation, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var latest Observation
	found := false
	header := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Observation{}, fmt.Errorf("failed to parse FRED csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 {
			continue
		}
		value := strings.TrimSpace(record[1])
		if value == "" || value == "." {
			continue
		}
		rate, err := decimal.NewFromString(value)
		if err != nil {
			continue
		}
		date, err := parseFeedDate(record[0])
		if err != nil {
			continue
		}
		latest = Observation{Date: date, Rate: rate.Div(hundred)}
		found = true
	}
	if !found {
		return Observation{}, ErrNoObservation
	}
	return latest, nil
}

func parseFeedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
