package polymarket

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Market is a gamma API market. Only the fields used for filtering are
// decoded; the full upstream object is kept and re-encoded verbatim.
type Market struct {
	ID          string
	Slug        string
	Question    string
	ConditionID string
	Volume      decimal.Decimal
	Active      bool
	Closed      bool
	EndDate     string

	raw json.RawMessage
}

// UnmarshalJSON keeps the raw object and decodes filter fields leniently.
func (m *Market) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID          json.RawMessage `json:"id"`
		Slug        string          `json:"slug"`
		Question    string          `json:"question"`
		ConditionID string          `json:"conditionId"`
		Volume      json.RawMessage `json:"volume"`
		Active      bool            `json:"active"`
		Closed      bool            `json:"closed"`
		EndDate     string          `json:"endDate"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*m = Market{
		ID:          scalarString(wire.ID),
		Slug:        wire.Slug,
		Question:    wire.Question,
		ConditionID: wire.ConditionID,
		Volume:      parseVolume(wire.Volume),
		Active:      wire.Active,
		Closed:      wire.Closed,
		EndDate:     wire.EndDate,
		raw:         append(json.RawMessage(nil), data...),
	}
	return nil
}

// MarshalJSON returns the upstream object unchanged.
func (m Market) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	return json.Marshal(map[string]interface{}{
		"id":          m.ID,
		"slug":        m.Slug,
		"question":    m.Question,
		"conditionId": m.ConditionID,
		"volume":      m.Volume.String(),
		"active":      m.Active,
		"closed":      m.Closed,
		"endDate":     m.EndDate,
	})
}

// Expired reports whether the market's end date is at or before now.
// A missing end date never expires; an unparsable one counts as expired.
func (m Market) Expired(now time.Time) bool {
	if m.EndDate == "" {
		return false
	}
	end, err := parseTime(m.EndDate)
	if err != nil {
		return true
	}
	return !end.After(now)
}

// FilterActive keeps active, open, unexpired markets whose volume exceeds
// minVolume, sorted by volume descending and truncated to limit.
func FilterActive(markets []Market, now time.Time, minVolume decimal.Decimal, limit int) []Market {
	out := make([]Market, 0, len(markets))
	for _, m := range markets {
		if !m.Active || m.Closed || m.Expired(now) || !m.Volume.GreaterThan(minVolume) {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Volume.GreaterThan(out[j].Volume)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func parseVolume(raw json.RawMessage) decimal.Decimal {
	s := scalarString(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// scalarString renders a JSON string or number as text.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05Z0700", "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
