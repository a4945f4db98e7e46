package comment

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AnonymousName is used when a commenter has neither a pseudonym nor a name.
const AnonymousName = "Anonymous"

// ZeroPosition is the size reported for commenters without a listed position.
const ZeroPosition = "0"

// Raw is a comment as received from the client or the gamma API.
// Every nested field is optional and decoding never fails on shape mismatches:
// a malformed element decodes as an empty comment.
type Raw struct {
	ID      string   `json:"id,omitempty"`
	Body    string   `json:"body"`
	Profile *Profile `json:"profile,omitempty"`
}

// Profile is the commenter's public profile.
type Profile struct {
	Pseudonym string     `json:"pseudonym,omitempty"`
	Name      string     `json:"name,omitempty"`
	Positions []Position `json:"positions,omitempty"`
}

// Position is one holding listed on a profile.
type Position struct {
	PositionSize Size `json:"positionSize"`
}

// Size is a position size. The gamma API sends it as a decimal string,
// some clients send a bare number; both decode to the textual form.
type Size string

// UnmarshalJSON accepts strings and numbers. Anything else decodes as empty.
func (s *Size) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = ""

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Size(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&num); err == nil {
		*s = Size(num.String())
	}
	return nil
}

// HasPositions reports whether the profile lists at least one position,
// regardless of the size of that position.
func (r Raw) HasPositions() bool {
	return r.Profile != nil && len(r.Profile.Positions) > 0
}

// UnmarshalJSON decodes leniently. Fields with unexpected types are dropped.
func (r *Raw) UnmarshalJSON(data []byte) error {
	*r = Raw{}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil
	}

	r.ID = lenientString(wire["id"])
	r.Body = lenientString(wire["body"])

	if raw, ok := wire["profile"]; ok {
		var p Profile
		if err := json.Unmarshal(raw, &p); err == nil && !isNull(raw) {
			r.Profile = &p
		}
	}
	return nil
}

// UnmarshalJSON decodes leniently. Fields with unexpected types are dropped.
func (p *Profile) UnmarshalJSON(data []byte) error {
	*p = Profile{}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	p.Pseudonym = lenientString(wire["pseudonym"])
	p.Name = lenientString(wire["name"])

	var positions []json.RawMessage
	if err := json.Unmarshal(wire["positions"], &positions); err == nil {
		p.Positions = make([]Position, 0, len(positions))
		for _, raw := range positions {
			var pos Position
			_ = json.Unmarshal(raw, &pos)
			p.Positions = append(p.Positions, pos)
		}
	}
	return nil
}

func lenientString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// FromJSON decodes upstream comment objects. It never fails.
func FromJSON(items []json.RawMessage) []Raw {
	out := make([]Raw, len(items))
	for i, item := range items {
		_ = json.Unmarshal(item, &out[i])
	}
	return out
}
