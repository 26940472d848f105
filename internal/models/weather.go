package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a measurement reading. The feed mostly carries numbers but sometimes
// puts placeholder text in the same slot, so a Value is either numeric or text.
// A Value parsed from feed text keeps that text for printing; the number is
// only used when encoding JSON.
type Value struct {
	num     float64
	text    string
	numeric bool
}

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value {
	return Value{num: f, numeric: true}
}

// TextValue returns a Value holding s verbatim, without numeric coercion.
func TextValue(s string) Value {
	return Value{text: s}
}

// ParseValue coerces s to a number when it is a finite decimal float literal
// and keeps it as text otherwise. Either way String returns s trimmed.
func ParseValue(s string) Value {
	if f, ok := parseDecimal(s); ok {
		return Value{num: f, text: strings.TrimSpace(s), numeric: true}
	}
	return TextValue(s)
}

func parseDecimal(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || strings.ContainsAny(t, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool {
	return v.numeric
}

// Float64 returns the numeric reading and true, or 0 and false for text.
func (v Value) Float64() (float64, bool) {
	return v.num, v.numeric
}

// Equal reports whether v and o hold the same kind and reading. Numbers
// compare by value, so "20.0" and "20" are equal.
func (v Value) Equal(o Value) bool {
	if v.numeric != o.numeric {
		return false
	}
	if v.numeric {
		return v.num == o.num
	}
	return v.text == o.text
}

// String returns the reading as the feed wrote it. Numbers built with
// NumberValue print in plain decimal notation.
func (v Value) String() string {
	if v.numeric && v.text == "" {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

// MarshalJSON emits a bare JSON number or string, never an object.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts a JSON number or string; strings go through ParseValue.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case float64:
		*v = NumberValue(x)
	case string:
		*v = ParseValue(x)
	default:
		return fmt.Errorf("value: want number or string, got %s", data)
	}
	return nil
}

// Measurement is a reading with its unit metadata. Nil fields are omitted when encoded.
type Measurement struct {
	Value    *Value  `json:"value,omitempty"`
	UnitType *string `json:"unitType,omitempty"`
	Units    *string `json:"units,omitempty"`
}

// Wind groups the wind readings of an observation.
type Wind struct {
	Speed     *Measurement `json:"speed,omitempty"`
	Gust      *Measurement `json:"gust,omitempty"`
	Direction *string      `json:"direction,omitempty"`
	Bearing   *Measurement `json:"bearing,omitempty"`
}

// CurrentConditions is the normalized observation for one station.
// Timestamp is the UTC instant derived from the feed's local date/time records.
type CurrentConditions struct {
	Temperature      *Measurement `json:"temperature,omitempty"`
	Dewpoint         *Measurement `json:"dewpoint,omitempty"`
	Humidex          *Measurement `json:"humidex,omitempty"`
	Pressure         *Measurement `json:"pressure,omitempty"`
	Visibility       *Measurement `json:"visibility,omitempty"`
	WindChill        *Measurement `json:"windChill,omitempty"`
	RelativeHumidity *Measurement `json:"relativeHumidity,omitempty"`
	Wind             *Wind        `json:"wind,omitempty"`
	Timestamp        *time.Time   `json:"timestamp,omitempty"`
}

// WeatherDocument is the whole fetched document; only current conditions are kept.
type WeatherDocument struct {
	CurrentConditions CurrentConditions `json:"currentConditions"`
}
