package transfer

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// QueueSettingsUpdate is the raw settings form. It is sanitized, never
// rejected.
type QueueSettingsUpdate struct {
	Interval      int         `json:"interval"`
	Days          []int       `json:"days"`
	Hours         *HoursInput `json:"hours"`
	RestrictHours bool        `json:"restrict_hours"`
}

type HoursInput struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// UnmarshalJSON accepts numbers or numeric strings ("09") for every numeric
// field. A field of the wrong shape is left at its zero value instead of
// failing the whole form.
func (u *QueueSettingsUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = QueueSettingsUpdate{}

	if n, ok := lenientInt(raw["interval"]); ok {
		u.Interval = n
	}

	var days []json.RawMessage
	if json.Unmarshal(raw["days"], &days) == nil {
		for _, d := range days {
			if n, ok := lenientInt(d); ok {
				u.Days = append(u.Days, n)
			}
		}
	}

	var hours map[string]json.RawMessage
	if json.Unmarshal(raw["hours"], &hours) == nil {
		start, okStart := lenientInt(hours["start"])
		end, okEnd := lenientInt(hours["end"])
		if okStart && okEnd {
			u.Hours = &HoursInput{Start: start, End: end}
		}
	}

	u.RestrictHours = lenientBool(raw["restrict_hours"])
	return nil
}

func lenientValue(raw json.RawMessage) (any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

func lenientInt(raw json.RawMessage) (int, bool) {
	v, ok := lenientValue(raw)
	if !ok {
		return 0, false
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// lenientBool reads true, a non-zero number, or a checkbox style string.
func lenientBool(raw json.RawMessage) bool {
	v, ok := lenientValue(raw)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		n, err := t.Float64()
		return err == nil && n != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}

type TimezoneUpdate struct {
	Timezone string `json:"timezone" validate:"required,timezone"`
}
