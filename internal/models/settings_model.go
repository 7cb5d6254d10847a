package models

// QueueSettings is the persisted `ptq_settings` option.
type QueueSettings struct {
	Interval uint        `json:"interval,omitempty"` // minutes
	Days     []int       `json:"days,omitempty"`
	Hours    *HoursRange `json:"hours,omitempty"`
}

type HoursRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

const (
	OptionQueueSettings = "ptq_settings"
	OptionTimezone      = "timezone_string"
)
