package monitor

import "time"

// ComponentStatus is the last observed state of one dependency.
type ComponentStatus struct {
	Online   bool   `json:"online"`
	Required bool   `json:"required"`
	Error    string `json:"error,omitempty"`
}

type Status struct {
	Components map[string]ComponentStatus `json:"components"`
	LastCheck  time.Time                  `json:"last_check"`
}

// Healthy reports whether every required component is online.
func (s Status) Healthy() bool {
	for _, c := range s.Components {
		if c.Required && !c.Online {
			return false
		}
	}
	return true
}
