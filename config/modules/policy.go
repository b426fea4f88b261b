package modules

import (
	"time"
)

type PolicyMode string

const (
	PolicyModeSchedule PolicyMode = "schedule"
	PolicyModeDate     PolicyMode = "date"
)

// PolicyConfig defines a named showable item.
type PolicyConfig struct {
	// Key is the state key, defaults to the policy name
	Key                          string        `yaml:"key" json:"key"`
	Mode                         PolicyMode    `yaml:"mode" json:"mode" default:"schedule" validate:"oneof=schedule date"`
	MinimumTimeBetweenShows      time.Duration `yaml:"minimum_time_between_shows" json:"minimum_time_between_shows" validate:"gte=0"`
	MinimumTimeSinceFirstRequest time.Duration `yaml:"minimum_time_since_first_request" json:"minimum_time_since_first_request" validate:"gte=0"`
}
