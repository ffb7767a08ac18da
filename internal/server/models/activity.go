package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/common"
)

// ActivityKind is the event type of an activity log entry.
type ActivityKind string

const (
	ActivityLogin  ActivityKind = "login"
	ActivityLogout ActivityKind = "logout"
)

func (k ActivityKind) Valid() bool {
	return k == ActivityLogin || k == ActivityLogout
}

// ActivityLogEntry is an immutable login/logout record. CreatedAt is set by
// the store.
type ActivityLogEntry struct {
	ID        int64
	UserID    string
	Kind      ActivityKind
	CreatedAt time.Time
}

// DailyCount is one bucket of the activity chart: how many events of Kind
// happened on Day (UTC midnight).
type DailyCount struct {
	Day   time.Time
	Kind  ActivityKind
	Count int64
}

func (d DailyCount) String() string {
	return fmt.Sprintf("%s %s %d", d.Day.Format(common.DayLayout), d.Kind, d.Count)
}

type dailyCountJSON struct {
	Day   string       `json:"day"`
	Kind  ActivityKind `json:"activity_type"`
	Count int64        `json:"count"`
}

// MarshalJSON renders Day as YYYY-MM-DD in UTC.
func (d DailyCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(dailyCountJSON{Day: d.Day.UTC().Format(common.DayLayout), Kind: d.Kind, Count: d.Count})
}
