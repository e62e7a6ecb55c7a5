package models

import "time"

// Document is the persistence row backing the document store: one JSON
// document per path, paths shaped as "root/child".
type Document struct {
	Path      string `gorm:"primaryKey"`
	Doc       []byte
	UpdatedAt time.Time
}

// SystemStatus is written by the embedded box and read-only for everyone else.
type SystemStatus struct {
	BatteryPercentage int `json:"battery_percentage"`
}

type Medicine struct {
	Name    string `json:"name"`
	Tablets int    `json:"tablets"`
}

type Compartment struct {
	Time          string     `json:"time"`
	Buzzer        bool       `json:"buzzer"`
	MedicineTaken bool       `json:"medicine_taken"`
	Missed        bool       `json:"missed"`
	LastTakenTime string     `json:"last_taken_time,omitempty"`
	LastUpdated   int64      `json:"last_updated,omitempty"`
	Medicines     []Medicine `json:"medicines"`
}

// ScheduleInput is the caregiver's edit-form payload before composition into
// a Compartment document.
type ScheduleInput struct {
	Hour      int        `json:"hour"`
	Minute    int        `json:"minute"`
	Meridiem  string     `json:"meridiem"`
	Buzzer    bool       `json:"buzzer"`
	Medicines []Medicine `json:"medicines"`
}

// PushSubscription is one browser push registration, stored as a document
// under the push_subscriptions root.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

const (
	BadgeMissed  = "Missed"
	BadgeTaken   = "Taken"
	BadgePending = "Pending"
)

// CompartmentSummary is the dashboard card render model.
type CompartmentSummary struct {
	ID         int    `json:"id"`
	TimeLabel  string `json:"time_label"`
	Badge      string `json:"badge"`
	StatusLine string `json:"status_line"`
}

// BatteryView is the battery indicator render model.
type BatteryView struct {
	Label      string `json:"label"`
	Percentage int    `json:"percentage"`
	Low        bool   `json:"low"`
}
