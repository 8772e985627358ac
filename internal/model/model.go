package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk and CSV layout of an entry date.
const DateLayout = "2006-01-02"

// ReportID identifies a saved entry, formatted as YYYY-MM-NNNN.
type ReportID string

// Customer is a billable party with its ordered project list.
type Customer struct {
	Name        string   `json:"name"`
	Email       string   `json:"email,omitempty"`
	CompanyName string   `json:"companyName"`
	Projects    []string `json:"projects"`
}

// HasProject reports whether the customer owns project, ignoring case.
func (c Customer) HasProject(project string) bool {
	for _, p := range c.Projects {
		if strings.EqualFold(p, project) {
			return true
		}
	}
	return false
}

// Entry is a single saved work session. CustomerName and ProjectName are
// plain names and are not kept in sync with the directory.
type Entry struct {
	ID           ReportID `json:"id"`
	CustomerName string   `json:"customerName"`
	ProjectName  string   `json:"projectName"`
	Date         Date     `json:"date"`
	EntranceTime string   `json:"entranceTime"`
	ExitTime     string   `json:"exitTime"`
}

// Date is a calendar day without a time-of-day component.
type Date struct {
	time.Time
}

// NewDate returns the Date for year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as an ISO YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts YYYY-MM-DD as well as full RFC 3339 timestamps.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}
