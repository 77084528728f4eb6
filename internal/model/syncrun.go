package model

import "time"

const (
	RunStatusRunning  = "RUNNING"
	RunStatusFinished = "FINISHED"
)

type SyncFilters struct {
	MenuType  MenuType `json:"menu_type,omitempty"`
	WeekRange string   `json:"week_range,omitempty"`
}

type WeekReport struct {
	Label    string `json:"label"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

type SyncReport struct {
	RunID    string       `json:"run_id"`
	Instance string       `json:"instance"`
	Weeks    []WeekReport `json:"weeks"`
}

func (r SyncReport) Created() int {
	var n int
	for _, w := range r.Weeks {
		n += w.Created
	}
	return n
}

type SyncRun struct {
	ID         string     `json:"id"`
	Instance   string     `json:"instance"`
	Status     string     `json:"status"`
	Created    int        `json:"created"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
