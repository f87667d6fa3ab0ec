package control

import "time"

// Method names exposed by the daemon's control endpoint.
const (
	MethodRefresh = "earth.refresh"
	MethodStatus  = "earth.status"
	MethodHistory = "earth.history"
	MethodVersion = "earth.version"
)

// RefreshResult is the response for earth.refresh.
type RefreshResult struct {
	Started bool   `json:"started"`
	Message string `json:"message,omitempty"`
}

// StatusResult is the response for earth.status.
type StatusResult struct {
	State       string     `json:"state"`
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`
	NextFire    *time.Time `json:"nextFire,omitempty"`
	LastMessage string     `json:"lastMessage,omitempty"`
}

// HistoryParams is the input for earth.history.
type HistoryParams struct {
	Limit int `json:"limit,omitempty"`
}

// CycleEntry is a single entry in the earth.history response.
type CycleEntry struct {
	StartedAt time.Time `json:"startedAt"`
	Outcome   string    `json:"outcome"`
	Message   string    `json:"message,omitempty"`
}

// HistoryResult is the response for earth.history.
type HistoryResult struct {
	Cycles []CycleEntry `json:"cycles"`
}

// VersionResult is the response for earth.version.
type VersionResult struct {
	Version string `json:"version"`
}
