package api

// CountResponse carries the persisted reset epoch.
type CountResponse struct {
	Epoch int64 `json:"epoch"`
}

// ResetRequest asks the server to persist a new reset epoch.
type ResetRequest struct {
	Epoch int64 `json:"epoch"`
}

// ServerInfo is the status payload for monitoring and CLI display.
type ServerInfo struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	StartTime    string `json:"start_time"`
	Version      string `json:"version"`
	Epoch        int64  `json:"epoch"`
	Elapsed      string `json:"elapsed"`
	StateVersion uint64 `json:"state_version"`
}
