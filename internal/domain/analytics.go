package domain

import "time"

// EventType classifies an analytics event.
type EventType string

const (
	EventView     EventType = "VIEW"
	EventClick    EventType = "CLICK"
	EventAPICall  EventType = "API_CALL"
	EventSignup   EventType = "SIGNUP"
	EventPurchase EventType = "PURCHASE"
)

// Valid reports whether the event type is one of the known values.
func (t EventType) Valid() bool {
	switch t {
	case EventView, EventClick, EventAPICall, EventSignup, EventPurchase:
		return true
	}
	return false
}

// AnalyticsEvent is an append-only record tied to a tool. Events are never
// mutated or deleted; the dashboard read path aggregates them on demand.
type AnalyticsEvent struct {
	ID        string    `json:"id"` // UUID
	ToolID    string    `json:"tool_id"`
	UserID    string    `json:"user_id,omitempty"`
	Type      EventType `json:"event_type"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// APIUsage accumulates per-endpoint call counts for a tool by day.
type APIUsage struct {
	ID       string    `json:"id"` // UUID
	ToolID   string    `json:"tool_id"`
	Endpoint string    `json:"endpoint"`
	Count    int64     `json:"count"`
	Day      time.Time `json:"day"` // Truncated to midnight UTC
}

// DailyBreakdown is one day's event counts for the dashboard.
type DailyBreakdown struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Views     int64  `json:"views"`
	Clicks    int64  `json:"clicks"`
	APICalls  int64  `json:"api_calls"`
	Signups   int64  `json:"signups"`
	Purchases int64  `json:"purchases"`
}

// ReferrerCount is one entry of the referrer-domain histogram.
type ReferrerCount struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// EndpointUsage is the summed API usage for one endpoint over the range.
type EndpointUsage struct {
	Endpoint string `json:"endpoint"`
	Count    int64  `json:"count"`
}

// AnalyticsSummary is the dashboard payload for a tool and date range.
type AnalyticsSummary struct {
	ToolID        string           `json:"tool_id"`
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	TotalEvents   int64            `json:"total_events"`
	Daily         []DailyBreakdown `json:"daily"`
	TopReferrers  []ReferrerCount  `json:"top_referrers"`
	EndpointUsage []EndpointUsage  `json:"endpoint_usage"`
}
