package alerts

import "fmt"

// ViewType scopes alert queries by assignment.
type ViewType string

const (
	ViewTypeAll          ViewType = "ALL"
	ViewTypeAssignedToMe ViewType = "ASSIGNED_TO_ME"
	ViewTypeUnassigned   ViewType = "UNASSIGNED"
	ViewTypeMyTeam       ViewType = "MY_TEAM"
)

// ViewTypes lists the accepted values in documentation order.
var ViewTypes = []ViewType{ViewTypeAll, ViewTypeAssignedToMe, ViewTypeUnassigned, ViewTypeMyTeam}

// ParseViewType validates a raw view type value. The empty string maps to
// ALL.
func ParseViewType(raw string) (ViewType, error) {
	if raw == "" {
		return ViewTypeAll, nil
	}
	for _, vt := range ViewTypes {
		if string(vt) == raw {
			return vt, nil
		}
	}
	return "", fmt.Errorf("invalid view_type '%s', must be one of: ALL, ASSIGNED_TO_ME, UNASSIGNED, MY_TEAM", raw)
}

// Severity levels as reported by the backend.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
	SeverityInfo     = "INFO"
	SeverityUnknown  = "UNKNOWN"
)

// DetectionSource identifies the product that raised an alert.
type DetectionSource struct {
	Product string `json:"product,omitempty"`
	Vendor  string `json:"vendor,omitempty"`
}

// Asset is the resource an alert fired on.
type Asset struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// User identifies an assignee or note author.
type User struct {
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// Alert is the main alert record. Everything except ID is optional so that
// custom field selections decode cleanly.
type Alert struct {
	ID              string           `json:"id"`
	ExternalID      string           `json:"externalId,omitempty"`
	Severity        string           `json:"severity,omitempty"`
	Status          string           `json:"status,omitempty"`
	Name            string           `json:"name,omitempty"`
	Description     string           `json:"description,omitempty"`
	DetectedAt      string           `json:"detectedAt,omitempty"`
	FirstSeenAt     string           `json:"firstSeenAt,omitempty"`
	LastSeenAt      string           `json:"lastSeenAt,omitempty"`
	AnalystVerdict  string           `json:"analystVerdict,omitempty"`
	Classification  string           `json:"classification,omitempty"`
	ConfidenceLevel string           `json:"confidenceLevel,omitempty"`
	DataSources     []string         `json:"dataSources,omitempty"`
	DetectionSource *DetectionSource `json:"detectionSource,omitempty"`
	Asset           *Asset           `json:"asset,omitempty"`
	Assignee        *User            `json:"assignee,omitempty"`
	NoteExists      *bool            `json:"noteExists,omitempty"`
	Result          string           `json:"result,omitempty"`
	StorylineID     string           `json:"storylineId,omitempty"`
	TicketID        string           `json:"ticketId,omitempty"`
}

// Note is an analyst comment attached to an alert.
type Note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	Author    *User  `json:"author,omitempty"`
	AlertID   string `json:"alertId"`
}

// HistoryItemCreator identifies the user behind a history event. System
// events carry no creator.
type HistoryItemCreator struct {
	TypeName string `json:"__typename,omitempty"`
	UserID   string `json:"userId,omitempty"`
	UserType string `json:"userType,omitempty"`
}

// HistoryEvent is one entry in an alert's audit trail.
type HistoryEvent struct {
	CreatedAt string              `json:"createdAt"`
	EventText string              `json:"eventText"`
	EventType string              `json:"eventType"`
	ReportURL string              `json:"reportUrl,omitempty"`
	Creator   *HistoryItemCreator `json:"historyItemCreator,omitempty"`
}

// normalizeCreator drops creator stubs produced by non-matching union
// fragments, where only __typename (or nothing) comes back.
func (e *HistoryEvent) normalizeCreator() {
	c := e.Creator
	if c == nil {
		return
	}
	if c.UserID == "" && c.UserType == "" {
		e.Creator = nil
		return
	}
	if c.TypeName != "" && c.TypeName != "UserHistoryItemCreator" {
		e.Creator = nil
	}
}
