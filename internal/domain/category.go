package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IssueCategory enumerates the complaint categories citizens can report.
type IssueCategory string

const (
	CategoryRoadRepair      IssueCategory = "Road Repair"
	CategoryWaterSupply     IssueCategory = "Water Supply"
	CategoryElectricity     IssueCategory = "Electricity"
	CategoryWasteManagement IssueCategory = "Waste Management"
	CategoryStreetLighting  IssueCategory = "Street Lighting"
	CategoryDrainage        IssueCategory = "Drainage"
	CategoryParkMaintenance IssueCategory = "Park Maintenance"
	CategoryTrafficIssues   IssueCategory = "Traffic Issues"
)

// Categories lists every known category in display order.
func Categories() []IssueCategory {
	return []IssueCategory{
		CategoryRoadRepair,
		CategoryWaterSupply,
		CategoryElectricity,
		CategoryWasteManagement,
		CategoryStreetLighting,
		CategoryDrainage,
		CategoryParkMaintenance,
		CategoryTrafficIssues,
	}
}

// SLAUnit is the time unit of an SLA target.
type SLAUnit string

const (
	SLAUnitHours SLAUnit = "hours"
	SLAUnitDays  SLAUnit = "days"
)

// ErrInvalidSLAFormat is returned when an SLA target string cannot be parsed.
var ErrInvalidSLAFormat = errors.New("invalid sla target format")

// SLATarget is a structured resolution deadline such as "8 hours".
// It is parsed once at issue creation and never re-derived from strings.
type SLATarget struct {
	Amount int     `json:"amount"`
	Unit   SLAUnit `json:"unit"`
}

// IsZero reports whether the target was never set or failed to parse.
func (t SLATarget) IsZero() bool {
	return t.Amount <= 0 || t.Unit == ""
}

// Duration converts the target into a time.Duration.
func (t SLATarget) Duration() time.Duration {
	switch t.Unit {
	case SLAUnitHours:
		return time.Duration(t.Amount) * time.Hour
	case SLAUnitDays:
		return time.Duration(t.Amount) * 24 * time.Hour
	default:
		return 0
	}
}

// String renders the target in the human form used across the console.
func (t SLATarget) String() string {
	if t.IsZero() {
		return ""
	}
	unit := string(t.Unit)
	if t.Amount == 1 {
		unit = strings.TrimSuffix(unit, "s")
	}
	return fmt.Sprintf("%d %s", t.Amount, unit)
}

// MarshalJSON emits the human form, e.g. "24 hours".
func (t SLATarget) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON parses the human form back into the structured target.
func (t *SLATarget) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	if raw == "" {
		*t = SLATarget{}
		return nil
	}
	parsed, err := ParseSLATarget(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseSLATarget parses strings like "4 hours", "72 hours" or "2 days".
func ParseSLATarget(raw string) (SLATarget, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) != 2 {
		return SLATarget{}, fmt.Errorf("%w: %q", ErrInvalidSLAFormat, raw)
	}
	amount, err := strconv.Atoi(fields[0])
	if err != nil || amount <= 0 {
		return SLATarget{}, fmt.Errorf("%w: %q", ErrInvalidSLAFormat, raw)
	}
	switch strings.ToLower(fields[1]) {
	case "hour", "hours":
		return SLATarget{Amount: amount, Unit: SLAUnitHours}, nil
	case "day", "days":
		return SLATarget{Amount: amount, Unit: SLAUnitDays}, nil
	default:
		return SLATarget{}, fmt.Errorf("%w: %q", ErrInvalidSLAFormat, raw)
	}
}

// CategoryPolicy maps a category to its SLA target and default department.
// Targets are stamped onto issues at creation; later edits to the policy
// table never change existing issues.
type CategoryPolicy struct {
	Category    IssueCategory `json:"category"`
	SLATarget   SLATarget     `json:"slaTarget"`
	DefaultDept string        `json:"defaultDept"`
}
