package gd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Activity represents one recorded exercise session from Garmin Connect.
// The identifier is absent in some malformed service responses; Category is
// empty when the record carries no type descriptor.
type Activity struct {
	ID       *int64
	Name     string
	Category string
	Raw      json.RawMessage
}

// activityRecord mirrors the fields of the service's JSON representation
// that the exporter cares about
type activityRecord struct {
	ID   *int64 `json:"activityId"`
	Name string `json:"activityName"`
	Type *struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`
}

// DecodeActivities maps one page of the activity listing onto Activity
// records, preserving order and the raw form of each record.
func DecodeActivities(data []byte) ([]Activity, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode activity list: %w", err)
	}

	activities := make([]Activity, 0, len(raws))
	for _, raw := range raws {
		var rec activityRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode activity record: %w", err)
		}

		activity := Activity{
			ID:   rec.ID,
			Name: rec.Name,
			Raw:  raw,
		}
		if rec.Type != nil {
			activity.Category = rec.Type.TypeKey
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

// IDString returns the decimal identifier, or "unknown" when absent.
func (a Activity) IDString() string {
	if a.ID == nil {
		return "unknown"
	}
	return strconv.FormatInt(*a.ID, 10)
}

// RawPreview returns a truncated serialized form of the record for log
// messages about malformed activities. Truncation happens on rune
// boundaries so names like "Zürich" never yield invalid UTF-8.
func (a Activity) RawPreview(limit int) string {
	preview := string(a.Raw)
	if preview == "" {
		preview = fmt.Sprintf(`{"activityName":%q}`, a.Name)
	}
	if len(preview) <= limit {
		return preview
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(preview[cut]) {
		cut--
	}
	return preview[:cut] + "..."
}
