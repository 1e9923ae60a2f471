package activity

import (
	"strings"
	"time"

	settings "github.com/goliatone/go-settings"
)

const (
	VerbSettingApplied = "settings.applied"
	VerbSectionReset   = "settings.reset"
	VerbSectionLoaded  = "settings.loaded"

	ObjectSetting = "setting"
	ObjectSection = "settings.section"
)

// SettingEventInput describes a committed setting or a section-wide action.
type SettingEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Section    string
	Key        string
	Kind       settings.Kind
	Value      any
	Previous   any
	SnapshotID string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ItemInput fills the setting fields of an input from item.
func ItemInput(section, key string, item *settings.Item) SettingEventInput {
	return SettingEventInput{
		Section:  section,
		Key:      key,
		Kind:     item.Kind(),
		Value:    item.Value(),
		Previous: item.Previous(),
	}
}

// BuildSettingAppliedEvent describes a setting whose staged value was committed.
// The object id is "<section>/<key>".
func BuildSettingAppliedEvent(input SettingEventInput) Event {
	objectID := strings.TrimSpace(input.Key)
	if section := strings.TrimSpace(input.Section); section != "" {
		objectID = section + "/" + objectID
	}
	metadata := baseMetadata(input)
	metadata["key"] = input.Key
	metadata["kind"] = input.Kind.String()
	if input.Value != nil {
		metadata["value"] = input.Value
	}
	if input.Previous != nil {
		metadata["previous"] = input.Previous
	}
	return buildEvent(VerbSettingApplied, ObjectSetting, objectID, input, metadata)
}

// BuildSectionResetEvent describes a section restored to its defaults.
func BuildSectionResetEvent(input SettingEventInput) Event {
	return buildEvent(VerbSectionReset, ObjectSection, input.Section, input, baseMetadata(input))
}

// BuildSectionLoadedEvent describes a section read from a backend.
func BuildSectionLoadedEvent(input SettingEventInput) Event {
	return buildEvent(VerbSectionLoaded, ObjectSection, input.Section, input, baseMetadata(input))
}

func baseMetadata(input SettingEventInput) map[string]any {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	if input.Section != "" {
		metadata["section"] = input.Section
	}
	if input.SnapshotID != "" {
		metadata["snapshot_id"] = input.SnapshotID
	}
	return metadata
}

func buildEvent(verb, objectType, objectID string, input SettingEventInput, metadata map[string]any) Event {
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   strings.TrimSpace(objectID),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
