package activity

import (
	"strings"

	"github.com/gosuda/trackly/internal/domain"
)

// Fallbacks used when an entry is missing the field a label needs.
const (
	SomeoneActor      = "Someone"
	UnnamedEntity     = "(unnamed)"
	GenericEntityType = "item"
	GenericIcon       = "activity"
)

// Label is the display sentence and icon identifier for an entry.
type Label struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// presentation is one row of the action table. Templates use {actor},
// {type} and {entity} placeholders.
type presentation struct {
	template string
	icon     string
}

var presentations = map[domain.Action]presentation{ //nolint:gochecknoglobals // static lookup table
	domain.ActionCreated:         {"{actor} created {type} {entity}", "plus-circle"},
	domain.ActionUpdated:         {"{actor} updated {type} {entity}", "edit"},
	domain.ActionDeleted:         {"{actor} deleted {type} {entity}", "trash"},
	domain.ActionStatusChanged:   {"{actor} changed the status of {type} {entity}", "refresh-cw"},
	domain.ActionAssigned:        {"{actor} assigned {type} {entity}", "user-check"},
	domain.ActionUnassigned:      {"{actor} unassigned {type} {entity}", "user-x"},
	domain.ActionCommented:       {"{actor} commented on {type} {entity}", "message-square"},
	domain.ActionUploaded:        {"{actor} uploaded a file to {type} {entity}", "upload"},
	domain.ActionSprintStarted:   {"{actor} started sprint {entity}", "play-circle"},
	domain.ActionSprintCompleted: {"{actor} completed sprint {entity}", "check-circle"},
	domain.ActionMemberAdded:     {"{actor} added a member to {type} {entity}", "user-plus"},
	domain.ActionMemberRemoved:   {"{actor} removed a member from {type} {entity}", "user-minus"},
}

// KnownActions returns the actions that have a dedicated label.
func KnownActions() []domain.Action {
	actions := make([]domain.Action, 0, len(presentations))
	for a := range presentations {
		actions = append(actions, a)
	}
	return actions
}

// Describe returns the label for e. It never fails: unknown actions get a
// generic sentence and icon, missing names fall back to placeholders.
func Describe(e *domain.LogEntry) Label {
	if e == nil {
		e = &domain.LogEntry{}
	}

	actor := ActorDisplayName(e)
	entityType := e.EntityType
	if entityType == "" {
		entityType = GenericEntityType
	}
	entity := EntityRef(e)

	p, ok := presentations[e.Action]
	if !ok {
		action := string(e.Action)
		if action == "" {
			action = "an unknown action"
		}
		p = presentation{
			template: "{actor} performed " + action + " on {type} {entity}",
			icon:     GenericIcon,
		}
	}

	r := strings.NewReplacer("{actor}", actor, "{type}", entityType, "{entity}", entity)
	return Label{Text: r.Replace(p.template), Icon: p.icon}
}

// ActorDisplayName returns the actor name snapshot, or SomeoneActor.
func ActorDisplayName(e *domain.LogEntry) string {
	if name := strings.TrimSpace(e.ActorName); name != "" {
		return name
	}
	return SomeoneActor
}

// EntityRef prefers the entity name, then the raw entity ID.
func EntityRef(e *domain.LogEntry) string {
	if e.EntityName != "" {
		return e.EntityName
	}
	if e.EntityID != "" {
		return e.EntityID
	}
	return UnnamedEntity
}
