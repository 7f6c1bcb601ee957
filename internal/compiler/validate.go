package compiler

import (
	"fmt"
	"sort"

	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/timeline"
)

// Validation error codes (E100-E199)
const (
	ErrUnknownEventType     = "E101" // event type has no binding
	ErrUnknownActionList    = "E102" // event names a missing action list
	ErrUnknownAutoStop      = "E103" // autoStopEventId names a missing event
	ErrUnknownParamGroup    = "E104" // continuous config names a missing parameter group
	ErrIDMismatch           = "E105" // explicit id differs from its map key
	ErrEmptyGroup           = "E106" // action item group has no items
	ErrUnknownActionType    = "E107" // action type is neither built in nor a plugin
	ErrUnknownEasing        = "E108" // easing name not in the table
	ErrBadCustomEasing      = "E109" // custom easing is not four numbers
	ErrUnknownMediaQuery    = "E110" // event names an undefined breakpoint
	ErrMissingTarget        = "E111" // action item has no target
	ErrActionKindMismatch   = "E112" // continuous action on a trigger event or the reverse
	ErrBadHostElement       = "E113" // host element parent unknown or id repeated
	ErrDuplicateMediaQuery  = "E114" // breakpoint key declared twice
	ErrNoContinuousGroups   = "E115" // continuous event drives nothing
	ErrDuplicateActionItems = "E116" // action item id repeated within a list
)

// ValidationError is one semantic problem in a compiled model.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks cross references and value ranges the schema cannot
// express. Returns all errors found (does not fail-fast), ordered by event
// id, then list id.
func Validate(m *ir.Model) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	breakpoints := map[string]bool{}
	for i, q := range m.MediaQueries {
		if breakpoints[q.Key] {
			add(ErrDuplicateMediaQuery, fmt.Sprintf("mediaQueries[%d].key", i), "breakpoint %q declared twice", q.Key)
		}
		breakpoints[q.Key] = true
	}

	for _, id := range sortedIDs(m.Events) {
		ev := m.Events[id]
		field := "events." + id
		if ev.ID != id {
			add(ErrIDMismatch, field+".id", "id %q differs from key %q", ev.ID, id)
		}
		if !ev.EventTypeID.IsKnown() {
			add(ErrUnknownEventType, field+".eventTypeId", "unknown event type %q", ev.EventTypeID)
		}
		for _, key := range ev.MediaQueries {
			if !breakpoints[key] {
				add(ErrUnknownMediaQuery, field+".mediaQueries", "breakpoint %q is not defined", key)
			}
		}

		cfg := ev.Action.Config
		list, ok := m.ActionLists[cfg.ActionListID]
		if !ok {
			add(ErrUnknownActionList, field+".action.config.actionListId", "action list %q not found", cfg.ActionListID)
		}
		if cfg.AutoStopEventID != "" {
			if _, ok := m.Events[cfg.AutoStopEventID]; !ok {
				add(ErrUnknownAutoStop, field+".action.config.autoStopEventId", "event %q not found", cfg.AutoStopEventID)
			}
		}

		continuous := ev.Action.IsContinuous()
		if ev.EventTypeID.IsKnown() && continuous && !ev.EventTypeID.IsContinuousDriver() {
			add(ErrActionKindMismatch, field+".action.actionTypeId", "%s cannot drive continuous groups", ev.EventTypeID)
		}
		if !continuous && ev.EventTypeID.IsContinuousDriver() {
			add(ErrActionKindMismatch, field+".action.actionTypeId", "%s only drives continuous groups", ev.EventTypeID)
		}
		if continuous {
			if len(ev.Config.Continuous) == 0 {
				add(ErrNoContinuousGroups, field+".config.continuous", "continuous action drives no parameter groups")
			}
			for i, c := range ev.Config.Continuous {
				if !ok {
					break
				}
				if _, found := list.ParameterGroup(c.ContinuousParameterGroupID); !found {
					add(ErrUnknownParamGroup, fmt.Sprintf("%s.config.continuous[%d]", field, i),
						"parameter group %q not found in list %q", c.ContinuousParameterGroupID, list.ID)
				}
			}
		}
	}

	for _, id := range sortedIDs(m.ActionLists) {
		errs = append(errs, validateList(id, m.ActionLists[id])...)
	}

	if m.Host != nil {
		errs = append(errs, validateHost(m.Host)...)
	}
	return errs
}

func validateList(id string, l ir.ActionList) []ValidationError {
	var errs []ValidationError
	field := "actionLists." + id
	if l.ID != id {
		errs = append(errs, ValidationError{Field: field + ".id", Code: ErrIDMismatch,
			Message: fmt.Sprintf("id %q differs from key %q", l.ID, id)})
	}

	seen := map[string]bool{}
	check := func(path string, item ir.ActionItem) {
		if seen[item.ID] {
			errs = append(errs, ValidationError{Field: path + ".id", Code: ErrDuplicateActionItems,
				Message: fmt.Sprintf("action item %q repeated", item.ID)})
		}
		seen[item.ID] = true
		errs = append(errs, validateItem(path, item)...)
	}

	for gi, g := range l.ActionItemGroups {
		path := fmt.Sprintf("%s.actionItemGroups[%d]", field, gi)
		if len(g.ActionItems) == 0 {
			errs = append(errs, ValidationError{Field: path, Code: ErrEmptyGroup, Message: "group has no action items"})
		}
		for ii, item := range g.ActionItems {
			check(fmt.Sprintf("%s.actionItems[%d]", path, ii), item)
		}
	}
	for pi, pg := range l.ContinuousParameterGroups {
		for ai, ag := range pg.ContinuousActionGroups {
			path := fmt.Sprintf("%s.continuousParameterGroups[%d].continuousActionGroups[%d]", field, pi, ai)
			if len(ag.ActionItems) == 0 {
				errs = append(errs, ValidationError{Field: path, Code: ErrEmptyGroup, Message: "keyframe has no action items"})
			}
			// The same item id appears at every keyframe.
			for ii, item := range ag.ActionItems {
				errs = append(errs, validateItem(fmt.Sprintf("%s.actionItems[%d]", path, ii), item)...)
			}
		}
	}
	return errs
}

func validateItem(path string, item ir.ActionItem) []ValidationError {
	var errs []ValidationError
	if !item.ActionTypeID.IsKnown() {
		errs = append(errs, ValidationError{Field: path + ".actionTypeId", Code: ErrUnknownActionType,
			Message: fmt.Sprintf("unknown action type %q", item.ActionTypeID)})
	}
	cfg := item.Config
	if cfg.Target.IsZero() {
		errs = append(errs, ValidationError{Field: path + ".config.target", Code: ErrMissingTarget,
			Message: "action item has no target"})
	}
	if cfg.Easing != "" && !timeline.KnownEasing(cfg.Easing) {
		errs = append(errs, ValidationError{Field: path + ".config.easing", Code: ErrUnknownEasing,
			Message: fmt.Sprintf("unknown easing %q", cfg.Easing)})
	}
	if cfg.CustomEasing != nil && len(cfg.CustomEasing) != 4 {
		errs = append(errs, ValidationError{Field: path + ".config.customEasing", Code: ErrBadCustomEasing,
			Message: fmt.Sprintf("custom easing needs 4 control values, got %d", len(cfg.CustomEasing))})
	}
	return errs
}

func validateHost(h *ir.HostSpec) []ValidationError {
	var errs []ValidationError
	ids := map[string]bool{}
	for i, el := range h.Elements {
		field := fmt.Sprintf("host.elements[%d]", i)
		if ids[el.ID] {
			errs = append(errs, ValidationError{Field: field + ".id", Code: ErrBadHostElement,
				Message: fmt.Sprintf("element %q declared twice", el.ID)})
		}
		if el.Parent != "" && !ids[el.Parent] {
			errs = append(errs, ValidationError{Field: field + ".parent", Code: ErrBadHostElement,
				Message: fmt.Sprintf("parent %q must be declared before %q", el.Parent, el.ID)})
		}
		ids[el.ID] = true
	}
	return errs
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
