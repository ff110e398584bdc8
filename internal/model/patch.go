package model

import "time"

// TaskPatch lists fields to change on a task. Nil pointers are left untouched;
// ClearAssigned turns a fixed task back into a floating one.
type TaskPatch struct {
	Name          *string    `json:"name,omitempty"`
	Due           *time.Time `json:"due,omitempty"`
	Assigned      *time.Time `json:"assigned,omitempty"`
	ClearAssigned bool       `json:"clear_assigned,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Color         *string    `json:"color,omitempty"`
	EstimatedTime *int       `json:"estimated_time,omitempty"`
	Complete      *bool      `json:"complete,omitempty"`
	Repeat        *bool      `json:"repeat,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.Due == nil && p.Assigned == nil && !p.ClearAssigned &&
		p.Category == nil && p.Color == nil && p.EstimatedTime == nil &&
		p.Complete == nil && p.Repeat == nil && p.Priority == nil
}

// Apply writes the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Due != nil {
		t.Due = *p.Due
	}
	if p.ClearAssigned {
		t.Assigned = nil
	} else if p.Assigned != nil {
		at := *p.Assigned
		t.Assigned = &at
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.EstimatedTime != nil {
		t.EstimatedTime = *p.EstimatedTime
	}
	if p.Complete != nil {
		t.Complete = *p.Complete
	}
	if p.Repeat != nil {
		t.Repeat = *p.Repeat
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

// Columns returns the patch as a column map for gorm Updates.
func (p TaskPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Due != nil {
		cols["due"] = *p.Due
	}
	if p.ClearAssigned {
		cols["assigned"] = nil
	} else if p.Assigned != nil {
		cols["assigned"] = *p.Assigned
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Color != nil {
		cols["color"] = *p.Color
	}
	if p.EstimatedTime != nil {
		cols["estimated_time"] = *p.EstimatedTime
	}
	if p.Complete != nil {
		cols["complete"] = *p.Complete
	}
	if p.Repeat != nil {
		cols["repeat"] = *p.Repeat
	}
	if p.Priority != nil {
		cols["priority"] = *p.Priority
	}
	return cols
}

// SlotSnapshot captures the placement fields touched by drag and resize.
func SlotSnapshot(t Task) TaskPatch {
	est := t.Duration()
	p := TaskPatch{EstimatedTime: &est}
	if t.Assigned == nil {
		p.ClearAssigned = true
	} else {
		at := *t.Assigned
		p.Assigned = &at
	}
	return p
}

// CompletionSnapshot captures the fields touched by the complete toggle.
func CompletionSnapshot(t Task) TaskPatch {
	done := t.Complete
	color := t.Color
	return TaskPatch{Complete: &done, Color: &color}
}

// FullPatch returns a patch that rewrites every editable field of t.
func FullPatch(t Task) TaskPatch {
	p := TaskPatch{
		Name:          StringPtr(t.Name),
		Due:           TimePtr(t.Due),
		Category:      StringPtr(t.Category),
		Color:         StringPtr(t.Color),
		EstimatedTime: IntPtr(t.EstimatedTime),
		Complete:      BoolPtr(t.Complete),
		Repeat:        BoolPtr(t.Repeat),
		Priority:      StringPtr(t.Priority),
	}
	if t.Assigned == nil {
		p.ClearAssigned = true
	} else {
		p.Assigned = TimePtr(*t.Assigned)
	}
	return p
}

func StringPtr(v string) *string     { return &v }
func IntPtr(v int) *int              { return &v }
func BoolPtr(v bool) *bool           { return &v }
func TimePtr(v time.Time) *time.Time { return &v }
