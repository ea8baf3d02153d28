package models

import "time"

// TaskPatch carries a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Text           *string     `json:"text,omitempty"`
	Date           *time.Time  `json:"date,omitempty"`
	Completed      *bool       `json:"completed,omitempty"`
	Important      *bool       `json:"important,omitempty"`
	Pinned         *bool       `json:"pinned,omitempty"`
	Color          *string     `json:"color,omitempty"`
	FontStyle      *FontStyle  `json:"font_style,omitempty"`
	FontWeight     *FontWeight `json:"font_weight,omitempty"`
	Highlight      *bool       `json:"highlight,omitempty"`
	HighlightColor *string     `json:"highlight_color,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p == TaskPatch{}
}

// Apply merges the patch into t. ID and CreatedAt are immutable.
func (p TaskPatch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Important != nil {
		t.Important = *p.Important
	}
	if p.Pinned != nil {
		t.Pinned = *p.Pinned
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.FontStyle != nil {
		t.FontStyle = *p.FontStyle
	}
	if p.FontWeight != nil {
		t.FontWeight = *p.FontWeight
	}
	if p.Highlight != nil {
		t.Highlight = *p.Highlight
	}
	if p.HighlightColor != nil {
		t.HighlightColor = *p.HighlightColor
	}
	return t
}

// Merge overlays q on top of p.
func (p TaskPatch) Merge(q TaskPatch) TaskPatch {
	if q.Text != nil {
		p.Text = q.Text
	}
	if q.Date != nil {
		p.Date = q.Date
	}
	if q.Completed != nil {
		p.Completed = q.Completed
	}
	if q.Important != nil {
		p.Important = q.Important
	}
	if q.Pinned != nil {
		p.Pinned = q.Pinned
	}
	if q.Color != nil {
		p.Color = q.Color
	}
	if q.FontStyle != nil {
		p.FontStyle = q.FontStyle
	}
	if q.FontWeight != nil {
		p.FontWeight = q.FontWeight
	}
	if q.Highlight != nil {
		p.Highlight = q.Highlight
	}
	if q.HighlightColor != nil {
		p.HighlightColor = q.HighlightColor
	}
	return p
}
