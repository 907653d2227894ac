package model

// Project groups entries. An entry belongs to at most one project.
type Project struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}

func (p Project) RecordID() string { return p.ID }

// Tag labels entries. ColorHex is "#RRGGBB" or empty.
type Tag struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	ColorHex string `json:"color,omitempty" yaml:"color,omitempty"`
}

func (t Tag) RecordID() string { return t.ID }

// Record is implemented by every stored entity.
type Record interface {
	RecordID() string
}
