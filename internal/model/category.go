package model

import (
	"encoding/json"
	"fmt"
)

// Category is the action category a prompt is routed to.
type Category int

const (
	Unknown Category = iota
	MeshCreate
	MaterialCreate
	SceneLayout
	Animate
	Export
	JournalEntry
)

var categoryNames = map[Category]string{
	Unknown:        "unknown",
	MeshCreate:     "mesh_create",
	MaterialCreate: "material_create",
	SceneLayout:    "scene_layout",
	Animate:        "animate",
	Export:         "export",
	JournalEntry:   "journal_entry",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory maps a category name back to its value.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return Unknown, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		// Newer journal files may carry categories this build does not know.
		*c = Unknown
		return nil
	}
	*c = parsed
	return nil
}
