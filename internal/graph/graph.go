package graph

import (
	"kintree/internal/models"
)

// Node is one member rendered in a family's graph, positioned for that
// family's canvas
type Node struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Gender string   `json:"gender"`
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Data   NodeData `json:"data"`
}

// NodeData carries the full member record plus the region ids the member
// effectively belongs to in this graph
type NodeData struct {
	models.Member
	RegionIDs []string `json:"region_ids"`
}

// Edge is one relationship rendered in a family's graph. Spouse edges carry
// a marriage date; parent-child edges carry a father/mother label. An edge
// may reference a node outside the document when only one endpoint was
// selected.
type Edge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Type         string  `json:"type"`
	Label        string  `json:"label,omitempty"`
	MarriageDate *string `json:"marriage_date,omitempty"`
}

// Edge types.
const (
	EdgeSpouse      = "spouse"
	EdgeParentChild = "parent-child"
)

// Document is a complete graph for one family
type Document struct {
	Nodes   []Node          `json:"nodes"`
	Edges   []Edge          `json:"edges"`
	Regions []models.Region `json:"regions"`
}
