// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package roadmap parses roadmap JSON graphs and topic content files.
// Implements: prd002-parsing (R1-R4).
package roadmap

import (
	"encoding/json"
	"fmt"
)

// maxAncestorDepth bounds parent-chain traversal so malformed graphs with
// edge cycles cannot loop forever.
const maxAncestorDepth = 10

// Node is one roadmap graph node with its label and type.
type Node struct {
	ID    string
	Label string
	Type  string
	X     float64
	Y     float64
}

// Topic is one extractable topic with its detected hierarchy.
type Topic struct {
	ID          string
	Label       string
	Type        string
	Category    string
	Subcategory string
}

// rawGraph mirrors the roadmap JSON document shape.
type rawGraph struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

type rawNode struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Position *rawPosition `json:"position"`
	Data     rawNodeData  `json:"data"`
}

type rawPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type rawNodeData struct {
	Label string `json:"label"`
}

type rawEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ExtractTopics parses a roadmap JSON document and returns its topic and
// subtopic nodes with categories detected from the edge graph (R1, R2).
// defaultCategory is used for topics whose hierarchy cannot be detected,
// typically the formatted roadmap name.
func ExtractTopics(data []byte, defaultCategory string) ([]Topic, error) {
	var graph rawGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("parsing roadmap JSON: %w", err)
	}

	nodes := extractNodes(graph.Nodes)

	parentOf := make(map[string]string, len(graph.Edges))
	for _, edge := range graph.Edges {
		if edge.Source != "" && edge.Target != "" {
			parentOf[edge.Target] = edge.Source
		}
	}

	nodesByID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		nodesByID[n.ID] = n
	}

	var topics []Topic
	for _, n := range nodes {
		if n.Type != "topic" && n.Type != "subtopic" {
			continue
		}

		category, subcategory := detectHierarchy(n, parentOf, nodesByID, defaultCategory)
		topics = append(topics, Topic{
			ID:          n.ID,
			Label:       n.Label,
			Type:        n.Type,
			Category:    category,
			Subcategory: subcategory,
		})
	}

	return topics, nil
}

// extractNodes keeps the nodes that carry both a position and a label;
// layout-only nodes contribute nothing to hierarchy detection.
func extractNodes(raw []rawNode) []Node {
	var nodes []Node
	for _, n := range raw {
		if n.Position == nil || n.Data.Label == "" {
			continue
		}
		nodes = append(nodes, Node{
			ID:    n.ID,
			Label: n.Data.Label,
			Type:  n.Type,
			X:     n.Position.X,
			Y:     n.Position.Y,
		})
	}
	return nodes
}

// detectHierarchy walks the ancestor chain of a topic node to assign its
// category and subcategory (R2.1-R2.3). With one meaningful ancestor the
// topic gets a category only; with two or more, the furthest ancestor is
// the category and the nearest is the subcategory. Topics with no ancestors
// fall back to their parent's label, their own label, or defaultCategory.
func detectHierarchy(n Node, parentOf map[string]string, nodesByID map[string]Node, defaultCategory string) (string, string) {
	ancestors := ancestorChain(n.ID, parentOf, nodesByID)

	if len(ancestors) == 0 {
		return inferFromParent(n, parentOf, nodesByID, defaultCategory), ""
	}

	var meaningful []Node
	for _, a := range ancestors {
		if a.Type == "label" || a.Type == "topic" || a.Type == "paragraph" {
			meaningful = append(meaningful, a)
		}
	}

	switch len(meaningful) {
	case 0:
		return defaultCategory, ""
	case 1:
		return meaningful[0].Label, ""
	default:
		return meaningful[len(meaningful)-1].Label, meaningful[0].Label
	}
}

// ancestorChain returns the labeled ancestors of a node from immediate
// parent to root, up to maxAncestorDepth levels.
func ancestorChain(id string, parentOf map[string]string, nodesByID map[string]Node) []Node {
	var chain []Node
	current := id

	for i := 0; i < maxAncestorDepth; i++ {
		parentID, ok := parentOf[current]
		if !ok {
			break
		}
		if parent, ok := nodesByID[parentID]; ok && parent.Label != "" {
			chain = append(chain, parent)
		}
		current = parentID
	}

	return chain
}

// inferFromParent falls back to the direct parent's label when the node has
// no usable ancestor chain, then to the node's own label, then to the
// roadmap default.
func inferFromParent(n Node, parentOf map[string]string, nodesByID map[string]Node, defaultCategory string) string {
	if parentID, ok := parentOf[n.ID]; ok {
		if parent, ok := nodesByID[parentID]; ok && parent.Label != "" {
			return parent.Label
		}
	}
	if n.Label != "" {
		return n.Label
	}
	return defaultCategory
}
