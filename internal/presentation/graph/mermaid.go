package graph

import (
	"fmt"
	"strings"

	stepgraph "github.com/aretw0/stepwise/pkg/graph"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []stepgraph.NodeID
	CurrentNode  stepgraph.NodeID
}

// Trail lists the nodes that lead to current by prev links, root first.
// These are the nodes a run of back steps would revisit. Current itself is
// not included.
func Trail(nodes []stepgraph.NodeInfo, current stepgraph.NodeID) []stepgraph.NodeID {
	byID := make(map[stepgraph.NodeID]stepgraph.NodeInfo, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var trail []stepgraph.NodeID
	seen := map[stepgraph.NodeID]bool{current: true}
	for id := current; ; {
		n, ok := byID[id]
		if !ok || n.Prev == stepgraph.None || seen[n.Prev] {
			break
		}
		id = n.Prev
		seen[id] = true
		trail = append(trail, id)
	}

	for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
		trail[i], trail[j] = trail[j], trail[i]
	}
	return trail
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a list of nodes.
// It applies semantic styling:
// - Conditional: {Diamond}
// - Looping: [[Subroutine]]
// - Repeating: [/Parallelogram/]
// - Plain root: ((Circle))
// - Other plain nodes: [Rectangle]
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(nodes []stepgraph.NodeInfo, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := mermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.Kind == stepgraph.Conditional:
			opener, closer = "{", "}"
		case node.Kind == stepgraph.Looping:
			opener, closer = "[[", "]]"
		case node.Kind == stepgraph.Repeating:
			opener, closer = "[/", "/]"
		case node.Prev == stepgraph.None:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escape(displayName(node)), closer)

		if node.Next != stepgraph.None {
			fmt.Fprintf(&sb, "    %s --> %s\n", safeID, mermaidID(node.Next))
		}

		note := escape(node.Note)
		switch node.Kind {
		case stepgraph.Conditional:
			if node.Alt != stepgraph.None {
				fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow(note, false), mermaidID(node.Alt))
			}
		case stepgraph.Looping:
			if node.LoopStart != stepgraph.None {
				fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow(note, true), mermaidID(node.LoopStart))
			}
		case stepgraph.Repeating:
			if node.ChainStart {
				fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow(note, true), safeID)
			}
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[stepgraph.NodeID]bool)
		for _, id := range overlay.VisitedNodes {
			if id == stepgraph.None || visited[id] {
				continue
			}
			visited[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", mermaidID(id))
		}

		if overlay.CurrentNode != stepgraph.None {
			fmt.Fprintf(&sb, "    class %s current;\n", mermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func mermaidID(id stepgraph.NodeID) string {
	return fmt.Sprintf("n%d", int(id))
}

func displayName(node stepgraph.NodeInfo) string {
	if node.Label != "" {
		return node.Label
	}
	return fmt.Sprintf("#%d", int(node.ID))
}

// arrow builds an edge, optionally carrying note: -- "note" --> or, when
// dotted, -. "note" .->.
func arrow(note string, dotted bool) string {
	switch {
	case note == "" && dotted:
		return "-.->"
	case note == "":
		return "-->"
	case dotted:
		return fmt.Sprintf("-. \"%s\" .->", note)
	default:
		return fmt.Sprintf("-- \"%s\" -->", note)
	}
}

// escape swaps double quotes, which would end a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
