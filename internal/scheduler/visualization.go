package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// GraphVisualization renders a task graph, optionally annotated with the
// results of a run.
type GraphVisualization struct {
	graph *TaskGraph
	run   *RunResult
}

// NewGraphVisualization creates a new visualization helper. run may be nil to
// render a plan.
func NewGraphVisualization(graph *TaskGraph, run *RunResult) *GraphVisualization {
	return &GraphVisualization{graph: graph, run: run}
}

// NodeInfo describes one task for visualization
type NodeInfo struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Duration    string `json:"duration,omitempty"`
	Message     string `json:"message,omitempty"`
}

// EdgeInfo points from a task to one of its dependencies
type EdgeInfo struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GraphInfo contains the full graph structure for visualization
type GraphInfo struct {
	RunID string     `json:"runId,omitempty"`
	Nodes []NodeInfo `json:"nodes"`
	Edges []EdgeInfo `json:"edges"`
}

// GenerateGraphInfo lists tasks in dependency order.
func (v *GraphVisualization) GenerateGraphInfo() (*GraphInfo, error) {
	order, err := v.graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	info := &GraphInfo{Nodes: make([]NodeInfo, 0, len(order)), Edges: []EdgeInfo{}}
	if v.run != nil {
		info.RunID = v.run.RunID
	}

	for _, key := range order {
		t, ok := v.graph.GetTask(key)
		if !ok {
			continue
		}
		node := NodeInfo{
			Key:         key,
			Type:        string(t.Type()),
			Name:        t.Name(),
			Version:     t.Version().String(),
			Description: t.Description(),
			Status:      "pending",
		}
		if v.run != nil {
			if res, ok := v.run.Results[key]; ok {
				node.Status = res.Status.String()
				node.Duration = res.Duration().String()
				node.Message = res.Message
			}
		}
		info.Nodes = append(info.Nodes, node)

		for _, dep := range v.graph.GetDependencies(key) {
			info.Edges = append(info.Edges, EdgeInfo{From: key, To: dep})
		}
	}
	return info, nil
}

// JSON returns the graph info as indented JSON.
func (v *GraphVisualization) JSON() ([]byte, error) {
	info, err := v.GenerateGraphInfo()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(info, "", "  ")
}

// GenerateDOTGraph creates a DOT format graph for visualization with Graphviz
func (v *GraphVisualization) GenerateDOTGraph() (string, error) {
	info, err := v.GenerateGraphInfo()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("digraph Tasks {\n")
	sb.WriteString("  rankdir=RL;\n")
	sb.WriteString("  node [shape=box, style=filled];\n\n")

	for _, node := range info.Nodes {
		color := "lightgrey"
		switch node.Status {
		case "success":
			color = "lightgreen"
		case "failed":
			color = "salmon"
		case "skipped":
			color = "lightyellow"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\\n%s\", fillcolor=\"%s\"];\n",
			node.Key, node.Key, node.Version, color))
	}
	sb.WriteString("\n")
	for _, edge := range info.Edges {
		sb.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", edge.From, edge.To))
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}

// ExportToDOT writes the DOT graph to filename
func (v *GraphVisualization) ExportToDOT(filename string) error {
	dot, err := v.GenerateDOTGraph()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(dot), 0o644)
}

// GenerateTextSummary lists tasks in dependency order with their dependencies.
func (v *GraphVisualization) GenerateTextSummary() (string, error) {
	info, err := v.GenerateGraphInfo()
	if err != nil {
		return "", err
	}

	deps := make(map[string][]string)
	for _, e := range info.Edges {
		deps[e.From] = append(deps[e.From], e.To)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d tasks:\n", len(info.Nodes)))
	for i, node := range info.Nodes {
		sb.WriteString(fmt.Sprintf("  %d. %s (%s) [%s]", i+1, node.Key, node.Version, node.Status))
		if len(deps[node.Key]) > 0 {
			sb.WriteString(fmt.Sprintf(" after %s", strings.Join(deps[node.Key], ", ")))
		}
		if node.Message != "" {
			sb.WriteString(fmt.Sprintf(" - %s", node.Message))
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
