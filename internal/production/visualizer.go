package production

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/comalice/statematch"
)

// Edge is an observed transition between two values of one state type.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// StateGraph is everything observed for one state type.
type StateGraph struct {
	Type    string   `json:"type"`
	Current string   `json:"current"`
	Values  []string `json:"values"`
	Edges   []Edge   `json:"edges"`
}

type stateGraph struct {
	current string
	values  map[string]bool
	edges   map[[2]string]int
}

// Graph records the transitions a World actually takes.
type Graph struct {
	mu     sync.Mutex
	order  []string
	states map[string]*stateGraph
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{states: make(map[string]*stateGraph)}
}

func (g *Graph) state(stateType string) *stateGraph {
	sg, ok := g.states[stateType]
	if !ok {
		sg = &stateGraph{values: make(map[string]bool), edges: make(map[[2]string]int)}
		g.states[stateType] = sg
		g.order = append(g.order, stateType)
	}
	return sg
}

// TransitionApplied records the edge taken and the new current value.
func (g *Graph) TransitionApplied(_ context.Context, rec statematch.TransitionRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sg := g.state(rec.StateType)
	sg.current = rec.To
	sg.values[rec.To] = true
	if !rec.Initial {
		sg.values[rec.From] = true
		sg.edges[[2]string{rec.From, rec.To}]++
	}
}

// TransitionSuppressed is a no-op.
func (g *Graph) TransitionSuppressed(context.Context, string) {}

// PhaseFailed is a no-op.
func (g *Graph) PhaseFailed(context.Context, statematch.Phase, string, error) {}

// Snapshot returns the observed graph, state types in first-seen order and
// values and edges sorted.
func (g *Graph) Snapshot() []StateGraph {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]StateGraph, 0, len(g.order))
	for _, name := range g.order {
		sg := g.states[name]
		s := StateGraph{Type: name, Current: sg.current, Values: make([]string, 0, len(sg.values))}
		for v := range sg.values {
			s.Values = append(s.Values, v)
		}
		sort.Strings(s.Values)
		for k, n := range sg.edges {
			s.Edges = append(s.Edges, Edge{From: k[0], To: k[1], Count: n})
		}
		sort.Slice(s.Edges, func(i, j int) bool {
			if s.Edges[i].From != s.Edges[j].From {
				return s.Edges[i].From < s.Edges[j].From
			}
			return s.Edges[i].To < s.Edges[j].To
		})
		out = append(out, s)
	}
	return out
}

// ExportDOT generates Graphviz DOT source, one cluster per state type, with
// the current value highlighted.
func (g *Graph) ExportDOT() string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Statematch {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	for i, sg := range g.Snapshot() {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", sg.Type)
		for _, v := range sg.Values {
			style := ""
			if v == sg.Current {
				style = ` style=filled fillcolor=lightgreen`
			}
			fmt.Fprintf(&buf, "    %q [label=%q%s];\n", nodeID(sg.Type, v), v, style)
		}
		for _, e := range sg.Edges {
			fmt.Fprintf(&buf, "    %q -> %q [label=\"%d\"];\n", nodeID(sg.Type, e.From), nodeID(sg.Type, e.To), e.Count)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the snapshot to JSON.
func (g *Graph) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(g.Snapshot(), "", "  ")
}

// nodeID keeps equal values of different state types apart.
func nodeID(stateType, value string) string {
	return stateType + "/" + value
}
