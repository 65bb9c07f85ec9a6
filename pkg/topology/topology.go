package topology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meshpulse/meshpulse/pkg/types"
)

// NodeType distinguishes services from the environments that group them
type NodeType string

const (
	NodeTypeService     NodeType = "service"
	NodeTypeEnvironment NodeType = "environment"
)

// Node is a service or environment in the topology
type Node struct {
	ID      string       `yaml:"id"`
	Type    NodeType     `yaml:"type"`
	Parent  string       `yaml:"parent,omitempty"`
	Name    string       `yaml:"name"`
	Tech    string       `yaml:"tech,omitempty"`
	Version string       `yaml:"version,omitempty"`
	Status  types.Status `yaml:"status,omitempty"`
}

// Connection is a directed edge between two services
type Connection struct {
	ID     string       `yaml:"id"`
	Source string       `yaml:"source"`
	Target string       `yaml:"target"`
	Status types.Status `yaml:"status"`
}

// Topology is the simulated service graph the engine animates
type Topology struct {
	Nodes       []Node       `yaml:"nodes"`
	Connections []Connection `yaml:"connections"`
}

// StatusSummary counts services by status for dashboard headers
type StatusSummary struct {
	Healthy  int
	Degraded int
	Offline  int
}

// Load reads and validates a topology from a YAML file
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology file: %w", err)
	}

	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("failed to parse topology YAML: %w", err)
	}

	if err := topo.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology %s: %w", path, err)
	}
	return &topo, nil
}

// Validate checks referential integrity of the graph
func (t *Topology) Validate() error {
	nodes := make(map[string]Node, len(t.Nodes))
	for _, node := range t.Nodes {
		if node.ID == "" {
			return fmt.Errorf("node %q has no id", node.Name)
		}
		if _, dup := nodes[node.ID]; dup {
			return fmt.Errorf("duplicate node id: %s", node.ID)
		}
		if node.Type != NodeTypeService && node.Type != NodeTypeEnvironment {
			return fmt.Errorf("node %s has unknown type: %s", node.ID, node.Type)
		}
		if node.Status != "" && !node.Status.Valid() {
			return fmt.Errorf("node %s has unknown status: %s", node.ID, node.Status)
		}
		nodes[node.ID] = node
	}

	for _, node := range t.Nodes {
		if node.Parent == "" {
			continue
		}
		parent, ok := nodes[node.Parent]
		if !ok {
			return fmt.Errorf("node %s references unknown parent: %s", node.ID, node.Parent)
		}
		if parent.Type != NodeTypeEnvironment {
			return fmt.Errorf("node %s parent %s is not an environment", node.ID, node.Parent)
		}
	}

	seen := make(map[string]bool, len(t.Connections))
	for _, conn := range t.Connections {
		if conn.ID == "" {
			return fmt.Errorf("connection %s->%s has no id", conn.Source, conn.Target)
		}
		if seen[conn.ID] {
			return fmt.Errorf("duplicate connection id: %s", conn.ID)
		}
		seen[conn.ID] = true
		for _, endpoint := range []string{conn.Source, conn.Target} {
			node, ok := nodes[endpoint]
			if !ok {
				return fmt.Errorf("connection %s references unknown node: %s", conn.ID, endpoint)
			}
			if node.Type != NodeTypeService {
				return fmt.Errorf("connection %s endpoint %s is not a service", conn.ID, endpoint)
			}
		}
		if !conn.Status.Valid() {
			return fmt.Errorf("connection %s has unknown status: %s", conn.ID, conn.Status)
		}
	}
	return nil
}

// Services returns all service nodes
func (t *Topology) Services() []Node {
	var services []Node
	for _, node := range t.Nodes {
		if node.Type == NodeTypeService {
			services = append(services, node)
		}
	}
	return services
}

// Environments returns all environment nodes
func (t *Topology) Environments() []Node {
	var environments []Node
	for _, node := range t.Nodes {
		if node.Type == NodeTypeEnvironment {
			environments = append(environments, node)
		}
	}
	return environments
}

// ServiceIDs returns the ids of all service nodes
func (t *Topology) ServiceIDs() []string {
	var ids []string
	for _, node := range t.Nodes {
		if node.Type == NodeTypeService {
			ids = append(ids, node.ID)
		}
	}
	return ids
}

// ConnectionIDs returns the ids of all connections
func (t *Topology) ConnectionIDs() []string {
	var ids []string
	for _, conn := range t.Connections {
		ids = append(ids, conn.ID)
	}
	return ids
}

// Summary counts services by their declared status
func (t *Topology) Summary() StatusSummary {
	var summary StatusSummary
	for _, node := range t.Nodes {
		if node.Type != NodeTypeService {
			continue
		}
		switch node.Status {
		case types.StatusHealthy:
			summary.Healthy++
		case types.StatusDegraded:
			summary.Degraded++
		case types.StatusOffline:
			summary.Offline++
		}
	}
	return summary
}
