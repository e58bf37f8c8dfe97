package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Logic joins the children of a Group.
type Logic string

const (
	And Logic = "AND"
	Or  Logic = "OR"
)

// Group combines conditions and sub-groups with AND or OR.
type Group struct {
	Operator Logic  `json:"operator" yaml:"operator" validate:"required,oneof=AND OR"`
	Negate   bool   `json:"negate,omitempty" yaml:"negate,omitempty"`
	Children []Node `json:"children" yaml:"children" validate:"dive"`
}

// Node holds exactly one of Condition or Group.
type Node struct {
	Condition *Condition `validate:"omitempty"`
	Group     *Group     `validate:"omitempty"`
}

// Cond wraps a condition as a Node.
func Cond(c Condition) Node { return Node{Condition: &c} }

// Sub wraps a group as a Node.
func Sub(g Group) Node { return Node{Group: &g} }

// EvaluateGroup applies g to a row. A group without children is true before negation.
func EvaluateGroup(row Row, g Group) bool {
	res := true
	if len(g.Children) > 0 {
		switch g.Operator {
		case Or:
			res = false
			for _, ch := range g.Children {
				if evaluateNode(row, ch) {
					res = true
					break
				}
			}
		default:
			for _, ch := range g.Children {
				if !evaluateNode(row, ch) {
					res = false
					break
				}
			}
		}
	}
	if g.Negate {
		return !res
	}
	return res
}

func evaluateNode(row Row, n Node) bool {
	switch {
	case n.Condition != nil:
		return EvaluateCondition(row, *n.Condition)
	case n.Group != nil:
		return EvaluateGroup(row, *n.Group)
	default:
		return true
	}
}

// Validate checks operators throughout the tree.
func (g Group) Validate() error {
	if g.Operator != And && g.Operator != Or {
		return fmt.Errorf("filter group: unknown operator %q", g.Operator)
	}
	for i, ch := range g.Children {
		switch {
		case ch.Condition != nil && ch.Group != nil:
			return fmt.Errorf("filter group child %d: holds both a condition and a group", i)
		case ch.Condition != nil:
			if !ch.Condition.Operator.Valid() {
				return fmt.Errorf("filter group child %d: unknown operator %q", i, ch.Condition.Operator)
			}
		case ch.Group != nil:
			if err := ch.Group.Validate(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("filter group child %d: empty node", i)
		}
	}
	return nil
}

// MarshalJSON writes {"type":"condition",...} or {"type":"group",...}.
func (n Node) MarshalJSON() ([]byte, error) {
	switch {
	case n.Condition != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			Condition
		}{"condition", *n.Condition})
	case n.Group != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			Group
		}{"group", *n.Group})
	default:
		return nil, fmt.Errorf("filter node: empty")
	}
}

// UnmarshalJSON reads the tagged form written by MarshalJSON.
func (n *Node) UnmarshalJSON(b []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	switch strings.ToLower(probe.Type) {
	case "condition":
		var c Condition
		if err := json.Unmarshal(b, &c); err != nil {
			return err
		}
		*n = Node{Condition: &c}
	case "group":
		var g Group
		if err := json.Unmarshal(b, &g); err != nil {
			return err
		}
		*n = Node{Group: &g}
	default:
		return fmt.Errorf("filter node: unknown type %q", probe.Type)
	}
	return nil
}

// UnmarshalYAML reads the same tagged form from YAML.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var probe struct {
		Type string `yaml:"type"`
	}
	if err := value.Decode(&probe); err != nil {
		return err
	}
	switch strings.ToLower(probe.Type) {
	case "condition":
		var c Condition
		if err := value.Decode(&c); err != nil {
			return err
		}
		*n = Node{Condition: &c}
	case "group":
		var g Group
		if err := value.Decode(&g); err != nil {
			return err
		}
		*n = Node{Group: &g}
	default:
		return fmt.Errorf("filter node: unknown type %q", probe.Type)
	}
	return nil
}

// MarshalYAML writes the tagged form.
func (n Node) MarshalYAML() (any, error) {
	switch {
	case n.Condition != nil:
		return struct {
			Type      string `yaml:"type"`
			Condition `yaml:",inline"`
		}{"condition", *n.Condition}, nil
	case n.Group != nil:
		return struct {
			Type  string `yaml:"type"`
			Group `yaml:",inline"`
		}{"group", *n.Group}, nil
	default:
		return nil, fmt.Errorf("filter node: empty")
	}
}
