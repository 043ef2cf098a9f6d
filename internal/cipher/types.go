package cipher

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OperationType defines the category of transformation operation
type OperationType string

const (
	OperationTypeEncode  OperationType = "encode"
	OperationTypeDecode  OperationType = "decode"
	OperationTypeEncrypt OperationType = "encrypt"
	OperationTypeDecrypt OperationType = "decrypt"
)

// Operation represents a single transformation operation that can be applied to data
type Operation interface {
	// Name returns the unique identifier for this operation
	Name() string

	// Type returns the category of this operation
	Type() OperationType

	// Description returns a human-readable description
	Description() string

	// Execute applies the operation to the input data
	Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error)

	// Reverse returns the inverse operation if available
	Reverse() (Operation, bool)
}

// OperationConfig represents configuration for an operation in a pipeline
type OperationConfig struct {
	Name       string                 `json:"name" yaml:"name"`
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// UnmarshalYAML decodes a step and keeps the literal text of an unquoted
// key. YAML resolves 0010010111 as an octal integer, which would lose the
// bit string.
func (c *OperationConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain OperationConfig
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*c = OperationConfig(decoded)

	params := mappingValue(node, "parameters")
	if params == nil || c.Parameters == nil {
		return nil
	}
	if key := mappingValue(params, ParamKey); key != nil && key.Kind == yaml.ScalarNode && key.ShortTag() == "!!int" {
		c.Parameters[ParamKey] = key.Value
	}
	return nil
}

func mappingValue(node *yaml.Node, name string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == name {
			return node.Content[i+1]
		}
	}
	return nil
}

// Pipeline represents a chain of operations that can be applied sequentially
type Pipeline struct {
	Operations []OperationConfig `json:"operations" yaml:"operations"`
	Reversible bool              `json:"reversible" yaml:"reversible"`
}

// Execute runs the pipeline on the input data
func (p *Pipeline) Execute(ctx context.Context, input []byte) ([]byte, error) {
	result := input
	var err error

	for i, opConfig := range p.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("unknown operation at step %d: %s", i, opConfig.Name)
		}

		result, err = op.Execute(ctx, result, opConfig.Parameters)
		if err != nil {
			return nil, fmt.Errorf("operation %s failed at step %d: %w", opConfig.Name, i, err)
		}
	}

	return result, nil
}

// Reverse creates a reversed pipeline if all operations are reversible.
// Parameters travel with each step so keys apply to both directions.
func (p *Pipeline) Reverse() (*Pipeline, error) {
	if !p.Reversible {
		return nil, fmt.Errorf("pipeline is not reversible")
	}

	reversed := &Pipeline{
		Operations: make([]OperationConfig, len(p.Operations)),
		Reversible: true,
	}

	for i, opConfig := range p.Operations {
		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("unknown operation: %s", opConfig.Name)
		}

		reverseOp, ok := op.Reverse()
		if !ok {
			return nil, fmt.Errorf("operation %s is not reversible", opConfig.Name)
		}

		reversed.Operations[len(p.Operations)-1-i] = OperationConfig{
			Name:       reverseOp.Name(),
			Parameters: opConfig.Parameters,
		}
	}

	return reversed, nil
}

// Bind returns a copy of the pipeline in which params override the
// parameters of every step. Operations ignore parameters they do not use,
// so a single set of keys can be supplied for a whole recipe.
func (p *Pipeline) Bind(params map[string]interface{}) *Pipeline {
	bound := &Pipeline{
		Operations: make([]OperationConfig, len(p.Operations)),
		Reversible: p.Reversible,
	}
	for i, opConfig := range p.Operations {
		merged := make(map[string]interface{}, len(opConfig.Parameters)+len(params))
		for k, v := range opConfig.Parameters {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
		bound.Operations[i] = OperationConfig{Name: opConfig.Name, Parameters: merged}
	}
	return bound
}

// Validate reports the first step that names an unregistered operation.
func (p *Pipeline) Validate() error {
	if len(p.Operations) == 0 {
		return fmt.Errorf("pipeline has no operations")
	}
	for i, opConfig := range p.Operations {
		if _, ok := GetOperation(opConfig.Name); !ok {
			return fmt.Errorf("unknown operation at step %d: %s", i, opConfig.Name)
		}
	}
	return nil
}

// Recipe represents a named, reusable transformation pipeline
type Recipe struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Pipeline    Pipeline `json:"pipeline" yaml:"pipeline"`
	Builtin     bool     `json:"builtin,omitempty" yaml:"-"`
	CreatedAt   string   `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at" yaml:"updated_at,omitempty"`
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	NameValue        string
	TypeValue        OperationType
	DescriptionValue string
	ReverseOp        Operation
}

func (b *BaseOperation) Name() string {
	return b.NameValue
}

func (b *BaseOperation) Type() OperationType {
	return b.TypeValue
}

func (b *BaseOperation) Description() string {
	return b.DescriptionValue
}

func (b *BaseOperation) Reverse() (Operation, bool) {
	if b.ReverseOp == nil {
		return nil, false
	}
	return b.ReverseOp, true
}
