package cipher

import (
	"fmt"
	"sort"
	"sync"
)

// Global operation registry
var (
	operationsRegistry = make(map[string]Operation)
	registryMu         sync.RWMutex
)

// RegisterOperation adds an operation to the global registry
func RegisterOperation(op Operation) error {
	if op == nil {
		return fmt.Errorf("cannot register nil operation")
	}

	name := op.Name()
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := operationsRegistry[name]; exists {
		return fmt.Errorf("operation %s is already registered", name)
	}

	operationsRegistry[name] = op
	return nil
}

func mustRegister(op Operation) {
	if err := RegisterOperation(op); err != nil {
		panic(err)
	}
}

// GetOperation retrieves an operation from the registry by name
func GetOperation(name string) (Operation, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	op, exists := operationsRegistry[name]
	return op, exists
}

// ListOperations returns all registered operations sorted by name
func ListOperations() []Operation {
	return filterOperations(func(Operation) bool { return true })
}

// ListOperationsByType returns operations filtered by type
func ListOperationsByType(opType OperationType) []Operation {
	return filterOperations(func(op Operation) bool { return op.Type() == opType })
}

func filterOperations(keep func(Operation) bool) []Operation {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ops := make([]Operation, 0, len(operationsRegistry))
	for _, op := range operationsRegistry {
		if keep(op) {
			ops = append(ops, op)
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Name() < ops[j].Name()
	})

	return ops
}

// OperationInfo is the listing form of a registered operation.
type OperationInfo struct {
	Name        string        `json:"name"`
	Type        OperationType `json:"type"`
	Description string        `json:"description"`
	Reverse     string        `json:"reverse,omitempty"`
}

// Catalog describes every registered operation, sorted by name.
func Catalog() []OperationInfo {
	ops := ListOperations()
	infos := make([]OperationInfo, len(ops))
	for i, op := range ops {
		infos[i] = OperationInfo{Name: op.Name(), Type: op.Type(), Description: op.Description()}
		if rev, ok := op.Reverse(); ok {
			infos[i].Reverse = rev.Name()
		}
	}
	return infos
}

// UnregisterOperation removes an operation from the registry (mainly for testing)
func UnregisterOperation(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(operationsRegistry, name)
}
