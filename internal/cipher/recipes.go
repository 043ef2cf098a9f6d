package cipher

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/RowanDark/esdes/internal/logging"
)

// EnhancedSDESRecipe is the name of the built-in recipe that chains the
// individual stages into Enhanced S-DES encryption.
const EnhancedSDESRecipe = "enhanced-sdes"

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrBuiltinRecipe  = errors.New("built-in recipes cannot be modified")
)

// BuiltinRecipes returns fresh copies of the recipes every manager starts with.
func BuiltinRecipes() []*Recipe {
	return []*Recipe{
		{
			ID:          "00000000-0000-0000-0000-000000000001",
			Name:        EnhancedSDESRecipe,
			Description: "Columnar transposition, row shift and S-DES rendered as hex (params: key, trans_key, rounds)",
			Tags:        []string{"sdes", "transposition", "builtin"},
			Builtin:     true,
			Pipeline: Pipeline{
				Operations: []OperationConfig{
					{Name: "column_transpose", Parameters: map[string]interface{}{ParamRounds: 2}},
					{Name: "row_shift"},
					{Name: "binary_encode"},
					{Name: "sdes_encrypt"},
					{Name: "hex_encode"},
				},
				Reversible: true,
			},
		},
	}
}

// RecipeOption configures a RecipeManager.
type RecipeOption func(*RecipeManager)

// WithRecipeAudit records saves and deletions on logger.
func WithRecipeAudit(logger *logging.AuditLogger) RecipeOption {
	return func(rm *RecipeManager) {
		rm.audit = logger
	}
}

// RecipeManager handles storage and retrieval of recipes
type RecipeManager struct {
	recipes   map[string]*Recipe
	storePath string
	audit     *logging.AuditLogger
	mu        sync.RWMutex
}

// NewRecipeManager creates a recipe manager holding the built-in recipes.
// An empty storePath keeps recipes in memory only.
func NewRecipeManager(storePath string, opts ...RecipeOption) *RecipeManager {
	rm := &RecipeManager{
		recipes:   make(map[string]*Recipe),
		storePath: storePath,
	}
	for _, opt := range opts {
		opt(rm)
	}
	for _, recipe := range BuiltinRecipes() {
		rm.recipes[recipe.Name] = recipe
	}
	return rm
}

// SaveRecipe validates and stores a recipe. A recipe without an ID gets a
// new UUID; saving over an existing name keeps its ID and creation time.
func (rm *RecipeManager) SaveRecipe(recipe *Recipe) error {
	if recipe.Name == "" {
		return fmt.Errorf("recipe name cannot be empty")
	}
	if err := recipe.Pipeline.Validate(); err != nil {
		return fmt.Errorf("recipe %s: %w", recipe.Name, err)
	}

	rm.mu.Lock()
	if existing, ok := rm.recipes[recipe.Name]; ok {
		if existing.Builtin {
			rm.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrBuiltinRecipe, recipe.Name)
		}
		if recipe.ID == "" {
			recipe.ID = existing.ID
		}
		if recipe.CreatedAt == "" {
			recipe.CreatedAt = existing.CreatedAt
		}
	}
	if _, err := uuid.Parse(recipe.ID); err != nil || rm.idTaken(recipe.ID, recipe.Name) {
		recipe.ID = uuid.NewString()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if recipe.CreatedAt == "" {
		recipe.CreatedAt = now
	}
	recipe.UpdatedAt = now
	recipe.Builtin = false

	rm.recipes[recipe.Name] = recipe

	var err error
	if rm.storePath != "" {
		err = rm.persistRecipe(recipe)
	}
	rm.mu.Unlock()
	if err != nil {
		return err
	}

	rm.emit(logging.EventRecipeSaved, recipe)
	return nil
}

// GetRecipe retrieves a recipe by name or ID
func (rm *RecipeManager) GetRecipe(nameOrID string) (*Recipe, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	if recipe, ok := rm.recipes[nameOrID]; ok {
		return recipe, true
	}
	for _, recipe := range rm.recipes {
		if recipe.ID == nameOrID {
			return recipe, true
		}
	}
	return nil, false
}

// ListRecipes returns all recipes sorted by name
func (rm *RecipeManager) ListRecipes() []*Recipe {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	recipes := make([]*Recipe, 0, len(rm.recipes))
	for _, recipe := range rm.recipes {
		recipes = append(recipes, recipe)
	}
	sortRecipes(recipes)
	return recipes
}

// DeleteRecipe removes a stored recipe
func (rm *RecipeManager) DeleteRecipe(name string) error {
	rm.mu.Lock()
	recipe, ok := rm.recipes[name]
	if !ok {
		rm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, name)
	}
	if recipe.Builtin {
		rm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBuiltinRecipe, name)
	}
	delete(rm.recipes, name)

	var err error
	if rm.storePath != "" {
		recipePath := filepath.Join(rm.storePath, sanitizeFilename(name)+".json")
		if rmErr := os.Remove(recipePath); rmErr != nil && !os.IsNotExist(rmErr) {
			err = fmt.Errorf("failed to delete recipe file: %w", rmErr)
		}
	}
	rm.mu.Unlock()
	if err != nil {
		return err
	}

	rm.emit(logging.EventRecipeDeleted, recipe)
	return nil
}

// LoadRecipes loads JSON and YAML recipes from the store path
func (rm *RecipeManager) LoadRecipes() error {
	if rm.storePath == "" {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if err := os.MkdirAll(rm.storePath, 0o755); err != nil {
		return fmt.Errorf("failed to create recipes directory: %w", err)
	}

	entries, err := os.ReadDir(rm.storePath)
	if err != nil {
		return fmt.Errorf("failed to read recipes directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		recipePath := filepath.Join(rm.storePath, entry.Name())
		data, err := os.ReadFile(recipePath)
		if err != nil {
			return fmt.Errorf("failed to read recipe %s: %w", entry.Name(), err)
		}

		var recipe Recipe
		if ext == ".json" {
			err = json.Unmarshal(data, &recipe)
		} else {
			err = yaml.Unmarshal(data, &recipe)
		}
		if err != nil {
			return fmt.Errorf("failed to parse recipe %s: %w", entry.Name(), err)
		}
		if existing, ok := rm.recipes[recipe.Name]; ok && existing.Builtin {
			continue
		}
		recipe.Builtin = false

		rm.recipes[recipe.Name] = &recipe
	}

	return nil
}

// ExportYAML renders a recipe as YAML.
func (rm *RecipeManager) ExportYAML(nameOrID string) ([]byte, error) {
	recipe, ok := rm.GetRecipe(nameOrID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, nameOrID)
	}
	data, err := yaml.Marshal(recipe)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize recipe: %w", err)
	}
	return data, nil
}

// ImportYAML parses a YAML recipe and saves it.
func (rm *RecipeManager) ImportYAML(data []byte) (*Recipe, error) {
	var recipe Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if err := rm.SaveRecipe(&recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// persistRecipe writes a single recipe to disk
func (rm *RecipeManager) persistRecipe(recipe *Recipe) error {
	if err := os.MkdirAll(rm.storePath, 0o755); err != nil {
		return fmt.Errorf("failed to create recipes directory: %w", err)
	}

	data, err := json.MarshalIndent(recipe, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize recipe: %w", err)
	}

	recipePath := filepath.Join(rm.storePath, sanitizeFilename(recipe.Name)+".json")
	if err := os.WriteFile(recipePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}

	return nil
}

// idTaken reports whether another recipe already uses id. Callers hold rm.mu.
func (rm *RecipeManager) idTaken(id, name string) bool {
	for _, other := range rm.recipes {
		if other.ID == id && other.Name != name {
			return true
		}
	}
	return false
}

func (rm *RecipeManager) emit(eventType logging.EventType, recipe *Recipe) {
	if rm.audit == nil {
		return
	}
	_ = rm.audit.Emit(logging.AuditEvent{
		EventType: eventType,
		Outcome:   logging.OutcomeSuccess,
		Metadata: map[string]any{
			"recipe_id":  recipe.ID,
			"name":       recipe.Name,
			"operations": len(recipe.Pipeline.Operations),
		},
	})
}

// sanitizeFilename converts a recipe name to a safe filename
func sanitizeFilename(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "recipe"
	}
	return sb.String()
}

// SearchRecipes finds recipes whose name, description or tags contain query,
// ignoring case
func (rm *RecipeManager) SearchRecipes(query string) []*Recipe {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	query = strings.ToLower(query)
	matches := func(s string) bool {
		return strings.Contains(strings.ToLower(s), query)
	}

	results := make([]*Recipe, 0)
	for _, recipe := range rm.recipes {
		if matches(recipe.Name) || matches(recipe.Description) {
			results = append(results, recipe)
			continue
		}

		for _, tag := range recipe.Tags {
			if matches(tag) {
				results = append(results, recipe)
				break
			}
		}
	}

	sortRecipes(results)
	return results
}

func sortRecipes(recipes []*Recipe) {
	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].Name < recipes[j].Name
	})
}
