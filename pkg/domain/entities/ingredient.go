package entities

import "fmt"

// IngredientID uniquely identifies a reference ingredient.
type IngredientID int64

// Ingredient represents immutable reference data for a tracked substance.
type Ingredient struct {
	ID   IngredientID
	Name string
}

// NewIngredient creates a validated Ingredient.
func NewIngredient(id IngredientID, name string) (*Ingredient, error) {
	if id <= 0 {
		return nil, fmt.Errorf("ingredient id must be positive, got %d", id)
	}
	if name == "" {
		return nil, fmt.Errorf("ingredient name cannot be empty")
	}
	return &Ingredient{ID: id, Name: name}, nil
}
