package advisor

import (
	"encoding/json"
	"errors"
)

// MealSuggestion is the planner's output. The single-struct shape guarantees
// one suggestion per run, never zero or several.
type MealSuggestion struct {
	// Meal the suggested breakfast meal name.
	Meal string `json:"meal" jsonschema:"title=meal,description=The suggested breakfast meal name." validate:"required"`
	// Reason one sentence explaining why this meal fits the request.
	Reason string `json:"reason" jsonschema:"title=reason,description=One sentence explaining why this meal fits the request." validate:"required"`
}

func (s MealSuggestion) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Ingredient is one component of a meal with its quantity and calories.
type Ingredient struct {
	// Name the ingredient name.
	Name string `json:"name" jsonschema:"title=name,description=The ingredient name." validate:"required"`
	// Quantity amount with explicit unit, e.g. '50g' or '1 cup'.
	Quantity string `json:"quantity" jsonschema:"title=quantity,description=Amount with explicit unit. For example '50g' or '1 cup'."`
	// Grams the quantity expressed in grams for calorie scaling.
	Grams float64 `json:"grams,omitempty" jsonschema:"title=grams,description=The quantity expressed in grams."`
	// Calories calories contributed by this quantity of the ingredient.
	Calories float64 `json:"calories" jsonschema:"title=calories,description=Calories contributed by this quantity of the ingredient."`
	// FromIndex reports whether the calorie value came from the nutrition
	// database rather than a model estimate.
	FromIndex bool `json:"from_index,omitempty" jsonschema:"title=from_index,description=Whether the calorie value came from the nutrition database."`
}

func (s Ingredient) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// IngredientList is the structured output of ingredient resolution for a
// composite meal.
type IngredientList struct {
	// Ingredients ingredients of the meal with estimated quantities and calories.
	Ingredients []Ingredient `json:"ingredients" jsonschema:"title=ingredients,description=Ingredients of the meal with estimated quantities and calories." validate:"required"`
}

func (s IngredientList) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// NutritionBreakdown is the calculator's output: either a single-item calorie
// statement (no ingredients) or a full ingredient breakdown with a summed
// total.
type NutritionBreakdown struct {
	// Meal the meal this breakdown describes.
	Meal string `json:"meal" jsonschema:"title=meal,description=The meal this breakdown describes."`
	// Ingredients per-ingredient calorie entries; empty for a single food item.
	Ingredients []Ingredient `json:"ingredients,omitempty" jsonschema:"title=ingredients,description=Per-ingredient calorie entries."`
	// TotalCalories the summed calories for the meal.
	TotalCalories float64 `json:"total_calories" jsonschema:"title=total_calories,description=The summed calories for the meal."`
}

func (s NutritionBreakdown) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// PricedIngredient pairs an ingredient with a resolved unit price.
type PricedIngredient struct {
	// Name the ingredient name.
	Name string `json:"name" jsonschema:"title=name,description=The ingredient name." validate:"required"`
	// Quantity amount with explicit unit.
	Quantity string `json:"quantity" jsonschema:"title=quantity,description=Amount with explicit unit."`
	// Calories calories contributed by this ingredient.
	Calories float64 `json:"calories" jsonschema:"title=calories,description=Calories contributed by this ingredient."`
	// Price resolved price in dollars for the quantity.
	Price float64 `json:"price" jsonschema:"title=price,description=Resolved price in dollars for the quantity."`
	// PriceUnavailable reports that no realistic price could be resolved.
	// Unavailable ingredients are excluded from the meal total.
	PriceUnavailable bool `json:"price_unavailable,omitempty" jsonschema:"title=price_unavailable,description=Whether no realistic price could be resolved."`
}

func (s PricedIngredient) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// PricedMeal is the price checker's structured output.
type PricedMeal struct {
	// Meal the meal this pricing describes.
	Meal string `json:"meal" jsonschema:"title=meal,description=The meal this pricing describes."`
	// Items per-ingredient quantity, calorie and price entries.
	Items []PricedIngredient `json:"items" jsonschema:"title=items,description=Per-ingredient quantity calorie and price entries."`
	// TotalPrice the summed price excluding unavailable items.
	TotalPrice float64 `json:"total_price" jsonschema:"title=total_price,description=The summed price excluding unavailable items."`
	// Summary the final user-facing markdown listing.
	Summary string `json:"summary,omitempty" jsonschema:"title=summary,description=The final user-facing markdown listing."`
}

func (s PricedMeal) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// PipelineState is the accumulator threaded through the pipeline steps. Each
// step appends its own field; a field is never overwritten once set.
type PipelineState struct {
	MealPlan           *MealSuggestion     `json:"meal_plan,omitempty"`
	NutritionBreakdown *NutritionBreakdown `json:"nutrition_breakdown,omitempty"`
	PricedMeal         *PricedMeal         `json:"priced_meal,omitempty"`
}

var errStateOverwrite = errors.New("pipeline state field already set")

func (s *PipelineState) attachPlan(v *MealSuggestion) error {
	if s.MealPlan != nil {
		return errStateOverwrite
	}
	s.MealPlan = v
	return nil
}

func (s *PipelineState) attachBreakdown(v *NutritionBreakdown) error {
	if s.NutritionBreakdown != nil {
		return errStateOverwrite
	}
	s.NutritionBreakdown = v
	return nil
}

func (s *PipelineState) attachPricedMeal(v *PricedMeal) error {
	if s.PricedMeal != nil {
		return errStateOverwrite
	}
	s.PricedMeal = v
	return nil
}

func (s PipelineState) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}
