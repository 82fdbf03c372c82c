package advisor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Joelfranklin96/nutrition-copilot/schema"
	"github.com/Joelfranklin96/nutrition-copilot/tools/calorielookup"
	"github.com/Joelfranklin96/nutrition-copilot/tools/mealmath"
	"github.com/Joelfranklin96/nutrition-copilot/tools/websearch"
)

func TestCalculatorDirectMatchSkipsSearch(t *testing.T) {
	lookup := &stubLookup{matches: map[string]calorielookup.Match{
		"tofu": {FoodItem: "tofu", FoodCategory: "soy products", CaloriesPer100g: 76},
	}}
	search := &stubSearch{err: errors.New("search must not run for a direct match")}
	calc := &Calculator{
		resolver: &stubAgent[schema.Input, IngredientList]{
			name: "resolver",
			fn: func(_ *schema.Input) (*IngredientList, error) {
				t.Error("resolver must not run for a direct match")
				return &IngredientList{}, nil
			},
		},
		lookup: lookup,
		search: search,
		math:   mealmath.New(),
	}
	breakdown, err := calc.Calculate(context.Background(), "Tofu", nil, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(breakdown.Ingredients) != 0 {
		t.Errorf("Expect single-item breakdown, but got %d ingredients", len(breakdown.Ingredients))
	}
	if breakdown.TotalCalories != 76 {
		t.Errorf("Expect 76 calories, but got %g", breakdown.TotalCalories)
	}
	if search.calls != 0 {
		t.Errorf("Expect 0 search calls, but got %d", search.calls)
	}
}

func TestCalculatorDatabaseValueReplacesEstimate(t *testing.T) {
	lookup := &stubLookup{matches: map[string]calorielookup.Match{
		"eggs": {FoodItem: "eggs", FoodCategory: "eggs", CaloriesPer100g: 155},
	}}
	calc := &Calculator{
		resolver: &stubAgent[schema.Input, IngredientList]{
			name: "resolver",
			fn: func(_ *schema.Input) (*IngredientList, error) {
				return &IngredientList{Ingredients: []Ingredient{
					{Name: "eggs", Quantity: "4 eggs", Grams: 200, Calories: 999},
					{Name: "saffron", Quantity: "1 pinch", Grams: 1, Calories: 3},
				}}, nil
			},
		},
		lookup: lookup,
		search: &stubSearch{results: breakfastSearchResults()},
		math:   mealmath.New(),
	}
	breakdown, err := calc.Calculate(context.Background(), "Egg Bake", nil, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	eggs := breakdown.Ingredients[0]
	if eggs.Calories != 310 {
		t.Errorf("Expect database-derived 310 calories for 200g, but got %g", eggs.Calories)
	}
	if !eggs.FromIndex {
		t.Error("Expect eggs marked as database derived")
	}
	// no database entry: the estimate survives
	saffron := breakdown.Ingredients[1]
	if saffron.Calories != 3 || saffron.FromIndex {
		t.Errorf("Expect saffron estimate kept, but got %+v", saffron)
	}
	if breakdown.TotalCalories != 313 {
		t.Errorf("Expect total 313, but got %g", breakdown.TotalCalories)
	}
}

func TestCalculatorLookupBudget(t *testing.T) {
	lookup := &stubLookup{matches: map[string]calorielookup.Match{}}
	manyIngredients := make([]Ingredient, 15)
	for i := range manyIngredients {
		manyIngredients[i] = Ingredient{
			Name:     fmt.Sprintf("ingredient-%d", i),
			Quantity: "10g",
			Grams:    10,
			Calories: 10,
		}
	}
	calc := &Calculator{
		resolver: &stubAgent[schema.Input, IngredientList]{
			name: "resolver",
			fn: func(_ *schema.Input) (*IngredientList, error) {
				return &IngredientList{Ingredients: manyIngredients}, nil
			},
		},
		lookup: lookup,
		search: &stubSearch{results: breakfastSearchResults()},
		math:   mealmath.New(),
	}
	breakdown, err := calc.Calculate(context.Background(), "Fifteen Ingredient Bowl", nil, nil)
	if err != nil {
		t.Fatalf("Expect graceful degradation past the budget, but got %v", err)
	}
	if lookup.calls != MaxCalorieLookups {
		t.Errorf("Expect exactly %d lookups, but got %d", MaxCalorieLookups, lookup.calls)
	}
	// estimates survive for the ingredients past the budget
	if breakdown.TotalCalories != 150 {
		t.Errorf("Expect total 150 from estimates, but got %g", breakdown.TotalCalories)
	}
}

func TestCalculatorTotalKeepsDuplicateIngredientNames(t *testing.T) {
	calc := &Calculator{
		resolver: &stubAgent[schema.Input, IngredientList]{
			name: "resolver",
			fn: func(_ *schema.Input) (*IngredientList, error) {
				return &IngredientList{Ingredients: []Ingredient{
					{Name: "egg", Quantity: "1 egg", Grams: 50, Calories: 78},
					{Name: "egg", Quantity: "1 egg", Grams: 50, Calories: 78},
					{Name: "spinach [fresh]", Quantity: "50g", Grams: 50, Calories: 11.5},
				}}, nil
			},
		},
		lookup: &stubLookup{},
		search: &stubSearch{results: breakfastSearchResults()},
		math:   mealmath.New(),
	}
	breakdown, err := calc.Calculate(context.Background(), "Spinach Omelette", nil, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if breakdown.TotalCalories != 167.5 {
		t.Errorf("Expect both eggs counted for a total of 167.5, but got %g", breakdown.TotalCalories)
	}
}

func TestPriceTotalExcludesUnavailable(t *testing.T) {
	pricer := &stubAgent[schema.Input, PricedMeal]{
		name: "pricer",
		fn: func(_ *schema.Input) (*PricedMeal, error) {
			return &PricedMeal{Items: []PricedIngredient{
				{Name: "eggs", Quantity: "1 dozen", Calories: 155, Price: 2},
				{Name: "salt", Quantity: "1 tsp", Calories: 0, PriceUnavailable: true},
			}}, nil
		},
	}
	checker := &PriceChecker{
		pricer: pricer,
		search: &stubSearch{results: []websearch.SearchResultItem{
			{Title: "Egg prices", URL: "https://example.com/eggs", Snippet: "$2 per dozen"},
		}},
		math: mealmath.New(),
	}
	breakdown := &NutritionBreakdown{
		Meal: "Boiled Eggs",
		Ingredients: []Ingredient{
			{Name: "eggs", Quantity: "2 eggs", Calories: 155},
			{Name: "salt", Quantity: "1 tsp", Calories: 0},
		},
		TotalCalories: 155,
	}
	priced, err := checker.Price(context.Background(), breakdown, nil, nil)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if priced.TotalPrice != 2 {
		t.Errorf("Expect total 2 excluding unavailable salt, but got %g", priced.TotalPrice)
	}
}
