package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/atomic"

	"github.com/Joelfranklin96/nutrition-copilot/agents"
	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/systemprompt/cot"
	"github.com/Joelfranklin96/nutrition-copilot/schema"
	"github.com/Joelfranklin96/nutrition-copilot/tools"
	"github.com/Joelfranklin96/nutrition-copilot/tools/calorielookup"
	"github.com/Joelfranklin96/nutrition-copilot/tools/mealmath"
	"github.com/Joelfranklin96/nutrition-copilot/tools/websearch"
)

// MaxCalorieLookups caps database lookups per calculation. Hitting the cap
// stops further lookups; the calculation continues with the data gathered so
// far.
const MaxCalorieLookups = 10

// Calculator turns a meal name into a calorie breakdown. A single food item
// resolves directly against the nutrition database; composite meals have
// their ingredient list resolved through web search, then every ingredient is
// looked up in the database. Database values always replace search estimates.
type Calculator struct {
	resolver agents.TypeableAgent[schema.Input, IngredientList]
	lookup   tools.Tool[calorielookup.Input, calorielookup.Output]
	search   tools.Tool[websearch.Input, websearch.Output]
	math     tools.Tool[mealmath.Input, mealmath.Output]
	// mu serializes resolver runs: each run gets a fresh memory
	mu sync.Mutex
}

// ToolObserver receives a trace record for each tool invocation, so a
// transport can render execution steps. A nil observer disables tracing.
type ToolObserver func(components.ToolCall)

func (o ToolObserver) record(name, arguments string) {
	if o != nil {
		o(components.NewToolCall(name, arguments))
	}
}

func NewCalculator(
	lookup tools.Tool[calorielookup.Input, calorielookup.Output],
	search tools.Tool[websearch.Input, websearch.Output],
	agentOpts ...agents.Option,
) *Calculator {
	generator := cot.New(
		cot.WithBackground([]string{
			"You are a precise nutrition assistant specializing in calorie information.",
		}),
		cot.WithSteps([]string{
			"Read the meal name, the database lookup result and the recipe search results provided in the message.",
			"Identify the authentic ingredient list of the meal from the search results. Don't rely on your own knowledge.",
			"Give a specific quantity for each ingredient, with the amount in grams where possible.",
			"Estimate calories contributed by each ingredient quantity.",
		}),
		cot.WithOutputInstructs([]string{
			"List each ingredient with its quantity in grams and its calories for one serving.",
			"Be concise. If data is missing, state it clearly.",
		}),
	)
	agentOpts = append([]agents.Option{
		agents.WithName("CalorieCalculator"),
		agents.WithSystemPromptGenerator(generator),
	}, agentOpts...)
	return &Calculator{
		resolver: agents.NewAgent[schema.Input, IngredientList](agentOpts...),
		lookup:   lookup,
		search:   search,
		math:     mealmath.New(),
	}
}

// lookupCalories performs one budgeted database lookup.
func (c *Calculator) lookupCalories(ctx context.Context, budget *atomic.Int64, observe ToolObserver, query string) (*calorielookup.Output, error) {
	if budget.Dec() < 0 {
		return nil, ErrToolBudgetExceeded
	}
	input := calorielookup.NewInput(query)
	observe.record(c.lookup.Title(), input.String())
	return c.lookup.Run(ctx, input)
}

// normalizeFood lowercases and trims a food name for comparison.
func normalizeFood(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// directMatch reports whether the top lookup hit answers the meal query by
// itself, meaning the meal is a single food item already in the database.
func directMatch(meal string, out *calorielookup.Output) bool {
	if !out.Found() {
		return false
	}
	return normalizeFood(out.Matches[0].FoodItem) == normalizeFood(meal)
}

// Calculate produces the calorie breakdown for a meal. Lookups are capped at
// MaxCalorieLookups per call; past the cap the breakdown keeps the resolver's
// estimates for remaining ingredients.
func (c *Calculator) Calculate(ctx context.Context, meal string, apiResp *components.ApiResponse, observe ToolObserver) (*NutritionBreakdown, error) {
	budget := atomic.NewInt64(MaxCalorieLookups)

	direct, err := c.lookupCalories(ctx, budget, observe, meal)
	if err != nil {
		return nil, err
	}
	if directMatch(meal, direct) {
		m := direct.Matches[0]
		return &NutritionBreakdown{
			Meal:          meal,
			TotalCalories: m.CaloriesPer100g,
		}, nil
	}

	searchInput := websearch.NewInput(fmt.Sprintf("authentic recipe exact ingredients list with quantities for %s", meal))
	observe.record(c.search.Title(), searchInput.String())
	searchOut, err := c.search.Run(ctx, searchInput)
	if err != nil {
		return nil, err
	}

	list := new(IngredientList)
	if err := c.resolve(ctx, resolverInput(meal, direct, searchOut), list, apiResp); err != nil {
		return nil, err
	}

	for i := range list.Ingredients {
		ing := &list.Ingredients[i]
		out, err := c.lookupCalories(ctx, budget, observe, ing.Name)
		if errors.Is(err, ErrToolBudgetExceeded) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !out.Found() {
			continue
		}
		grams := ing.Grams
		if grams <= 0 {
			grams = 100
		}
		ing.Calories = out.Matches[0].CaloriesPer100g * grams / 100
		ing.FromIndex = true
	}

	breakdown := &NutritionBreakdown{
		Meal:        meal,
		Ingredients: list.Ingredients,
	}
	if len(list.Ingredients) > 0 {
		values := make([]float64, 0, len(list.Ingredients))
		for _, ing := range list.Ingredients {
			values = append(values, ing.Calories)
		}
		totalInput := mealmath.NewTotalInput(values)
		observe.record(c.math.Title(), totalInput.String())
		total, err := c.math.Run(ctx, totalInput)
		if err != nil {
			return nil, err
		}
		breakdown.TotalCalories = total.Result
	}
	return breakdown, nil
}

// resolve runs the resolver agent on a fresh memory. The prompt carries all
// meal context, so nothing from prior calls or other sessions leaks in.
func (c *Calculator) resolve(ctx context.Context, input *schema.Input, list *IngredientList, apiResp *components.ApiResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if binder, ok := c.resolver.(memoryBinder); ok {
		binder.SetMemory(components.NewMemory(0))
	}
	return c.resolver.Run(ctx, input, list, apiResp)
}

// resolverInput assembles the resolution prompt from the meal, the database
// lookup and the recipe search results.
func resolverInput(meal string, direct *calorielookup.Output, searchOut *websearch.Output) *schema.Input {
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "Meal: %s\n\n", meal)
	fmt.Fprintf(sb, "Database lookup result:\n%s\n\n", direct.Summary)
	sb.WriteString("Recipe search results:\n")
	for _, item := range searchOut.Results {
		fmt.Fprintf(sb, "- %s (%s): %s\n", item.Title, item.URL, item.Snippet)
	}
	return schema.NewInput(sb.String())
}
