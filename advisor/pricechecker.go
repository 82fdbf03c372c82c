package advisor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Joelfranklin96/nutrition-copilot/agents"
	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/systemprompt/cot"
	"github.com/Joelfranklin96/nutrition-copilot/schema"
	"github.com/Joelfranklin96/nutrition-copilot/tools"
	"github.com/Joelfranklin96/nutrition-copilot/tools/mealmath"
	"github.com/Joelfranklin96/nutrition-copilot/tools/webpage"
	"github.com/Joelfranklin96/nutrition-copilot/tools/websearch"
)

// PriceChecker resolves a realistic retail price for every ingredient of a
// breakdown and formats the final user-facing recommendation. Ingredients
// whose price cannot be resolved are listed but excluded from the total.
type PriceChecker struct {
	pricer agents.TypeableAgent[schema.Input, PricedMeal]
	search tools.Tool[websearch.Input, websearch.Output]
	page   tools.Tool[webpage.Input, webpage.Output]
	math   tools.Tool[mealmath.Input, mealmath.Output]
	// mu serializes pricer runs: each run gets a fresh memory
	mu sync.Mutex
}

type PriceCheckerOption func(*PriceChecker)

// WithPricePageReader sets a webpage reader used when search snippets carry
// no usable text.
func WithPricePageReader(page tools.Tool[webpage.Input, webpage.Output]) PriceCheckerOption {
	return func(c *PriceChecker) {
		c.page = page
	}
}

func NewPriceChecker(
	search tools.Tool[websearch.Input, websearch.Output],
	agentOpts []agents.Option,
	opts ...PriceCheckerOption,
) *PriceChecker {
	generator := cot.New(
		cot.WithBackground([]string{
			"You are a price research specialist for breakfast ingredients.",
		}),
		cot.WithSteps([]string{
			"Read the meal data and the price search results provided in the message.",
			"Resolve a current, realistic grocery price for each ingredient. Use average prices if there's variation.",
			"Specify the quantity you're pricing, e.g. '1 dozen eggs' not just 'eggs'.",
			"If a price isn't available, mark the ingredient price unavailable instead of guessing.",
		}),
		cot.WithOutputInstructs([]string{
			"Return every ingredient with its quantity, calories and resolved price in dollars.",
			"Be practical: focus on useful information, not decorative text.",
		}),
	)
	agentOpts = append([]agents.Option{
		agents.WithName("BreakfastPriceChecker"),
		agents.WithSystemPromptGenerator(generator),
	}, agentOpts...)
	ret := &PriceChecker{
		pricer: agents.NewAgent[schema.Input, PricedMeal](agentOpts...),
		search: search,
		math:   mealmath.New(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Price resolves prices for a breakdown and renders the final markdown. The
// total always comes from computation over the resolved items, never from the
// model.
func (c *PriceChecker) Price(ctx context.Context, breakdown *NutritionBreakdown, apiResp *components.ApiResponse, observe ToolObserver) (*PricedMeal, error) {
	ingredients := breakdown.Ingredients
	if len(ingredients) == 0 {
		ingredients = []Ingredient{{
			Name:     breakdown.Meal,
			Quantity: "100g",
			Calories: breakdown.TotalCalories,
		}}
	}

	sb := new(strings.Builder)
	fmt.Fprintf(sb, "Meal: %s\nTotal calories: %g\n\nIngredients and price search results:\n", breakdown.Meal, breakdown.TotalCalories)
	for _, ing := range ingredients {
		fmt.Fprintf(sb, "\n%s (%s, %g calories):\n", ing.Name, ing.Quantity, ing.Calories)
		results, err := c.searchPrice(ctx, ing, observe)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			sb.WriteString("- no price results found\n")
			continue
		}
		for _, line := range results {
			fmt.Fprintf(sb, "- %s\n", line)
		}
	}

	priced := new(PricedMeal)
	if err := c.resolve(ctx, schema.NewInput(sb.String()), priced, apiResp); err != nil {
		return nil, err
	}
	priced.Meal = breakdown.Meal

	values := make([]float64, 0, len(priced.Items))
	for _, item := range priced.Items {
		if item.PriceUnavailable {
			continue
		}
		values = append(values, item.Price)
	}
	if len(values) > 0 {
		totalInput := mealmath.NewTotalInput(values)
		observe.record(c.math.Title(), totalInput.String())
		total, err := c.math.Run(ctx, totalInput)
		if err != nil {
			return nil, err
		}
		priced.TotalPrice = total.Result
	} else {
		priced.TotalPrice = 0
	}
	priced.Summary = renderSummary(priced)
	return priced, nil
}

// resolve runs the pricer agent on a fresh memory. The prompt carries all
// meal context, so nothing from prior calls or other sessions leaks in.
func (c *PriceChecker) resolve(ctx context.Context, input *schema.Input, priced *PricedMeal, apiResp *components.ApiResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if binder, ok := c.pricer.(memoryBinder); ok {
		binder.SetMemory(components.NewMemory(0))
	}
	return c.pricer.Run(ctx, input, priced, apiResp)
}

// searchPrice runs one price search for an ingredient, falling back to the
// top result's page content when snippets are empty.
func (c *PriceChecker) searchPrice(ctx context.Context, ing Ingredient, observe ToolObserver) ([]string, error) {
	query := fmt.Sprintf("current grocery store price of %s %s", ing.Quantity, ing.Name)
	input := websearch.NewInput(query)
	observe.record(c.search.Title(), input.String())
	out, err := c.search.Run(ctx, input)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(out.Results))
	for _, item := range out.Results {
		if item.Snippet == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", item.Title, item.Snippet))
	}
	if len(lines) == 0 && len(out.Results) > 0 && c.page != nil {
		pageInput := webpage.NewInput(out.Results[0].URL)
		observe.record(c.page.Title(), pageInput.String())
		page, err := c.page.Run(ctx, pageInput)
		if err == nil && page.Content != "" {
			lines = append(lines, tools.Truncate(page.Content, 500))
		}
	}
	return lines, nil
}

// renderSummary formats the final user-facing markdown listing.
func renderSummary(priced *PricedMeal) string {
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "## %s\n\n", priced.Meal)
	sb.WriteString("| Ingredient | Quantity | Calories | Price |\n")
	sb.WriteString("| --- | --- | --- | --- |\n")
	for _, item := range priced.Items {
		price := fmt.Sprintf("$%.2f", item.Price)
		if item.PriceUnavailable {
			price = "Price unavailable"
		}
		fmt.Fprintf(sb, "| %s | %s | %g | %s |\n", item.Name, item.Quantity, item.Calories, price)
	}
	fmt.Fprintf(sb, "\n**Total Cost**: $%.2f\n", priced.TotalPrice)
	return sb.String()
}
