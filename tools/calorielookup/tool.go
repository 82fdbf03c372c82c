// Package calorielookup exposes the nutrition index as a typed agent tool.
package calorielookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Joelfranklin96/nutrition-copilot/nutrition"
	"github.com/Joelfranklin96/nutrition-copilot/tools"
)

// Input Schema for input to a tool for looking up calorie information for
// foods and ingredients in the nutrition database.
type Input struct {
	// Query the food or ingredient to look up.
	Query string `json:"query" jsonschema:"title=query,description=Food or ingredient to look up calorie information for." validate:"required"`
	// MaxResults maximum number of matches to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"title=max_results,description=Maximum number of matches to return.,default=3"`
}

func NewInput(query string) *Input {
	return &Input{Query: query}
}

func (s Input) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Match is a single food entry returned from the nutrition database.
type Match struct {
	// FoodItem the matched food name.
	FoodItem string `json:"food_item" jsonschema:"title=food_item,description=The matched food name."`
	// FoodCategory the category the food belongs to.
	FoodCategory string `json:"food_category,omitempty" jsonschema:"title=food_category,description=The category the food belongs to."`
	// CaloriesPer100g calories per 100 grams of the food.
	CaloriesPer100g float64 `json:"calories_per_100g" jsonschema:"title=calories_per_100g,description=Calories per 100 grams of the food."`
	// ServingInfo serving size reference from the source data.
	ServingInfo string `json:"serving_info,omitempty" jsonschema:"title=serving_info,description=Serving size reference from the source data."`
}

// Output Schema for the output of the calorie lookup tool.
type Output struct {
	// Summary human readable lookup result for prompt assembly.
	Summary string `json:"summary" jsonschema:"title=summary,description=Human readable lookup result."`
	// Matches structured match entries ranked by relevance.
	Matches []Match `json:"matches,omitempty" jsonschema:"title=matches,description=Structured match entries ranked by relevance."`
}

func (s Output) String() string {
	return s.Summary
}

// Found reports whether the lookup produced any database matches.
func (s Output) Found() bool {
	return len(s.Matches) > 0
}

type Config struct {
	tools.Config
	maxResults int
}

// Tool answers calorie questions from the indexed nutrition database.
type Tool struct {
	Config
	index *nutrition.Index
}

type Option func(*Config)

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

func New(index *nutrition.Index, opts ...Option) *Tool {
	ret := &Tool{index: index}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("CalorieLookupTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Look up calorie information for foods and ingredients in the nutrition database.")
	}
	if ret.maxResults == 0 {
		ret.maxResults = 3
	}
	return ret
}

// Run executes the lookup. A query with no match is not an error: the summary
// carries a sentinel line the calling agent can recognize.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	k := input.MaxResults
	if k <= 0 || k > t.maxResults {
		k = t.maxResults
	}
	docs, _, err := t.index.Query(ctx, input.Query, k)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &Output{
			Summary: fmt.Sprintf("No nutrition information found for: %s", input.Query),
		}, nil
	}
	// a cases.Caser is stateful; build one per call
	title := cases.Title(language.English)
	matches := make([]Match, 0, len(docs))
	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		m := Match{
			FoodItem:        doc.FoodItem(),
			FoodCategory:    doc.FoodCategory(),
			CaloriesPer100g: doc.CaloriesPer100g(),
			ServingInfo:     doc.ServingInfo(),
		}
		matches = append(matches, m)
		lines = append(lines, fmt.Sprintf("%s (%s): %g calories per 100g", title.String(m.FoodItem), title.String(m.FoodCategory), m.CaloriesPer100g))
	}
	return &Output{
		Summary: "Nutrition Information:\n" + strings.Join(lines, "\n"),
		Matches: matches,
	}, nil
}
