// Package nutrition maintains the food knowledge base: ingestion of tabular
// nutrition data and the semantic retrieval index built from it.
package nutrition

import "strconv"

// Metadata keys attached to every indexed food document.
const (
	MetaFoodItem        = "food_item"
	MetaFoodCategory    = "food_category"
	MetaCaloriesPer100g = "calories_per_100g"
	MetaKJPer100g       = "kj_per_100g"
	MetaServingInfo     = "serving_info"
	MetaKeywords        = "keywords"
)

// Document is one indexed food item. Documents are immutable once indexed;
// identity is the ID.
type Document struct {
	ID   string            `json:"id"`
	Text string            `json:"text"`
	Meta map[string]string `json:"meta,omitempty"`
}

func (d Document) FoodItem() string {
	return d.Meta[MetaFoodItem]
}

func (d Document) FoodCategory() string {
	return d.Meta[MetaFoodCategory]
}

func (d Document) CaloriesPer100g() float64 {
	v, _ := strconv.ParseFloat(d.Meta[MetaCaloriesPer100g], 64)
	return v
}

func (d Document) KJPer100g() float64 {
	v, _ := strconv.ParseFloat(d.Meta[MetaKJPer100g], 64)
	return v
}

func (d Document) ServingInfo() string {
	return d.Meta[MetaServingInfo]
}
