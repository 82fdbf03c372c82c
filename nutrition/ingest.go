package nutrition

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// Row is one record of the tabular nutrition source.
type Row struct {
	FoodItem     string `validate:"required"`
	FoodCategory string
	// CalsPer100g carries the raw cell value, possibly with a " cal" suffix
	CalsPer100g string
	// KJPer100g carries the raw cell value, possibly with a " kJ" suffix
	KJPer100g string
	// ServingInfo is the serving size reference text
	ServingInfo string
}

var rowValidator = validator.New()

// parseEnergy strips a unit suffix and parses the remainder.
// Malformed or missing values default to 0.
func parseEnergy(raw, suffix string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, suffix, ""))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ToDocument converts a source row into a searchable document. The document
// text mirrors the layout the index was tuned on; metadata keeps the exact
// fields agents read back.
func (r Row) ToDocument(index int) Document {
	calories := parseEnergy(r.CalsPer100g, " cal")
	kj := parseEnergy(r.KJPer100g, " kJ")
	item := strings.ToLower(strings.TrimSpace(r.FoodItem))
	category := strings.ToLower(strings.TrimSpace(r.FoodCategory))
	text := fmt.Sprintf(`Food: %s
Category: %s
Nutritional Information:
- Calories: %g per 100g
- Energy: %g kJ per 100g
- Serving size reference: %s

This is a %s food item that provides %g calories per 100 grams.`,
		r.FoodItem, r.FoodCategory, calories, kj, r.ServingInfo, category, calories)
	return Document{
		ID:   fmt.Sprintf("food_%d", index),
		Text: text,
		Meta: map[string]string{
			MetaFoodItem:        item,
			MetaFoodCategory:    category,
			MetaCaloriesPer100g: strconv.FormatFloat(calories, 'f', -1, 64),
			MetaKJPer100g:       strconv.FormatFloat(kj, 'f', -1, 64),
			MetaServingInfo:     r.ServingInfo,
			MetaKeywords:        strings.ReplaceAll(item+" "+category, " ", "_"),
		},
	}
}

// Documents converts rows into indexable documents, skipping rows that fail
// validation (a food item name is required).
func Documents(rows []Row) []Document {
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		if err := rowValidator.Struct(row); err != nil {
			continue
		}
		docs = append(docs, row.ToDocument(len(docs)))
	}
	return docs
}

// source column headers
const (
	colFoodItem     = "FoodItem"
	colFoodCategory = "FoodCategory"
	colCals         = "Cals_per100grams"
	colKJ           = "KJ_per100grams"
	colServing      = "per100grams"
)

func rowsFromCells(header []string, lines [][]string) []Row {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	cell := func(line []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(line) {
			return ""
		}
		return line[i]
	}
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, Row{
			FoodItem:     cell(line, colFoodItem),
			FoodCategory: cell(line, colFoodCategory),
			CalsPer100g:  cell(line, colCals),
			KJPer100g:    cell(line, colKJ),
			ServingInfo:  cell(line, colServing),
		})
	}
	return rows
}

// ParseCSV reads nutrition rows from CSV with a header line.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return rowsFromCells(records[0], records[1:]), nil
}

// ParseXLSX reads nutrition rows from the first sheet of a spreadsheet.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(cells) == 0 {
		return nil, nil
	}
	return rowsFromCells(cells[0], cells[1:]), nil
}

// Parse sniffs the source format and dispatches to the matching parser.
func Parse(r io.Reader) ([]Row, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	kind := mimetype.Detect(buf)
	if kind.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet") || kind.Is("application/zip") {
		return ParseXLSX(bytes.NewReader(buf))
	}
	return ParseCSV(bytes.NewReader(buf))
}
