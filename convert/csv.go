package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"liora"
	"liora/units"
)

const byteOrderMark = "\ufeff"

// ReadCSV reads one recipe per row. A zero HeaderSet is detected from the
// header row. Empty ingredient slots and empty steps are skipped.
func ReadCSV(r io.Reader, hs HeaderSet) ([]liora.Recipe, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], byteOrderMark)
	}
	if hs.Name == "" {
		if hs, err = DetectHeaders(header); err != nil {
			return nil, err
		}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	var recipes []liora.Recipe
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		row := csvRow{index: index, record: record}
		if row.get(hs.Title) == "" {
			slog.Warn("CONVERT: Skipping row without a title", "line", line)
			continue
		}
		recipes = append(recipes, recipeFromRow(row, hs))
	}

	slog.Info("CONVERT: Read recipes", "headers", hs.Name, "count", len(recipes))
	return recipes, nil
}

type csvRow struct {
	index  map[string]int
	record []string
}

func (r csvRow) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func recipeFromRow(row csvRow, hs HeaderSet) liora.Recipe {
	rec := liora.Recipe{
		Name:        row.get(hs.Title),
		SideDish:    row.get(hs.SideDish),
		Source:      row.get(hs.Source),
		MealType:    row.get(hs.MealType),
		Category:    row.get(hs.Category),
		PrepTime:    row.get(hs.PrepTime),
		URL:         row.get(hs.URL),
		PDFURL:      row.get(hs.PDFURL),
		ImageURL:    row.get(hs.ImageURL),
		CuisineType: row.get(hs.CuisineType),
		Nutrition: liora.Nutrition{
			Calories:      nutritionValue(row.get(hs.Calories)),
			EnergyKJ:      nutritionValue(row.get(hs.EnergyKJ)),
			Fats:          nutritionValue(row.get(hs.Fats)),
			SaturatedFats: nutritionValue(row.get(hs.Saturated)),
			Carbohydrates: nutritionValue(row.get(hs.Carbs)),
			Sugars:        nutritionValue(row.get(hs.Sugars)),
			Fiber:         nutritionValue(row.get(hs.Fiber)),
			Proteins:      nutritionValue(row.get(hs.Proteins)),
		},
	}
	if rec.MealType == "" {
		rec.MealType = hs.DefaultMealType
	}

	for i := 1; i <= IngredientSlots; i++ {
		name := row.get(hs.Ingredient(i))
		if name == "" {
			continue
		}
		q := units.Parse(row.get(hs.Quantity(i)))
		rec.Ingredients = append(rec.Ingredients, liora.Ingredient{
			Name:     name,
			Quantity: q.Amount,
			Unit:     q.Unit,
			Category: row.get(hs.FoodType(i)),
		})
	}

	for j := 1; j <= StepSlots; j++ {
		if step := row.get(hs.Step(j)); step != "" {
			rec.Steps = append(rec.Steps, step)
		}
	}
	return rec
}

// nutritionValue reads cells such as "250 kcal" or "12,5 g".
func nutritionValue(cell string) float64 {
	token := strings.ReplaceAll(NumericValue(cell), ",", ".")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		slog.Warn("CONVERT: Unreadable nutrition value", "value", cell)
		return 0
	}
	return v
}
