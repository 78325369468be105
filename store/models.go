package store

import (
	"database/sql/driver"
	"errors"
	"time"

	"liora/convert"
)

// Instructions is stored as the {"Paso 1": ...} JSON object the SQL
// migration writes.
type Instructions []string

func (i Instructions) Value() (driver.Value, error) {
	return convert.InstructionsJSON(i)
}

func (i *Instructions) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*i = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported instructions column type")
	}
	steps, err := convert.ParseInstructions(data)
	if err != nil {
		return err
	}
	*i = steps
	return nil
}

type Ingredient struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:255;not null;uniqueIndex"`
	Category string `gorm:"size:100;not null"`
}

type Recipe struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	Name          string `gorm:"size:255;not null;index"`
	SideDish      string `gorm:"type:text"`
	MealType      string `gorm:"size:50"`
	Category      string `gorm:"size:50"`
	Servings      int
	Calories      float64
	EnergyKJ      float64 `gorm:"column:energy_kj"`
	Fats          float64
	SaturatedFats float64
	Carbohydrates float64
	Sugars        float64
	Fiber         float64
	Proteins      float64
	Sodium        float64
	PrepTime      string       `gorm:"size:50"`
	Instructions  Instructions `gorm:"type:jsonb"`
	URL           string       `gorm:"column:url;size:512"`
	PDFURL        string       `gorm:"column:pdf_url;size:512"`
	ImageURL      string       `gorm:"column:image_url;size:512"`
	CuisineType   string       `gorm:"size:50"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID"`
}

type RecipeIngredient struct {
	RecipeID     uint `gorm:"primaryKey"`
	IngredientID uint `gorm:"primaryKey"`
	// Quantity is NULL for amounts such as "al gusto".
	Quantity *float64
	Unit     string `gorm:"size:32;not null"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID"`
}
