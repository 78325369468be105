// Package store seeds the recipes database directly through gorm, with the
// same rows the SQL migration of package convert would produce.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"liora"
	"liora/convert"
)

var ErrUnknownDriver = errors.New("unknown database driver")

type Store struct {
	db     *gorm.DB
	tracer trace.Tracer
}

// Open connects with the "postgres" or "sqlite" driver.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return New(db), nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, tracer: otel.Tracer(liora.TracerNameSeeder)}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Ingredient{}, &Recipe{}, &RecipeIngredient{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

type SeedOptions struct {
	// Reset empties the three tables first.
	Reset bool
	// Servings is used for recipes that carry none. Zero means
	// convert.DefaultServings.
	Servings int
}

type SeedResult struct {
	Ingredients int
	Recipes     int
	Links       int
}

// Seed writes the recipes in one transaction. Ingredients that already
// exist are reused; repeated (recipe, ingredient) pairs update the quantity.
func (s *Store) Seed(ctx context.Context, recipes []liora.Recipe, opts SeedOptions) (SeedResult, error) {
	ctx, span := s.tracer.Start(ctx, "Store.Seed", trace.WithAttributes(
		attribute.Int("recipes", len(recipes)),
		attribute.Bool("reset", opts.Reset),
	))
	defer span.End()

	if opts.Servings <= 0 {
		opts.Servings = convert.DefaultServings
	}

	var res SeedResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Reset {
			if err := reset(tx); err != nil {
				return err
			}
		}

		ids, err := upsertIngredients(tx, convert.UniqueIngredients(recipes))
		if err != nil {
			return err
		}
		res.Ingredients = len(ids)

		for _, rec := range recipes {
			links, err := insertRecipe(tx, rec, ids, opts.Servings)
			if err != nil {
				return fmt.Errorf("recipe %q: %w", rec.Name, err)
			}
			res.Recipes++
			res.Links += links
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, "seed failed")
		span.RecordError(err)
		slog.Error("SEED: Transaction rolled back", "error", err)
		return SeedResult{}, err
	}

	slog.Info("SEED: Database seeded", "ingredients", res.Ingredients, "recipes", res.Recipes, "links", res.Links)
	return res, nil
}

func reset(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&RecipeIngredient{}, &Recipe{}, &Ingredient{}} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}

// upsertIngredients inserts the missing ingredients and returns the id of
// every name.
func upsertIngredients(tx *gorm.DB, ings []liora.Ingredient) (map[string]uint, error) {
	ids := make(map[string]uint, len(ings))
	if len(ings) == 0 {
		return ids, nil
	}

	rows := make([]Ingredient, len(ings))
	names := make([]string, len(ings))
	for i, ing := range ings {
		rows[i] = Ingredient{Name: ing.Name, Category: ing.Category}
		names[i] = ing.Name
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("insert ingredients: %w", err)
	}

	var stored []Ingredient
	if err := tx.Where("name IN ?", names).Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	for _, ing := range stored {
		ids[ing.Name] = ing.ID
	}
	return ids, nil
}

func insertRecipe(tx *gorm.DB, rec liora.Recipe, ids map[string]uint, servings int) (int, error) {
	if rec.Servings > 0 {
		servings = rec.Servings
	}
	prep := rec.PrepTime
	if prep == "" {
		prep = convert.DefaultPrepTime
	}

	n := rec.Nutrition
	row := Recipe{
		Name:          rec.Name,
		SideDish:      rec.SideDish,
		MealType:      strings.ToLower(rec.MealType),
		Category:      convert.MapCategory(rec.Category),
		Servings:      servings,
		Calories:      n.Calories,
		EnergyKJ:      n.EnergyKJ,
		Fats:          n.Fats,
		SaturatedFats: n.SaturatedFats,
		Carbohydrates: n.Carbohydrates,
		Sugars:        n.Sugars,
		Fiber:         n.Fiber,
		Proteins:      n.Proteins,
		PrepTime:      prep,
		Instructions:  Instructions(rec.Steps),
		URL:           rec.URL,
		PDFURL:        rec.PDFURL,
		ImageURL:      rec.ImageURL,
		CuisineType:   convert.MapCuisineType(rec.CuisineType),
	}
	if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}

	links := 0
	for _, ing := range convert.MergeIngredients(rec.Ingredients) {
		id, ok := ids[ing.Name]
		if !ok {
			return links, fmt.Errorf("ingredient %q was not stored", ing.Name)
		}
		link := RecipeIngredient{RecipeID: row.ID, IngredientID: id, Unit: string(ing.Unit)}
		if ing.Quantity.Numeric {
			v := ing.Quantity.Value
			link.Quantity = &v
		}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "ingredient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).Create(&link).Error; err != nil {
			return links, fmt.Errorf("link %q: %w", ing.Name, err)
		}
		links++
	}
	return links, nil
}

// Recipes loads every stored recipe with its ingredient lines.
func (s *Store) Recipes(ctx context.Context) ([]Recipe, error) {
	var out []Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	return out, nil
}
