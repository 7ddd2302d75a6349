// Package admin is the staff back office: a static registry describing how
// each entity is listed, filtered and edited, plus the operations behind it.
package admin

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel sets the log level for the admin package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Inline is a child model edited together with its parent.
type Inline struct {
	Model  string `json:"model"`
	MinNum int    `json:"min_num"`
}

// ModelAdmin describes one registered entity.
type ModelAdmin struct {
	Name           string   `json:"name"`
	ListDisplay    []string `json:"list_display"`
	ListFilter     []string `json:"list_filter,omitempty"`
	ReadonlyFields []string `json:"readonly_fields,omitempty"`
	Inlines        []Inline `json:"inlines,omitempty"`

	table   string
	order   string
	model   func() interface{}
	joins   []string
	columns map[string]string
	filters map[string]filterFunc
}

type filterFunc func(tx *gorm.DB, value string) *gorm.DB

func equals(column string) filterFunc {
	return func(tx *gorm.DB, value string) *gorm.DB {
		return tx.Where(column+" = ?", value)
	}
}

const (
	// IngredientInlineMinNum is the least number of ingredient rows a recipe keeps.
	IngredientInlineMinNum = 1

	inFavoritesColumn = "(SELECT COUNT(*) FROM favorites WHERE favorites.recipe_id = recipes.id)"
)

var registry = []ModelAdmin{
	{
		Name:           "recipes",
		ListDisplay:    []string{"id", "name", "author", "in_favorites"},
		ListFilter:     []string{"author", "name", "tags"},
		ReadonlyFields: []string{"in_favorites"},
		Inlines:        []Inline{{Model: "ingredient_values", MinNum: IngredientInlineMinNum}},
		table:          "recipes",
		order:          models.Recipe{}.DefaultOrder(),
		model:          func() interface{} { return &models.Recipe{} },
		joins:          []string{"JOIN users ON users.id = recipes.author_id"},
		columns: map[string]string{
			"id":           "recipes.id",
			"name":         "recipes.name",
			"author":       "users.username",
			"in_favorites": inFavoritesColumn,
		},
		filters: map[string]filterFunc{
			"author": equals("recipes.author_id"),
			"name":   equals("recipes.name"),
			"tags": func(tx *gorm.DB, value string) *gorm.DB {
				return tx.Where("recipes.id IN (SELECT recipe_tags.recipe_id FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id WHERE tags.slug = ?)", value)
			},
		},
	},
	{
		Name:        "ingredients",
		ListDisplay: []string{"name", "measurement_unit"},
		table:       "ingredients",
		order:       models.Ingredient{}.DefaultOrder(),
		model:       func() interface{} { return &models.Ingredient{} },
		columns: map[string]string{
			"name":             "ingredients.name",
			"measurement_unit": "ingredients.measurement_unit",
		},
	},
	{
		Name:        "tags",
		ListDisplay: []string{"name", "color"},
		table:       "tags",
		order:       models.Tag{}.DefaultOrder(),
		model:       func() interface{} { return &models.Tag{} },
		columns: map[string]string{
			"name":  "tags.name",
			"color": "tags.color",
		},
	},
	{
		Name:        "ingredient_values",
		ListDisplay: []string{"recipe", "ingredient", "amount"},
		table:       "ingredient_values",
		order:       models.IngredientValue{}.DefaultOrder(),
		model:       func() interface{} { return &models.IngredientValue{} },
		joins: []string{
			"JOIN recipes ON recipes.id = ingredient_values.recipe_id",
			"JOIN ingredients ON ingredients.id = ingredient_values.ingredient_id",
		},
		columns: map[string]string{
			"recipe":     "recipes.name",
			"ingredient": "ingredients.name || ', ' || ingredients.measurement_unit",
			"amount":     "ingredient_values.amount",
		},
	},
	{
		Name:        "carts",
		ListDisplay: []string{"user", "recipe"},
		table:       "carts",
		order:       models.Cart{}.DefaultOrder(),
		model:       func() interface{} { return &models.Cart{} },
		joins: []string{
			"JOIN users ON users.id = carts.user_id",
			"JOIN recipes ON recipes.id = carts.recipe_id",
		},
		columns: map[string]string{
			"user":   "users.username",
			"recipe": "recipes.name",
		},
	},
	{
		Name:        "favorites",
		ListDisplay: []string{"user", "recipe"},
		table:       "favorites",
		order:       models.Favorite{}.DefaultOrder(),
		model:       func() interface{} { return &models.Favorite{} },
		joins: []string{
			"JOIN users ON users.id = favorites.user_id",
			"JOIN recipes ON recipes.id = favorites.recipe_id",
		},
		columns: map[string]string{
			"user":   "users.username",
			"recipe": "recipes.name",
		},
	},
	{
		Name:        "users",
		ListDisplay: []string{"username", "id", "email", "first_name", "last_name"},
		ListFilter:  []string{"email", "first_name"},
		table:       "users",
		order:       models.User{}.DefaultOrder(),
		model:       func() interface{} { return &models.User{} },
		columns: map[string]string{
			"username":   "users.username",
			"id":         "users.id",
			"email":      "users.email",
			"first_name": "users.first_name",
			"last_name":  "users.last_name",
		},
		filters: map[string]filterFunc{
			"email":      equals("users.email"),
			"first_name": equals("users.first_name"),
		},
	},
	{
		Name:        "subscriptions",
		ListDisplay: []string{"user", "author"},
		table:       "subscriptions",
		order:       models.Subscription{}.DefaultOrder(),
		model:       func() interface{} { return &models.Subscription{} },
		joins: []string{
			"JOIN users AS followers ON followers.id = subscriptions.user_id",
			"JOIN users AS authors ON authors.id = subscriptions.author_id",
		},
		columns: map[string]string{
			"user":   "followers.username",
			"author": "authors.username",
		},
	},
}

// Registry returns the registered entities in display order.
func Registry() []ModelAdmin {
	out := make([]ModelAdmin, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a registered entity by name.
func Lookup(name string) (ModelAdmin, bool) {
	for _, m := range registry {
		if m.Name == name {
			return m, true
		}
	}
	return ModelAdmin{}, false
}
