// Package models declares the persisted entities of the recipe service.
package models

// All returns every entity in dependency order, for schema migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Subscription{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&IngredientValue{},
		&Favorite{},
		&Cart{},
		&OAuthClient{},
		&OAuthCode{},
		&OAuthToken{},
	}
}
