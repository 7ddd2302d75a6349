package models

import (
	"fmt"
	"time"
)

// Favorite marks a recipe as liked by a user; one row per (user, recipe).
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	CreatedAt time.Time `json:"-"`
}

func (Favorite) DefaultOrder() string {
	return "favorites.user_id"
}

func (f Favorite) String() string {
	return fmt.Sprintf("%s favorite recipes", userLabel(f.User, f.UserID))
}

// Cart puts a recipe into a user's shopping list; one row per (user, recipe).
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index" json:"recipe_id"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	CreatedAt time.Time `json:"-"`
}

func (Cart) DefaultOrder() string {
	return "carts.user_id"
}

func (c Cart) String() string {
	recipe := fmt.Sprintf("#%d", c.RecipeID)
	if c.Recipe != nil {
		recipe = c.Recipe.Name
	}
	return fmt.Sprintf("%s added %q to the shopping cart", userLabel(c.User, c.UserID), recipe)
}

func userLabel(u *User, id uint) string {
	if u == nil {
		return fmt.Sprintf("user #%d", id)
	}
	return u.String()
}
