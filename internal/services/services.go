// Package services implements the domain operations of the recipe API on
// top of gorm. Every operation receives the calling principal explicitly.
package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts the package logger, e.g. from APP_ENV.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidReference    = errors.New("referenced object does not exist")
	ErrNoIngredients       = errors.New("recipe must contain at least one ingredient")
	ErrDuplicateIngredient = errors.New("ingredient listed more than once")
	ErrInvalidPassword     = errors.New("current password is incorrect")
)

// translate maps gorm errors onto the service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrInvalidReference
	}
	return err
}

func requireUser(p permissions.Principal) error {
	if !p.IsAuthenticated() {
		return permissions.ErrNotAuthenticated
	}
	return nil
}

// likePrefix escapes s for a LIKE pattern matching folded values starting
// with s.
func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return models.FoldName(r.Replace(s)) + "%"
}

func orderBy(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}
