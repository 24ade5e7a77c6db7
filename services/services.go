// Package services holds the application rules. Handlers translate HTTP to
// these calls; services translate store failures into models.Error values.
package services

import (
	"errors"
	"strings"

	"skillshare/models"
	"skillshare/store"
)

// storeError maps the store sentinels onto the error taxonomy.
func storeError(op string, err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound) && notFound != "":
		return models.NotFoundError("%s", notFound)
	case errors.Is(err, store.ErrDuplicate):
		return models.ConflictError("%s: already exists", op)
	}
	var me *models.Error
	if errors.As(err, &me) {
		return err
	}
	return models.InternalError(op, err)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
