package catalog

import "errors"

var (
	// ErrCategoryNotFound is returned when a category id cannot be resolved.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNameExists is returned when a category with the same name already exists.
	ErrNameExists = errors.New("category name already exists")

	// ErrCategoryInUse is returned when deleting a category that incidents
	// still reference.
	ErrCategoryInUse = errors.New("category is referenced by incidents")

	// ErrAlreadyInactive is returned when deactivating an inactive category.
	ErrAlreadyInactive = errors.New("category is already inactive")

	// ErrNotInactive is returned when restoring an active category.
	ErrNotInactive = errors.New("category is not inactive")
)
