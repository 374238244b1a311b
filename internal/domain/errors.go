package domain

import "fmt"

// DuplicateNameError reports a blueprint name collision at creation time.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("blueprint name %q already exists", e.Name)
}

// NotFoundError reports that a referenced blueprint, instance, or template
// does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ProtectedResourceError reports an attempted mutation or deletion of a
// system-owned blueprint.
type ProtectedResourceError struct {
	Name string
}

func (e *ProtectedResourceError) Error() string {
	return fmt.Sprintf("blueprint %q is system-owned and cannot be modified or deleted", e.Name)
}

// CardinalityError reports an attempted second instance of a single-allowed
// blueprint on the same page.
type CardinalityError struct {
	PageID        string
	BlueprintName string
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("blueprint %q allows a single instance and page %q already has one", e.BlueprintName, e.PageID)
}

// InvalidPermutationError reports a malformed reorder request: wrong length,
// duplicate id, or an id that does not belong to the page.
type InvalidPermutationError struct {
	PageID string
	Reason string
}

func (e *InvalidPermutationError) Error() string {
	return fmt.Sprintf("invalid reorder permutation for page %q: %s", e.PageID, e.Reason)
}

// BlueprintNotFoundError reports a template section referencing a blueprint
// name that does not resolve at apply time.
type BlueprintNotFoundError struct {
	Name string
}

func (e *BlueprintNotFoundError) Error() string {
	return fmt.Sprintf("template references unknown blueprint %q", e.Name)
}
