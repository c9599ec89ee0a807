// Package model defines the declarative form schema consumed by the form
// synchronizer and renderers. A FormSpec is an ordered list of FieldSpec
// descriptors; each descriptor carries a tagged FieldKind (text, boolean,
// date, datetime, reference) instead of a type hierarchy, so renderers and the
// synchronizer can switch on the kind in a single loop. Validation rules use
// canonical identifiers (required, minLength/maxLength, pattern, email,
// equalTo) with string parameters: length limits encode their threshold in
// Params["value"], patterns keep the expression in Params["pattern"], and
// cross-field rules name the sibling in Params["field"]. Any rule may override
// its default message through Params["message"].
package model
