package columnar

import "strings"

// Optimizations toggles engine optimizer passes for a single query.
// Disabled passes are listed in the session's disabled_optimizers.
type Optimizations struct {
	ProjectionPushdown bool
	PredicatePushdown  bool
	// TypeCoercion reads every column as VARCHAR, skipping type detection
	TypeCoercion  bool
	SimplifyExpr  bool
	FileCaching   bool
	SlicePushdown bool
	// CommSubexprElim enables common sub-expression elimination
	CommSubexprElim bool
	// Streaming drops insertion order so the scan can stream out of order
	Streaming      bool
	FastProjection bool
}

// DefaultOptimizations enables every pass
func DefaultOptimizations() Optimizations {
	return Optimizations{
		ProjectionPushdown: true,
		PredicatePushdown:  true,
		TypeCoercion:       true,
		SimplifyExpr:       true,
		FileCaching:        true,
		SlicePushdown:      true,
		CommSubexprElim:    true,
		Streaming:          true,
		FastProjection:     true,
	}
}

// disabled returns the engine optimizer names that must be turned off
func (o Optimizations) disabled() []string {
	passes := []struct {
		on   bool
		name string
	}{
		{o.ProjectionPushdown, "unused_columns"},
		{o.PredicatePushdown, "filter_pushdown"},
		{o.SimplifyExpr, "expression_rewriter"},
		{o.CommSubexprElim, "common_subexpressions"},
		{o.SlicePushdown, "top_n"},
		{o.FastProjection, "column_lifetime"},
	}

	var names []string
	for _, p := range passes {
		if !p.on {
			names = append(names, p.name)
		}
	}
	return names
}

func (o Optimizations) statements() []string {
	var stmts []string
	if names := o.disabled(); len(names) > 0 {
		stmts = append(stmts, "SET disabled_optimizers="+quoteLiteral(strings.Join(names, ",")))
	}
	if o.FileCaching {
		stmts = append(stmts, "SET enable_object_cache=true")
	}
	if o.Streaming {
		stmts = append(stmts, "SET preserve_insertion_order=false")
	}
	return stmts
}
