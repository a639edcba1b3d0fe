package differs

import (
	"fmt"
	"strings"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Functions diffs CREATE FUNCTION objects. A definition or return-type
// change is CREATE OR REPLACE when the signature's input types are
// unchanged (the stable id, which embeds the signature, is by definition
// unchanged in an altered pair); every other attribute uses a targeted
// ALTER FUNCTION clause.
func Functions(ctx *Context, main, branch map[string]*catalog.Function) []*change.Change {
	mainByID := reindex(main, (*catalog.Function).StableID)
	branchByID := reindex(branch, (*catalog.Function).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, functionDataEqual)

	var out []*change.Change
	for _, f := range created {
		out = append(out, createFunction(ctx, f)...)
	}
	for _, f := range dropped {
		out = append(out, dropFunction(f))
	}
	for _, pair := range altered {
		out = append(out, alterFunction(ctx, pair.Old, pair.New)...)
	}
	return out
}

func functionDataEqual(a, b *catalog.Function) bool {
	return a.Definition == b.Definition && a.ReturnType == b.ReturnType && a.Language == b.Language &&
		a.Volatility == b.Volatility && a.IsStrict == b.IsStrict && a.IsSecurityDefiner == b.IsSecurityDefiner &&
		a.IsLeakproof == b.IsLeakproof && a.Parallel == b.Parallel && a.SearchPath == b.SearchPath &&
		a.Comment == b.Comment && aclEqual(a.ACL, b.ACL)
}

func paramList(params []*catalog.Parameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		s := ""
		if p.Mode != "" && p.Mode != "IN" {
			s += p.Mode + " "
		}
		if p.Name != "" {
			s += ident.Quote(p.Name) + " "
		}
		s += p.DataType
		if p.DefaultValue != nil {
			s += " DEFAULT " + *p.DefaultValue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func functionName(f *catalog.Function) string { return ident.FullyQualifyName(f.Schema, f.Name) }

func functionAttrClauses(f *catalog.Function) []string {
	var parts []string
	parts = append(parts, f.Volatility)
	if f.IsStrict {
		parts = append(parts, "STRICT")
	}
	if f.IsSecurityDefiner {
		parts = append(parts, "SECURITY DEFINER")
	}
	if f.IsLeakproof {
		parts = append(parts, "LEAKPROOF")
	}
	if f.Parallel != "" {
		parts = append(parts, "PARALLEL "+f.Parallel)
	}
	if f.SearchPath != "" {
		parts = append(parts, fmt.Sprintf("SET search_path = %s", f.SearchPath))
	}
	return parts
}

func createFunction(ctx *Context, f *catalog.Function) []*change.Change {
	id := f.StableID()
	sql := fmt.Sprintf("CREATE FUNCTION %s(%s) RETURNS %s LANGUAGE %s %s AS %s",
		functionName(f), paramList(f.Parameters), f.ReturnType, f.Language,
		strings.Join(functionAttrClauses(f), " "), ident.QuoteLiteral(f.Definition))

	var requires []string
	for _, dep := range f.Dependencies {
		requires = append(requires, dep)
	}
	out := []*change.Change{change.Create(string(catalog.ObjectKindFunction), id, sql, nil, requires)}
	if f.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindFunction), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON FUNCTION %s(%s) IS %s", functionName(f), f.Signature(), ident.QuoteLiteral(f.Comment)), []string{id}))
	}
	out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindFunction, f.Schema, string(catalog.ObjectKindFunction), id,
		objectACLRef(catalog.ObjectKindFunction, fmt.Sprintf("%s(%s)", functionName(f), f.Signature())), f.ACL)...)
	return out
}

func dropFunction(f *catalog.Function) *change.Change {
	return change.Drop(string(catalog.ObjectKindFunction), f.StableID(),
		fmt.Sprintf("DROP FUNCTION %s(%s)", functionName(f), f.Signature()))
}

func alterFunction(ctx *Context, old, new *catalog.Function) []*change.Change {
	id := new.StableID()
	var out []*change.Change

	if old.Definition != new.Definition || old.ReturnType != new.ReturnType || old.Language != new.Language {
		sql := fmt.Sprintf("CREATE OR REPLACE FUNCTION %s(%s) RETURNS %s LANGUAGE %s %s AS %s",
			functionName(new), paramList(new.Parameters), new.ReturnType, new.Language,
			strings.Join(functionAttrClauses(new), " "), ident.QuoteLiteral(new.Definition))
		out = append(out, change.Replace(string(catalog.ObjectKindFunction), id, sql, new.Dependencies))
	} else if attrsChanged := old.Volatility != new.Volatility || old.IsStrict != new.IsStrict ||
		old.IsSecurityDefiner != new.IsSecurityDefiner || old.IsLeakproof != new.IsLeakproof ||
		old.Parallel != new.Parallel || old.SearchPath != new.SearchPath; attrsChanged {
		out = append(out, change.Alter(string(catalog.ObjectKindFunction), id,
			fmt.Sprintf("ALTER FUNCTION %s(%s) %s", functionName(new), new.Signature(), strings.Join(functionAttrClauses(new), " ")), nil))
	}

	if c := diffComment(string(catalog.ObjectKindFunction), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON FUNCTION %s(%s) IS %s", functionName(new), new.Signature(), ident.QuoteLiteral(text))
		},
		func() string {
			return fmt.Sprintf("COMMENT ON FUNCTION %s(%s) IS NULL", functionName(new), new.Signature())
		}); c != nil {
		out = append(out, c)
	}
	out = append(out, reconcileACL(ctx, catalog.ObjectKindFunction, string(catalog.ObjectKindFunction), id,
		objectACLRef(catalog.ObjectKindFunction, fmt.Sprintf("%s(%s)", functionName(new), new.Signature())), old.ACL, new.ACL)...)
	return out
}

// Procedures diffs CREATE PROCEDURE objects, mirroring Functions minus the
// return-type and volatility/strict/parallel attributes procedures lack.
func Procedures(ctx *Context, main, branch map[string]*catalog.Procedure) []*change.Change {
	mainByID := reindex(main, (*catalog.Procedure).StableID)
	branchByID := reindex(branch, (*catalog.Procedure).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, func(a, b *catalog.Procedure) bool {
		return a.Definition == b.Definition && a.Language == b.Language && a.Comment == b.Comment && aclEqual(a.ACL, b.ACL)
	})

	var out []*change.Change
	for _, p := range created {
		out = append(out, createProcedure(ctx, p)...)
	}
	for _, p := range dropped {
		out = append(out, change.Drop(string(catalog.ObjectKindProcedure), p.StableID(),
			fmt.Sprintf("DROP PROCEDURE %s(%s)", ident.FullyQualifyName(p.Schema, p.Name), p.Signature())))
	}
	for _, pair := range altered {
		out = append(out, alterProcedure(ctx, pair.Old, pair.New)...)
	}
	return out
}

func createProcedure(ctx *Context, p *catalog.Procedure) []*change.Change {
	id := p.StableID()
	name := ident.FullyQualifyName(p.Schema, p.Name)
	sql := fmt.Sprintf("CREATE PROCEDURE %s(%s) LANGUAGE %s AS %s", name, paramList(p.Parameters), p.Language, ident.QuoteLiteral(p.Definition))
	out := []*change.Change{change.Create(string(catalog.ObjectKindProcedure), id, sql, nil, nil)}
	if p.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindProcedure), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON PROCEDURE %s(%s) IS %s", name, p.Signature(), ident.QuoteLiteral(p.Comment)), []string{id}))
	}
	out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindProcedure, p.Schema, string(catalog.ObjectKindProcedure), id,
		objectACLRef(catalog.ObjectKindProcedure, fmt.Sprintf("%s(%s)", name, p.Signature())), p.ACL)...)
	return out
}

func alterProcedure(ctx *Context, old, new *catalog.Procedure) []*change.Change {
	id := new.StableID()
	name := ident.FullyQualifyName(new.Schema, new.Name)
	var out []*change.Change
	if old.Definition != new.Definition || old.Language != new.Language {
		sql := fmt.Sprintf("CREATE OR REPLACE PROCEDURE %s(%s) LANGUAGE %s AS %s", name, paramList(new.Parameters), new.Language, ident.QuoteLiteral(new.Definition))
		out = append(out, change.Replace(string(catalog.ObjectKindProcedure), id, sql, nil))
	}
	if c := diffComment(string(catalog.ObjectKindProcedure), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON PROCEDURE %s(%s) IS %s", name, new.Signature(), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON PROCEDURE %s(%s) IS NULL", name, new.Signature()) }); c != nil {
		out = append(out, c)
	}
	out = append(out, reconcileACL(ctx, catalog.ObjectKindProcedure, string(catalog.ObjectKindProcedure), id,
		objectACLRef(catalog.ObjectKindProcedure, fmt.Sprintf("%s(%s)", name, new.Signature())), old.ACL, new.ACL)...)
	return out
}

// Aggregates diffs CREATE AGGREGATE objects. PostgreSQL has no ALTER
// AGGREGATE for the transition/final function facets, so any change to
// those is drop+create; comment and ACL changes are applied in place.
// Owner is not compared.
func Aggregates(ctx *Context, main, branch map[string]*catalog.Aggregate) []*change.Change {
	mainByID := reindex(main, (*catalog.Aggregate).StableID)
	branchByID := reindex(branch, (*catalog.Aggregate).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, func(a, b *catalog.Aggregate) bool {
		return a.TransitionFunction == b.TransitionFunction && a.StateType == b.StateType &&
			a.InitialCondition == b.InitialCondition && a.FinalFunction == b.FinalFunction &&
			a.Comment == b.Comment && aclEqual(a.ACL, b.ACL)
	})

	var out []*change.Change
	for _, a := range created {
		out = append(out, createAggregate(ctx, a)...)
	}
	for _, a := range dropped {
		out = append(out, dropAggregate(a))
	}
	for _, pair := range altered {
		o, n := pair.Old, pair.New
		if o.TransitionFunction == n.TransitionFunction && o.StateType == n.StateType &&
			o.InitialCondition == n.InitialCondition && o.FinalFunction == n.FinalFunction {
			id := n.StableID()
			ref := fmt.Sprintf("%s(%s)", ident.FullyQualifyName(n.Schema, n.Name), n.Signature())
			if c := diffComment(string(catalog.ObjectKindAggregate), id, ident.CommentID(id), o.Comment, n.Comment,
				func(text string) string { return "COMMENT ON AGGREGATE " + ref + " IS " + ident.QuoteLiteral(text) },
				func() string { return "COMMENT ON AGGREGATE " + ref + " IS NULL" }); c != nil {
				out = append(out, c)
			}
			out = append(out, reconcileACL(ctx, catalog.ObjectKindAggregate, string(catalog.ObjectKindAggregate), id,
				objectACLRef(catalog.ObjectKindAggregate, ref), o.ACL, n.ACL)...)
			continue
		}
		out = append(out, dropAggregate(pair.Old))
		out = append(out, createAggregate(ctx, pair.New)...)
	}
	return out
}

func createAggregate(ctx *Context, a *catalog.Aggregate) []*change.Change {
	id := a.StableID()
	name := ident.FullyQualifyName(a.Schema, a.Name)
	sql := fmt.Sprintf("CREATE AGGREGATE %s(%s) (SFUNC = %s, STYPE = %s", name, paramList(a.Parameters), a.TransitionFunction, a.StateType)
	if a.InitialCondition != "" {
		sql += fmt.Sprintf(", INITCOND = %s", ident.QuoteLiteral(a.InitialCondition))
	}
	if a.FinalFunction != "" {
		sql += ", FINALFUNC = " + a.FinalFunction
	}
	sql += ")"
	out := []*change.Change{change.Create(string(catalog.ObjectKindAggregate), id, sql, nil, nil)}
	if a.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindAggregate), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON AGGREGATE %s(%s) IS %s", name, a.Signature(), ident.QuoteLiteral(a.Comment)), []string{id}))
	}
	out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindAggregate, a.Schema, string(catalog.ObjectKindAggregate), id,
		objectACLRef(catalog.ObjectKindAggregate, fmt.Sprintf("%s(%s)", name, a.Signature())), a.ACL)...)
	return out
}

func dropAggregate(a *catalog.Aggregate) *change.Change {
	return change.Drop(string(catalog.ObjectKindAggregate), a.StableID(),
		fmt.Sprintf("DROP AGGREGATE %s(%s)", ident.FullyQualifyName(a.Schema, a.Name), a.Signature()))
}
