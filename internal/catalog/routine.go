package catalog

import "github.com/supabase/pg-toolbelt-sub009/internal/ident"

// Parameter is one routine (function/procedure/aggregate transition fn) parameter.
type Parameter struct {
	Name         string
	DataType     string
	Mode         string // IN, OUT, INOUT, VARIADIC
	Position     int
	DefaultValue *string
}

// Function represents a CREATE FUNCTION object.
type Function struct {
	Schema            string
	Name              string
	Owner             string
	Comment           string
	ACL               []ACLEntry
	Definition        string
	ReturnType        string
	Language          string
	Parameters        []*Parameter
	Volatility        string // IMMUTABLE, STABLE, VOLATILE
	IsStrict          bool
	IsSecurityDefiner bool
	IsLeakproof       bool
	Parallel          string // SAFE, UNSAFE, RESTRICTED
	SearchPath        string
	Dependencies      []string // stable ids of functions this function's body calls
}

// Signature is the comma-joined, unqualified input-parameter type list used
// in the stable id (spec.md §3).
func (f *Function) Signature() string {
	return signatureOf(f.Parameters)
}

func (f *Function) StableID() string {
	return ident.StableID(ident.KindFunction, f.Schema, f.Name, f.Signature())
}

// Procedure represents a CREATE PROCEDURE object.
type Procedure struct {
	Schema     string
	Name       string
	Owner      string
	Comment    string
	ACL        []ACLEntry
	Definition string
	Language   string
	Parameters []*Parameter
}

func (p *Procedure) Signature() string { return signatureOf(p.Parameters) }

func (p *Procedure) StableID() string {
	return ident.StableID(ident.KindProcedure, p.Schema, p.Name, p.Signature())
}

// Aggregate represents a CREATE AGGREGATE object.
type Aggregate struct {
	Schema                   string
	Name                     string
	Owner                    string
	Comment                  string
	ACL                      []ACLEntry
	Parameters               []*Parameter
	ReturnType               string
	TransitionFunction       string
	TransitionFunctionSchema string
	StateType                string
	InitialCondition         string
	FinalFunction            string
	FinalFunctionSchema      string
}

func (a *Aggregate) Signature() string { return signatureOf(a.Parameters) }

func (a *Aggregate) StableID() string {
	return ident.StableID(ident.KindAggregate, a.Schema, a.Name, a.Signature())
}

func signatureOf(params []*Parameter) string {
	out := ""
	first := true
	for _, p := range params {
		if p.Mode == "OUT" || p.Mode == "TABLE" {
			continue
		}
		if !first {
			out += ","
		}
		out += p.DataType
		first = false
	}
	return out
}
