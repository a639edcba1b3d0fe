// Package catalog holds the typed catalog object model (spec.md §3): one
// struct per object kind, each exposing a stable id, an identity tuple,
// and a set of mutable data fields. Catalog values are immutable once
// built by extraction (out of scope here, per spec.md §1) and are
// discarded after planning — no I/O occurs in this package.
package catalog

import "github.com/supabase/pg-toolbelt-sub009/internal/ident"

// Catalog is one complete snapshot: either the "main" (current) or
// "branch" (desired) side of a plan.
type Catalog struct {
	DatabaseVersion string

	Schemas  map[string]*Schema // schema name -> Schema
	Roles    map[string]*Role   // role name -> Role

	Collations          map[string]*Collation
	Languages           map[string]*Language
	Extensions          map[string]*Extension
	ForeignDataWrappers map[string]*ForeignDataWrapper
	ForeignServers      map[string]*ForeignServer
	Subscriptions       map[string]*Subscription
	Publications        map[string]*Publication
	EventTriggers       map[string]*EventTrigger

	// DefaultPrivileges is the seed state for component E: the
	// ALTER DEFAULT PRIVILEGES entries visible in this catalog, keyed by
	// granting role. Planning mutates a *copy* of the projection derived
	// from this; the Catalog value itself stays immutable.
	DefaultPrivileges []DefaultPrivilegeGrant
}

// NewCatalog returns an empty, fully initialized Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Schemas:             make(map[string]*Schema),
		Roles:               make(map[string]*Role),
		Collations:          make(map[string]*Collation),
		Languages:           make(map[string]*Language),
		Extensions:          make(map[string]*Extension),
		ForeignDataWrappers: make(map[string]*ForeignDataWrapper),
		ForeignServers:      make(map[string]*ForeignServer),
		Subscriptions:       make(map[string]*Subscription),
		Publications:        make(map[string]*Publication),
		EventTriggers:       make(map[string]*EventTrigger),
	}
}

// Schema is a namespace: it owns tables, views, materialized views,
// routines, aggregates, sequences and types declared within it.
type Schema struct {
	Name    string
	Owner   string
	Comment string
	ACL     []ACLEntry

	Tables             map[string]*Table
	Views              map[string]*View
	MaterializedViews  map[string]*View
	Functions          map[string]*Function
	Procedures         map[string]*Procedure
	Aggregates         map[string]*Aggregate
	Sequences          map[string]*Sequence
	Types              map[string]*Type
}

// StableID implements the stable-id grammar for a schema object.
func (s *Schema) StableID() string { return ident.StableID(ident.KindSchema, "", s.Name, "") }

func newSchema(name string) *Schema {
	return &Schema{
		Name:              name,
		Tables:            make(map[string]*Table),
		Views:             make(map[string]*View),
		MaterializedViews: make(map[string]*View),
		Functions:         make(map[string]*Function),
		Procedures:        make(map[string]*Procedure),
		Aggregates:        make(map[string]*Aggregate),
		Sequences:         make(map[string]*Sequence),
		Types:             make(map[string]*Type),
	}
}

// GetOrCreateSchema returns the named schema, creating it if absent.
func (c *Catalog) GetOrCreateSchema(name string) *Schema {
	if s, ok := c.Schemas[name]; ok {
		return s
	}
	s := newSchema(name)
	c.Schemas[name] = s
	return s
}
