package catalog

import "github.com/supabase/pg-toolbelt-sub009/internal/ident"

// View represents a CREATE VIEW or CREATE MATERIALIZED VIEW object.
// Materialized is the sole axis the differ uses to pick ALTER-vs-drop+create
// semantics for a definition change (spec.md §4.F "View"/"Materialized view").
type View struct {
	Schema       string
	Name         string
	Owner        string
	Comment      string
	ACL          []ACLEntry
	Definition   string
	Materialized bool
	Options      map[string]string // reloptions, SET (...)/RESET (...)
	Indexes      map[string]*Index // matview-only
	ColumnComments map[string]string
}

func (v *View) StableID() string {
	if v.Materialized {
		return ident.StableID(ident.KindMaterializedView, v.Schema, v.Name, "")
	}
	return ident.StableID(ident.KindView, v.Schema, v.Name, "")
}

// Sequence represents a CREATE SEQUENCE object.
type Sequence struct {
	Schema        string
	Name          string
	Owner         string
	Comment       string
	ACL           []ACLEntry
	DataType      string
	StartValue    int64
	MinValue      *int64
	MaxValue      *int64
	Increment     int64
	Cache         int64
	CycleOption   bool
	OwnedByTable  string
	OwnedByColumn string
}

func (s *Sequence) StableID() string { return ident.StableID(ident.KindSequence, s.Schema, s.Name, "") }
