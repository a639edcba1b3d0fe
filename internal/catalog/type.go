package catalog

import "github.com/supabase/pg-toolbelt-sub009/internal/ident"

// TypeKind is the sub-kind of a CREATE TYPE object.
type TypeKind string

const (
	TypeKindEnum      TypeKind = "ENUM"
	TypeKindComposite TypeKind = "COMPOSITE"
	TypeKindDomain    TypeKind = "DOMAIN"
	TypeKindRange     TypeKind = "RANGE"
)

// EnumValue is one labeled value in an enum type, in the sort order
// PostgreSQL assigns it (pg_enum.enumsortorder).
type EnumValue struct {
	Label     string
	SortOrder float64
}

// TypeColumn is one attribute of a composite type.
type TypeColumn struct {
	Name     string
	DataType string
	Position int
}

// DomainConstraint is a CHECK constraint attached to a domain.
type DomainConstraint struct {
	Name       string
	Definition string
	IsValid    bool
}

// Type represents a CREATE TYPE (enum/composite/range) or CREATE DOMAIN object.
// Only the fields relevant to Kind are populated.
type Type struct {
	Schema  string
	Name    string
	Owner   string
	Comment string
	ACL     []ACLEntry
	Kind    TypeKind

	// ENUM
	EnumValues []EnumValue

	// COMPOSITE
	Columns []*TypeColumn

	// DOMAIN
	BaseType    string
	NotNull     bool
	Default     string
	Constraints []*DomainConstraint
	Collation   string

	// RANGE
	SubType        string
	SubTypeOpClass string
	Collatable     bool
	Canonical      string
	SubtypeDiff    string
	Multirange     string
}

func (t *Type) kindTag() ident.Kind {
	switch t.Kind {
	case TypeKindEnum:
		return ident.KindEnum
	case TypeKindDomain:
		return ident.KindDomain
	case TypeKindRange:
		return ident.KindRange
	default:
		return ident.KindComposite
	}
}

func (t *Type) StableID() string { return ident.StableID(t.kindTag(), t.Schema, t.Name, "") }
