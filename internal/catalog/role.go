package catalog

import "github.com/supabase/pg-toolbelt-sub009/internal/ident"

// Role represents a PostgreSQL role (spec.md §4.F "Role").
type Role struct {
	Name             string
	Superuser        bool
	CreateDB         bool
	CreateRole       bool
	Inherit          bool
	Login            bool
	Replication      bool
	BypassRLS        bool
	ConnectionLimit  int // -1 means unlimited
	Config           map[string]string // SET key -> value, ALTER ROLE ... SET
	MemberOf         []string          // roles this role is granted membership in
	Comment          string
}

func (r *Role) StableID() string { return ident.StableID(ident.KindRole, "", r.Name, "") }

// Collation represents a database collation object.
type Collation struct {
	Schema        string
	Name          string
	Owner         string
	Comment       string
	Provider      string // "libc", "icu", "builtin"
	Deterministic bool
	Encoding      string
	Collate       string
	Ctype         string
	Locale        string
	ICURules      string
	Version       string
}

func (c *Collation) StableID() string {
	return ident.StableID(ident.KindCollation, c.Schema, c.Name, "")
}

// Language represents a procedural language (CREATE LANGUAGE).
type Language struct {
	Name         string
	Owner        string
	Comment      string
	Trusted      bool
	Procedural   bool
	Handler      string
	InlineFn     string
	Validator    string
}

func (l *Language) StableID() string { return ident.StableID(ident.KindLanguage, "", l.Name, "") }

// Extension represents an installed extension.
type Extension struct {
	Name    string
	Schema  string
	Version string
	Cascade bool
	Comment string
}

func (e *Extension) StableID() string { return ident.StableID(ident.KindExtension, "", e.Name, "") }
