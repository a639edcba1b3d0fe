package catalog

// ACLEntry is one grant record on an object (spec.md §3).
// Columns is nil for object-level grants and non-nil for the per-column
// (attribute-level) grants PostgreSQL allows on tables/views/matviews.
type ACLEntry struct {
	Grantee   string
	Privilege string
	Grantable bool
	Columns   []string
}

// ObjectKind names an ACL-bearing catalog object kind for default
// privilege projection and version-gated vocabulary lookups (spec.md §3, §4.D).
type ObjectKind string

const (
	ObjectKindSchema             ObjectKind = "schema"
	ObjectKindRole               ObjectKind = "role"
	ObjectKindTable              ObjectKind = "table"
	ObjectKindView               ObjectKind = "view"
	ObjectKindMaterializedView   ObjectKind = "materialized_view"
	ObjectKindSequence           ObjectKind = "sequence"
	ObjectKindFunction           ObjectKind = "function"
	ObjectKindProcedure          ObjectKind = "procedure"
	ObjectKindAggregate          ObjectKind = "aggregate"
	ObjectKindType               ObjectKind = "type"
	ObjectKindDomain             ObjectKind = "domain"
	ObjectKindLanguage           ObjectKind = "language"
	ObjectKindForeignDataWrapper ObjectKind = "foreign_data_wrapper"
	ObjectKindForeignServer      ObjectKind = "foreign_server"
)

// DefaultPrivilegeObjType is PostgreSQL's single-letter pg_default_acl.defaclobjtype
// code (spec.md §3).
type DefaultPrivilegeObjType byte

const (
	DefaclRelation DefaultPrivilegeObjType = 'r' // table, view, materialized_view
	DefaclSequence DefaultPrivilegeObjType = 'S'
	DefaclFunction DefaultPrivilegeObjType = 'f' // function, procedure, aggregate
	DefaclType     DefaultPrivilegeObjType = 'T' // type, domain, enum, range, composite_type
	DefaclSchema   DefaultPrivilegeObjType = 'n'
)

// ObjTypeForKind maps a catalog object kind to its default-privilege objtype code.
func ObjTypeForKind(kind ObjectKind) (DefaultPrivilegeObjType, bool) {
	switch kind {
	case ObjectKindTable, ObjectKindView, ObjectKindMaterializedView:
		return DefaclRelation, true
	case ObjectKindSequence:
		return DefaclSequence, true
	case ObjectKindFunction, ObjectKindProcedure, ObjectKindAggregate:
		return DefaclFunction, true
	case ObjectKindType, ObjectKindDomain:
		return DefaclType, true
	case ObjectKindSchema:
		return DefaclSchema, true
	default:
		return 0, false
	}
}

// DefaultPrivilegeGrant is one ALTER DEFAULT PRIVILEGES entry as it exists
// in a catalog snapshot, keyed by the role the defaults were defined FOR.
type DefaultPrivilegeGrant struct {
	ForRole   string
	ObjType   DefaultPrivilegeObjType
	InSchema  string // empty means the global (schema-less) default
	Grantee   string
	Privilege string
	Grantable bool
}
