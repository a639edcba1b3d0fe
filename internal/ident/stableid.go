package ident

import "strings"

// Kind is the tag that prefixes every stable id (spec.md §3).
type Kind string

const (
	KindSchema             Kind = "schema"
	KindRole               Kind = "role"
	KindCollation          Kind = "collation"
	KindLanguage           Kind = "language"
	KindExtension          Kind = "extension"
	KindForeignDataWrapper Kind = "foreign_data_wrapper"
	KindForeignServer      Kind = "foreign_server"
	KindType               Kind = "type"
	KindEnum               Kind = "enum"
	KindDomain             Kind = "domain"
	KindRange              Kind = "range"
	KindComposite          Kind = "composite_type"
	KindSequence           Kind = "sequence"
	KindTable              Kind = "table"
	KindView               Kind = "view"
	KindMaterializedView   Kind = "materialized_view"
	KindIndex              Kind = "index"
	KindFunction           Kind = "function"
	KindProcedure          Kind = "procedure"
	KindAggregate          Kind = "aggregate"
	KindTrigger            Kind = "trigger"
	KindEventTrigger       Kind = "event_trigger"
	KindPolicy             Kind = "policy"
	KindPublication        Kind = "publication"
	KindSubscription       Kind = "subscription"
)

// StableID builds "<kind>:<schema>.<name>[(signature)]". schema may be
// empty for cluster-wide objects (role, extension, subscription, ...).
// Stable ids are never quoted: they are an internal key, not SQL text.
func StableID(kind Kind, schema, name, signature string) string {
	var b strings.Builder
	b.WriteString(string(kind))
	b.WriteByte(':')
	if schema != "" {
		b.WriteString(schema)
		b.WriteByte('.')
	}
	b.WriteString(name)
	if signature != "" {
		b.WriteByte('(')
		b.WriteString(signature)
		b.WriteByte(')')
	}
	return b.String()
}

// AuxKind enumerates the auxiliary id namespaces spec.md §3 defines
// outside the catalog-object-kind namespace.
type AuxKind string

const (
	AuxACL     AuxKind = "acl"
	AuxSchema  AuxKind = "schema"
	AuxRole    AuxKind = "role"
	AuxComment AuxKind = "comment"
	AuxKey     AuxKind = "key"
)

// ACLID builds the acl:<object-stable-id>::grantee:<role> auxiliary id.
func ACLID(objectStableID, grantee string) string {
	return "acl:" + objectStableID + "::grantee:" + grantee
}

// RoleID builds the role:<name> auxiliary id used by GRANT/REVOKE requires.
func RoleID(role string) string {
	return string(AuxRole) + ":" + role
}

// SchemaID builds the schema:<name> auxiliary id.
func SchemaID(schema string) string {
	return string(AuxSchema) + ":" + schema
}

// CommentID builds the comment:<qualified-name> auxiliary id.
func CommentID(qualifiedName string) string {
	return string(AuxComment) + ":" + qualifiedName
}

// KeyID builds the key:<table>(<col,col,...>) auxiliary id surfaced for
// unique/primary-key columns so foreign keys can depend on them.
func KeyID(table string, columns []string) string {
	return string(AuxKey) + ":" + table + "(" + strings.Join(columns, ",") + ")"
}
