// Package ident implements SQL identifier and literal quoting, and the
// stable-id grammar used throughout the planner (spec.md §3, §4.A).
package ident

import (
	"strings"
	"unicode"
)

// reservedWords are PostgreSQL reserved words that require double-quoting
// when used as an unquoted identifier would otherwise be parsed as a keyword.
// Based on the PostgreSQL key word appendix.
var reservedWords = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "asymmetric": true, "authorization": true,
	"between": true, "bigint": true, "binary": true, "boolean": true, "both": true,
	"case": true, "cast": true, "char": true, "character": true, "check": true,
	"collate": true, "collation": true, "column": true, "concurrently": true,
	"constraint": true, "create": true, "cross": true, "current_catalog": true,
	"current_date": true, "current_role": true, "current_schema": true,
	"current_time": true, "current_timestamp": true, "current_user": true,
	"default": true, "deferrable": true, "desc": true, "distinct": true, "do": true,
	"else": true, "end": true, "except": true, "exists": true, "false": true,
	"fetch": true, "filter": true, "for": true, "foreign": true, "freeze": true,
	"from": true, "full": true, "grant": true, "group": true, "having": true,
	"ilike": true, "in": true, "initially": true, "inner": true, "insert": true,
	"intersect": true, "into": true, "is": true, "isnull": true, "join": true,
	"lateral": true, "leading": true, "left": true, "like": true, "limit": true,
	"localtime": true, "localtimestamp": true, "natural": true, "not": true,
	"notnull": true, "null": true, "offset": true, "on": true, "only": true,
	"or": true, "order": true, "outer": true, "overlaps": true, "placing": true,
	"primary": true, "references": true, "returning": true, "right": true,
	"select": true, "session_user": true, "similar": true, "some": true,
	"symmetric": true, "system_user": true, "table": true, "tablesample": true,
	"then": true, "to": true, "trailing": true, "true": true, "union": true,
	"unique": true, "update": true, "user": true, "using": true, "variadic": true,
	"verbose": true, "when": true, "where": true, "window": true, "with": true,
}

// NeedsQuoting reports whether identifier requires double-quoting to round-trip.
func NeedsQuoting(identifier string) bool {
	if identifier == "" {
		return true
	}
	if reservedWords[strings.ToLower(identifier)] {
		return true
	}
	for i, r := range identifier {
		if i == 0 {
			if !unicode.IsLower(r) && r != '_' {
				return true
			}
			continue
		}
		if !unicode.IsLower(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
	}
	return false
}

// Quote double-quotes and escapes identifier per SQL rules. Idempotent:
// an already-quoted identifier is returned unchanged.
func Quote(identifier string) string {
	if len(identifier) >= 2 && identifier[0] == '"' && identifier[len(identifier)-1] == '"' {
		return identifier
	}
	if !NeedsQuoting(identifier) {
		return identifier
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range identifier {
		if r == '"' {
			b.WriteByte('"')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// QuoteLiteral single-quotes and escapes a string literal body (used for
// string constants and COMMENT ON ... IS '...' bodies).
func QuoteLiteral(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "''")
	return "'" + s + "'"
}

// QualifyName returns schema.name, quoting each part, qualifying only
// when schema differs from the statement's target/search-path schema.
func QualifyName(schema, name, targetSchema string) string {
	qn := Quote(name)
	if schema == "" || schema == targetSchema {
		return qn
	}
	return Quote(schema) + "." + qn
}

// FullyQualifyName always includes the schema, regardless of target schema.
func FullyQualifyName(schema, name string) string {
	return Quote(schema) + "." + Quote(name)
}
