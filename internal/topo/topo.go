// Package topo implements the statement topology analyzer (spec.md §4.H):
// given a set of already-planned statements (each publishing the stable
// ids it creates, requires, and drops — per internal/change), it builds a
// dependency graph, detects cycles, and produces a stable total order.
//
// Unlike the teacher's internal/diff/topological.go, which runs one
// hand-written Kahn's-algorithm pass per object kind (tables, views,
// types, functions), this package runs a single generalized pass over
// every statement regardless of kind, keeping the same tie-breaking
// idiom (sorted queue, insertion-order cycle breaking) the teacher uses.
package topo

import pg_query "github.com/pganalyze/pg_query_go/v6"

// Phase buckets statements into the pre-order groups spec.md §4.H step 2
// names, used only as a tie-breaker in the final sort — the dependency
// graph itself is what actually orders statements.
type Phase int

const (
	PhaseBootstrap Phase = iota
	PhasePreData
	PhaseDataStructures
	PhaseRoutines
	PhasePostData
	PhasePrivileges
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrap:
		return "bootstrap"
	case PhasePreData:
		return "pre_data"
	case PhaseDataStructures:
		return "data_structures"
	case PhaseRoutines:
		return "routines"
	case PhasePostData:
		return "post_data"
	case PhasePrivileges:
		return "privileges"
	default:
		return "data_structures"
	}
}

// StatementClass tags one parsed statement by its AST node shape
// (spec.md §4.H step 1). Not every PostgreSQL statement kind a migration
// plan could contain needs its own tag here: this set covers the main
// classes this repo's own differs (internal/differs) emit, plus the common
// ones a hand-written migration file might add (DO, SELECT). Other
// statements the differs emit, such as DROP INDEX, DROP SCHEMA, CREATE
// LANGUAGE, DROP COLLATION and ALTER ... OWNER TO, classify as ClassUnknown.
type StatementClass string

const (
	ClassCreateSchema             StatementClass = "CREATE_SCHEMA"
	ClassAlterSchema              StatementClass = "ALTER_SCHEMA"
	ClassCreateRole               StatementClass = "CREATE_ROLE"
	ClassAlterRole                StatementClass = "ALTER_ROLE"
	ClassDropRole                 StatementClass = "DROP_ROLE"
	ClassCreateTable              StatementClass = "CREATE_TABLE"
	ClassAlterTable               StatementClass = "ALTER_TABLE"
	ClassDropTable                StatementClass = "DROP_TABLE"
	ClassCreateIndex              StatementClass = "CREATE_INDEX"
	ClassCreateSequence           StatementClass = "CREATE_SEQUENCE"
	ClassAlterSequence            StatementClass = "ALTER_SEQUENCE"
	ClassDropSequence             StatementClass = "DROP_SEQUENCE"
	ClassCreateView               StatementClass = "CREATE_VIEW"
	ClassCreateMaterializedView   StatementClass = "CREATE_MATERIALIZED_VIEW"
	ClassDropView                 StatementClass = "DROP_VIEW"
	ClassCreateFunction           StatementClass = "CREATE_FUNCTION"
	ClassCreateProcedure          StatementClass = "CREATE_PROCEDURE"
	ClassDropFunction             StatementClass = "DROP_FUNCTION"
	ClassCreateTrigger            StatementClass = "CREATE_TRIGGER"
	ClassDropTrigger              StatementClass = "DROP_TRIGGER"
	ClassCreatePolicy             StatementClass = "CREATE_POLICY"
	ClassAlterPolicy              StatementClass = "ALTER_POLICY"
	ClassDropPolicy               StatementClass = "DROP_POLICY"
	ClassCreateEnum               StatementClass = "CREATE_ENUM"
	ClassCreateCompositeType      StatementClass = "CREATE_COMPOSITE_TYPE"
	ClassCreateDomain             StatementClass = "CREATE_DOMAIN"
	ClassCreateRange              StatementClass = "CREATE_RANGE"
	ClassAlterType                StatementClass = "ALTER_TYPE"
	ClassDropType                 StatementClass = "DROP_TYPE"
	ClassCreateCollation          StatementClass = "CREATE_COLLATION"
	ClassCreateAggregate          StatementClass = "CREATE_AGGREGATE"
	ClassCreateExtension          StatementClass = "CREATE_EXTENSION"
	ClassCreateForeignDataWrapper StatementClass = "CREATE_FOREIGN_DATA_WRAPPER"
	ClassCreateForeignServer      StatementClass = "CREATE_FOREIGN_SERVER"
	ClassCreateSubscription       StatementClass = "CREATE_SUBSCRIPTION"
	ClassCreatePublication        StatementClass = "CREATE_PUBLICATION"
	ClassCreateEventTrigger       StatementClass = "CREATE_EVENT_TRIGGER"
	ClassComment                  StatementClass = "COMMENT"
	ClassGrant                    StatementClass = "GRANT"
	ClassRevoke                   StatementClass = "REVOKE"
	ClassAlterDefaultPrivileges   StatementClass = "ALTER_DEFAULT_PRIVILEGES"
	ClassDo                       StatementClass = "DO"
	ClassSelect                   StatementClass = "SELECT"
	ClassUnknown                  StatementClass = "UNKNOWN"
)

// phaseForClass maps a class to its default pre-order bucket. Annotation
// overrides (StatementNode.Phase set before classification) win over this.
func phaseForClass(c StatementClass) Phase {
	switch c {
	case ClassCreateSchema, ClassAlterSchema, ClassCreateRole, ClassAlterRole, ClassDropRole,
		ClassCreateExtension, ClassCreateCollation, ClassCreateForeignDataWrapper, ClassCreateForeignServer:
		return PhaseBootstrap
	case ClassCreateEnum, ClassCreateCompositeType, ClassCreateDomain, ClassCreateRange, ClassAlterType, ClassDropType:
		return PhasePreData
	case ClassCreateTable, ClassAlterTable, ClassDropTable, ClassCreateIndex,
		ClassCreateSequence, ClassAlterSequence, ClassDropSequence,
		ClassCreateView, ClassCreateMaterializedView, ClassDropView:
		return PhaseDataStructures
	case ClassCreateFunction, ClassCreateProcedure, ClassDropFunction, ClassCreateAggregate,
		ClassCreateTrigger, ClassDropTrigger, ClassCreateEventTrigger:
		return PhaseRoutines
	case ClassCreatePolicy, ClassAlterPolicy, ClassDropPolicy,
		ClassCreateSubscription, ClassCreatePublication, ClassComment:
		return PhasePostData
	case ClassGrant, ClassRevoke, ClassAlterDefaultPrivileges:
		return PhasePrivileges
	default:
		return PhaseDataStructures
	}
}

// StatementID identifies one statement's position in the input corpus
// (spec.md §4.H: "each statement carries ... an ingest-order index, a
// file path").
type StatementID struct {
	FilePath       string
	StatementIndex int
}

// Annotations carries the hints the SQL parser boundary contract allows a
// caller to attach to a statement, overriding what classification and ref
// extraction would otherwise infer (spec.md §6 "SQL parser boundary").
type Annotations struct {
	Provides  []string
	Requires  []string
	DependsOn []string
	Drops     []string
	Phase     *Phase
}

// StatementNode is one statement after classification and ref extraction,
// ready for graph construction.
type StatementNode struct {
	ID        StatementID
	SQL       string
	Ingest    int
	Class     StatementClass
	Phase     Phase
	Provides  []string
	Requires  []string
	DependsOn []string
	Drops     []string

	ast *pg_query.ParseResult
}
