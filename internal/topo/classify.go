package topo

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ClassifyAndExtract parses sql, classifies it into a StatementClass, and
// builds a StatementNode. Provides/Requires/DependsOn are taken from ann
// when set (component F already computes precise id sets from the typed
// catalog model — more precise than a generic AST ref-walk could recover
// from text alone); when ann leaves them empty, a best-effort fallback
// scans the AST for the DO-block CREATE TYPE ... AS ENUM case spec.md
// §4.H step 3 calls out explicitly.
func ClassifyAndExtract(id StatementID, sql string, ingest int, ann Annotations) (*StatementNode, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parse statement %s[%d]: %w", id.FilePath, id.StatementIndex, err)
	}

	class := ClassUnknown
	for _, raw := range result.Stmts {
		if raw.Stmt != nil {
			class = classifyNode(raw.Stmt)
			break
		}
	}

	phase := phaseForClass(class)
	if ann.Phase != nil {
		phase = *ann.Phase
	}

	node := &StatementNode{
		ID:        id,
		SQL:       sql,
		Ingest:    ingest,
		Class:     class,
		Phase:     phase,
		Provides:  ann.Provides,
		Requires:  ann.Requires,
		DependsOn: ann.DependsOn,
		Drops:     ann.Drops,
		ast:       result,
	}

	if class == ClassDo && len(node.Provides) == 0 {
		node.Provides = append(node.Provides, scanDoBlockForEnumProvides(sql)...)
	}

	return node, nil
}

// classifyNode implements spec.md §4.H step 1's disambiguation rules for
// polymorphic AST nodes: CreateFunctionStmt splits on IsProcedure, a
// CREATE TABLE AS ... with Objtype OBJECT_MATVIEW is a materialized view,
// DefineStmt narrows by Kind, and GrantStmt.IsGrant distinguishes GRANT
// from REVOKE.
func classifyNode(n *pg_query.Node) StatementClass {
	switch node := n.Node.(type) {
	case *pg_query.Node_CreateSchemaStmt:
		return ClassCreateSchema
	case *pg_query.Node_CreateRoleStmt:
		return ClassCreateRole
	case *pg_query.Node_AlterRoleStmt:
		return ClassAlterRole
	case *pg_query.Node_DropRoleStmt:
		return ClassDropRole
	case *pg_query.Node_CreateStmt:
		return ClassCreateTable
	case *pg_query.Node_AlterTableStmt:
		return ClassAlterTable
	case *pg_query.Node_DropStmt:
		return classifyDropStmt(node.DropStmt)
	case *pg_query.Node_IndexStmt:
		return ClassCreateIndex
	case *pg_query.Node_CreateSeqStmt:
		return ClassCreateSequence
	case *pg_query.Node_AlterSeqStmt:
		return ClassAlterSequence
	case *pg_query.Node_ViewStmt:
		return ClassCreateView
	case *pg_query.Node_CreateTableAsStmt:
		if node.CreateTableAsStmt.Objtype == pg_query.ObjectType_OBJECT_MATVIEW {
			return ClassCreateMaterializedView
		}
		return ClassCreateView
	case *pg_query.Node_CreateFunctionStmt:
		if node.CreateFunctionStmt.IsProcedure {
			return ClassCreateProcedure
		}
		return ClassCreateFunction
	case *pg_query.Node_CreateTrigStmt:
		return ClassCreateTrigger
	case *pg_query.Node_CreatePolicyStmt:
		return ClassCreatePolicy
	case *pg_query.Node_AlterPolicyStmt:
		return ClassAlterPolicy
	case *pg_query.Node_CreateEnumStmt:
		return ClassCreateEnum
	case *pg_query.Node_CompositeTypeStmt:
		return ClassCreateCompositeType
	case *pg_query.Node_CreateDomainStmt:
		return ClassCreateDomain
	case *pg_query.Node_AlterDomainStmt:
		return ClassAlterType
	case *pg_query.Node_AlterEnumStmt:
		return ClassAlterType
	case *pg_query.Node_CreateRangeStmt:
		return ClassCreateRange
	case *pg_query.Node_DefineStmt:
		return classifyDefineStmt(node.DefineStmt)
	case *pg_query.Node_CreateExtensionStmt:
		return ClassCreateExtension
	case *pg_query.Node_CreateFdwStmt:
		return ClassCreateForeignDataWrapper
	case *pg_query.Node_CreateForeignServerStmt:
		return ClassCreateForeignServer
	case *pg_query.Node_CreateSubscriptionStmt:
		return ClassCreateSubscription
	case *pg_query.Node_CreatePublicationStmt:
		return ClassCreatePublication
	case *pg_query.Node_CreateEventTrigStmt:
		return ClassCreateEventTrigger
	case *pg_query.Node_CommentStmt:
		return ClassComment
	case *pg_query.Node_GrantStmt:
		if !node.GrantStmt.IsGrant {
			return ClassRevoke
		}
		return ClassGrant
	case *pg_query.Node_AlterDefaultPrivilegesStmt:
		return ClassAlterDefaultPrivileges
	case *pg_query.Node_DoStmt:
		return ClassDo
	case *pg_query.Node_SelectStmt:
		return ClassSelect
	default:
		return ClassUnknown
	}
}

func classifyDropStmt(d *pg_query.DropStmt) StatementClass {
	switch d.RemoveType {
	case pg_query.ObjectType_OBJECT_TABLE:
		return ClassDropTable
	case pg_query.ObjectType_OBJECT_SEQUENCE:
		return ClassDropSequence
	case pg_query.ObjectType_OBJECT_VIEW, pg_query.ObjectType_OBJECT_MATVIEW:
		return ClassDropView
	case pg_query.ObjectType_OBJECT_FUNCTION, pg_query.ObjectType_OBJECT_PROCEDURE:
		return ClassDropFunction
	case pg_query.ObjectType_OBJECT_TRIGGER:
		return ClassDropTrigger
	case pg_query.ObjectType_OBJECT_POLICY:
		return ClassDropPolicy
	case pg_query.ObjectType_OBJECT_TYPE, pg_query.ObjectType_OBJECT_DOMAIN:
		return ClassDropType
	case pg_query.ObjectType_OBJECT_ROLE:
		return ClassDropRole
	default:
		return ClassUnknown
	}
}

// classifyDefineStmt narrows the catch-all DefineStmt node (used for
// aggregates, collations, and a handful of other CREATE variants) by its
// Kind field, per spec.md §4.H step 1.
func classifyDefineStmt(d *pg_query.DefineStmt) StatementClass {
	switch d.Kind {
	case pg_query.ObjectType_OBJECT_AGGREGATE:
		return ClassCreateAggregate
	case pg_query.ObjectType_OBJECT_COLLATION:
		return ClassCreateCollation
	default:
		return ClassUnknown
	}
}

// scanDoBlockForEnumProvides implements spec.md §4.H step 3's explicit
// rule: "DO blocks have their SQL body text scanned for CREATE TYPE ... AS
// ENUM to surface provides." DO block bodies are opaque dollar-quoted
// text to the outer parser, so this is a text scan, not an AST walk.
func scanDoBlockForEnumProvides(sql string) []string {
	upper := strings.ToUpper(sql)
	idx := strings.Index(upper, "CREATE TYPE")
	if idx == -1 {
		return nil
	}
	rest := sql[idx+len("CREATE TYPE"):]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil
	}
	name := strings.Trim(fields[0], `"`)
	return []string{"type:" + name}
}
