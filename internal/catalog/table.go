package catalog

import "github.com/supabase/pg-toolbelt-sub009/internal/ident"

// Table represents a base table, partitioned table, or partition.
type Table struct {
	Schema  string
	Name    string
	Owner   string
	Comment string
	ACL     []ACLEntry

	Columns     []*Column
	Constraints map[string]*Constraint
	Indexes     map[string]*Index
	Triggers    map[string]*Trigger
	Policies    map[string]*RLSPolicy

	RLSEnabled bool
	RLSForced  bool

	IsPartitioned     bool
	PartitionStrategy string // RANGE, LIST, HASH
	PartitionKey      string
	PartitionOf       string // parent table's stable id, if this is a partition
	PartitionBound    string

	ReplicaIdentity string // DEFAULT, FULL, NOTHING, INDEX
	Unlogged        bool
}

func (t *Table) StableID() string { return ident.StableID(ident.KindTable, t.Schema, t.Name, "") }

// Column represents a table column. Columns are identified by name within
// their owning table rather than carrying their own stable id.
type Column struct {
	Name          string
	Position      int
	DataType      string
	IsNullable    bool
	DefaultValue  *string
	Comment       string
	Identity      *Identity
	GeneratedExpr *string
	IsGenerated   bool
	Collation     string
	ACL           []ACLEntry // column-level grants surfaced here; also mirrored onto Table.ACL entries with Columns set
}

// Identity represents a GENERATED {ALWAYS|BY DEFAULT} AS IDENTITY clause.
type Identity struct {
	Generation string // ALWAYS, BY DEFAULT
	Start      *int64
	Increment  *int64
	Maximum    *int64
	Minimum    *int64
	Cycle      bool
}

// ConstraintType enumerates the five table constraint kinds.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "PRIMARY_KEY"
	ConstraintUnique     ConstraintType = "UNIQUE"
	ConstraintForeignKey ConstraintType = "FOREIGN_KEY"
	ConstraintCheck      ConstraintType = "CHECK"
	ConstraintExclusion  ConstraintType = "EXCLUSION"
)

// Constraint represents a table-level constraint.
type Constraint struct {
	Schema            string
	Table             string
	Name              string
	Type              ConstraintType
	Columns           []string
	ReferencedSchema  string
	ReferencedTable   string
	ReferencedColumns []string
	CheckClause       string
	ExclusionElements []string // "expr WITH operator" pairs, for EXCLUSION
	DeleteRule        string
	UpdateRule        string
	MatchType         string // FULL, PARTIAL, SIMPLE
	Deferrable        bool
	InitiallyDeferred bool
	IsValid           bool
	Comment           string
}

func (c *Constraint) StableID() string {
	return ident.StableID(ident.KindTable, c.Schema, c.Table, "") + "#constraint:" + c.Name
}

// IndexType distinguishes indexes created implicitly for a constraint from
// stand-alone indexes.
type IndexType string

const (
	IndexRegular IndexType = "REGULAR"
	IndexPrimary IndexType = "PRIMARY"
	IndexUnique  IndexType = "UNIQUE"
)

// Index represents a table (or materialized view) index.
type Index struct {
	Schema       string
	Table        string
	Name         string
	Type         IndexType
	Method       string // btree, hash, gin, gist, brin, ...
	Columns      []*IndexColumn
	IsPartial    bool
	IsExpression bool
	Where        string
	Comment      string
}

func (i *Index) StableID() string { return ident.StableID(ident.KindIndex, i.Schema, i.Name, "") }

// IndexColumn is one column (or expression) participating in an index.
type IndexColumn struct {
	Name       string // empty when Expression is set
	Expression string
	Position   int
	Direction  string // ASC, DESC
	Operator   string // operator class
	NullsFirst bool
}
