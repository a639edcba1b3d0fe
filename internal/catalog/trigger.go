package catalog

import "github.com/supabase/pg-toolbelt-sub009/internal/ident"

// TriggerTiming is BEFORE/AFTER/INSTEAD OF.
type TriggerTiming string

const (
	TimingBefore    TriggerTiming = "BEFORE"
	TimingAfter     TriggerTiming = "AFTER"
	TimingInsteadOf TriggerTiming = "INSTEAD_OF"
)

// TriggerEvent is one of the firing events a trigger listens for.
type TriggerEvent string

const (
	EventInsert   TriggerEvent = "INSERT"
	EventUpdate   TriggerEvent = "UPDATE"
	EventDelete   TriggerEvent = "DELETE"
	EventTruncate TriggerEvent = "TRUNCATE"
)

// TriggerLevel is ROW or STATEMENT.
type TriggerLevel string

const (
	LevelRow       TriggerLevel = "ROW"
	LevelStatement TriggerLevel = "STATEMENT"
)

// Trigger represents a table (or view) trigger.
type Trigger struct {
	Schema            string
	Table             string
	Name              string
	Timing            TriggerTiming
	Events            []TriggerEvent
	Level             TriggerLevel
	Function          string // schema-qualified function call, e.g. public.f()
	Columns           []string // UPDATE OF col, col
	Condition         string
	Comment           string
	IsConstraint      bool
	Deferrable        bool
	InitiallyDeferred bool
	OldTable          string
	NewTable          string
}

func (t *Trigger) StableID() string { return ident.StableID(ident.KindTrigger, t.Schema, t.Table+"."+t.Name, "") }

// EventTrigger lives in foreign.go: it is cluster-wide rather than
// table-scoped.

// PolicyCommand is the command an RLS policy applies to.
type PolicyCommand string

const (
	PolicyAll    PolicyCommand = "ALL"
	PolicySelect PolicyCommand = "SELECT"
	PolicyInsert PolicyCommand = "INSERT"
	PolicyUpdate PolicyCommand = "UPDATE"
	PolicyDelete PolicyCommand = "DELETE"
)

// RLSPolicy represents a CREATE POLICY object.
type RLSPolicy struct {
	Schema     string
	Table      string
	Name       string
	Command    PolicyCommand
	Permissive bool
	Roles      []string
	Using      string
	WithCheck  string
	Comment    string
}

func (p *RLSPolicy) StableID() string {
	return ident.StableID(ident.KindPolicy, p.Schema, p.Table+"."+p.Name, "")
}
