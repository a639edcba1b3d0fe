package catalog

import "github.com/supabase/pg-toolbelt-sub009/internal/ident"

// ForeignDataWrapper represents a CREATE FOREIGN DATA WRAPPER object.
type ForeignDataWrapper struct {
	Name      string
	Owner     string
	Comment   string
	Handler   string
	Validator string
	Options   map[string]string
	ACL       []ACLEntry
}

func (f *ForeignDataWrapper) StableID() string {
	return ident.StableID(ident.KindForeignDataWrapper, "", f.Name, "")
}

// ForeignServer represents a CREATE SERVER object.
type ForeignServer struct {
	Name    string
	FDWName string
	Owner   string
	Comment string
	Type    string
	Version string
	Options map[string]string
	ACL     []ACLEntry
}

func (s *ForeignServer) StableID() string {
	return ident.StableID(ident.KindForeignServer, "", s.Name, "")
}

// Subscription represents a CREATE SUBSCRIPTION object (logical replication
// consumer side).
type Subscription struct {
	Name         string
	Owner        string
	Comment      string
	ConnInfo     string
	Publications []string
	Enabled      bool
	SlotName     string
	Options      map[string]string
}

func (s *Subscription) StableID() string {
	return ident.StableID(ident.KindSubscription, "", s.Name, "")
}

// Publication represents a CREATE PUBLICATION object (logical replication
// producer side).
type Publication struct {
	Name          string
	Owner         string
	Comment       string
	AllTables     bool
	Tables        []string // schema-qualified table names, when AllTables is false
	PublishInsert bool
	PublishUpdate bool
	PublishDelete bool
	PublishTruncate bool
}

func (p *Publication) StableID() string {
	return ident.StableID(ident.KindPublication, "", p.Name, "")
}

// EventTrigger represents a CREATE EVENT TRIGGER object.
type EventTrigger struct {
	Name    string
	Owner   string
	Comment string
	Event   string // ddl_command_start, ddl_command_end, table_rewrite, sql_drop
	Tags    []string
	Function string
	Enabled  string // O (enable), D (disable), R (replica), A (always)
}

func (e *EventTrigger) StableID() string {
	return ident.StableID(ident.KindEventTrigger, "", e.Name, "")
}
