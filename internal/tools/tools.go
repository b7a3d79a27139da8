// Package tools routes agent tool invocations to the schema catalog, the
// query pipeline, or the auxiliary collaborators. One dispatcher instance is
// safe for concurrent use; each invocation owns its own intent and result.
package tools

// Tool names the agent may invoke.
const (
	ToolGetTableSchema  = "get_table_schema"
	ToolQueryTable      = "query_table"
	ToolConvertCurrency = "convert_currency"
	ToolRAGLookup       = "rag_lookup"
)

// Invocation is one tool call crossing the agent boundary: a tool name plus a
// flat mapping of string arguments. Created once per agent turn, never
// persisted.
type Invocation struct {
	Name string
	Args map[string]string
}

// Status is the terminal state of a dispatched invocation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome is the result handed back to the agent. Failed outcomes carry a
// human-readable message in Content and the classified error in Err; no raw
// lower-level fault escapes the dispatcher.
type Outcome struct {
	Status  Status
	Content string
	Err     error
}

// Succeeded reports whether the invocation reached its succeeded state.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}

// Spec describes one tool to the upstream agent: its name, when to use it,
// and its string arguments. The agent framework translates specs into its own
// tool-definition format.
type Spec struct {
	Name        string
	Description string
	Args        []ArgSpec
}

// ArgSpec describes a single string argument.
type ArgSpec struct {
	Name        string
	Description string
	Required    bool
}
