package tools

// Specs returns the tool set advertised to the agent. Descriptions matter:
// the model picks tools based on them.
func Specs(table string) []Spec {
	return []Spec{
		{
			Name: ToolGetTableSchema,
			Description: "Retrieves the schema (column names and types) for a database table. " +
				"Use this BEFORE querying if you are unsure about the table structure or " +
				"the available columns for filtering.",
			Args: []ArgSpec{
				{Name: "table", Description: "Table name, e.g. '" + table + "'. Defaults to the configured table."},
			},
		},
		{
			Name: ToolQueryTable,
			Description: "Queries the " + table + " table. Filters are a semicolon-separated " +
				"list of clauses using = for exact match and ~ for substring match, " +
				"e.g. 'MAKE = TESLA; MODEL ~ 3'. Know the schema before filtering.",
			Args: []ArgSpec{
				{Name: "table", Description: "Table name. Defaults to the configured table."},
				{Name: "columns", Description: "Comma-separated columns to return; omit for all columns."},
				{Name: "filters", Description: "Filter clauses, e.g. 'MAKE = TESLA; CITY = Seattle'."},
				{Name: "limit", Description: "Maximum rows to return; a small default applies when omitted."},
				{Name: "order_by", Description: "Column to sort by, with an optional ' desc' suffix."},
			},
		},
		{
			Name:        ToolConvertCurrency,
			Description: "Converts a monetary amount between currencies, e.g. a vehicle price from USD to EUR.",
			Args: []ArgSpec{
				{Name: "amount", Description: "The amount to convert, as a number.", Required: true},
				{Name: "from", Description: "Source currency code, e.g. USD.", Required: true},
				{Name: "to", Description: "Target currency code, e.g. EUR.", Required: true},
			},
		},
		{
			Name: ToolRAGLookup,
			Description: "Searches the internal document store for background knowledge about " +
				"electric vehicles (vehicle types, eligibility, charging, range).",
			Args: []ArgSpec{
				{Name: "query", Description: "The question to look up.", Required: true},
			},
		},
	}
}
