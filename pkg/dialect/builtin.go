package dialect

// Function classifications shared by most dialects. Concrete dialects add
// their own on top.
var (
	// ANSIAggregates are aggregates every supported dialect understands.
	ANSIAggregates = []string{
		"SUM", "COUNT", "AVG", "MIN", "MAX",
		"STDDEV", "STDDEV_POP", "STDDEV_SAMP",
		"VARIANCE", "VAR_POP", "VAR_SAMP",
		"ARRAY_AGG", "STRING_AGG", "LISTAGG",
		"ANY_VALUE", "MEDIAN", "MODE",
		"PERCENTILE_CONT", "PERCENTILE_DISC",
		"APPROX_COUNT_DISTINCT",
		"BOOL_AND", "BOOL_OR", "BIT_AND", "BIT_OR", "BIT_XOR",
		"CORR", "COVAR_POP", "COVAR_SAMP",
		"COUNT_IF",
	}

	// ANSIGenerators produce values with no upstream columns.
	ANSIGenerators = []string{
		"CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME",
		"LOCALTIME", "LOCALTIMESTAMP", "NOW",
		"RANDOM", "RAND", "UUID",
		"CURRENT_USER", "CURRENT_SCHEMA", "CURRENT_DATABASE", "CURRENT_ROLE",
		"PI",
	}

	// ANSIWindows are window-only functions.
	ANSIWindows = []string{
		"ROW_NUMBER", "RANK", "DENSE_RANK", "NTILE", "PERCENT_RANK", "CUME_DIST",
		"LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE", "NTH_VALUE",
	}
)
