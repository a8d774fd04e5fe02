package dialect

import "github.com/leapstack-labs/sqllineage/pkg/token"

// Tokens shared by several dialects. A dialect only lexes these as keywords
// once it registers them via AddKeyword or a feature flag; elsewhere the
// words stay plain identifiers.
var (
	TokenQualify     = token.Register("QUALIFY")
	TokenIlike       = token.Register("ILIKE")
	TokenRlike       = token.Register("RLIKE")
	TokenRegexp      = token.Register("REGEXP")
	TokenDcolon      = token.Register("::")
	TokenTop         = token.Register("TOP")
	TokenSample      = token.Register("SAMPLE")
	TokenTablesample = token.Register("TABLESAMPLE")
	TokenPivot       = token.Register("PIVOT")
	TokenUnpivot     = token.Register("UNPIVOT")
)
