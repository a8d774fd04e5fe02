// Package core defines the canonical SQL syntax tree shared by every dialect.
//
// This package contains:
//   - The closed set of AST node variants (statements, table refs, expressions)
//   - Dialect configuration data (quoting, normalization, feature flags)
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
