// Package schema provides the canonical record types for the resolved
// schema model: attributes, categories, class and object descriptors,
// and the enumerations synthesized during compilation.
//
// This package contains type definitions and small helpers only. All
// other internal packages import schema; schema imports nothing
// internal. This keeps it the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Descriptor kinds are explicit record types with named fields for
//     known keys plus one Extra container for dynamic keys; documents
//     are never carried around as untyped maps.
//   - Reserved names (the include key, the abstract prefix, the base
//     class) are named constants checked at the loader boundary.
//   - All JSON tags use snake_case.
package schema
