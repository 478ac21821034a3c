package resistorcolorduo

import (
	_ "embed"
)

// The rule program ships inside the binary; it is read-only after
// initialization and shared by value across runs.

//go:embed rules/schemas.gl
var schemaSource string

//go:embed rules/policy.gl
var policySource string
