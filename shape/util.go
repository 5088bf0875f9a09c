package shape

import "fmt"

// stringifyAny renders v into a stable string, used only to build
// dedup-key components for composite shapes (Complex.Group). It is not
// meant to be human-readable, only stable and comparable.
func stringifyAny(v any) string {
	return fmt.Sprintf("%#v", v)
}
