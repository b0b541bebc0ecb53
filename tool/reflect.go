package tool

import (
	"encoding/json"

	ai "github.com/spetersoncode/chatter"
)

// SchemaFor re-exports chatter.SchemaFor so tool packages can derive
// argument schemas without importing the root package directly.
func SchemaFor[T any]() (json.RawMessage, error) {
	return ai.SchemaFor[T]()
}

// MustSchemaFor re-exports chatter.MustSchemaFor.
func MustSchemaFor[T any]() json.RawMessage {
	return ai.MustSchemaFor[T]()
}
