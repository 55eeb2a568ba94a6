package assert

import "fmt"

// NotNil panics when value is nil, name identifies the value in the panic message.
func NotNil(value any, name string) {
	if value == nil {
		panic(fmt.Sprintf("expected %s to be not nil", name))
	}
}
