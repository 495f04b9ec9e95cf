package variable

import (
	"fmt"

	"github.com/tailored-agentic-units/fuse/manifold"
)

// Check verifies that v honors the storage and manifold contract. A failure
// is a defect in the concrete kind, reported as ErrContract so containers and
// engines can refuse the variable instead of misusing its memory.
func Check(v Variable) error {
	if IsNil(v) {
		return fmt.Errorf("%w: nil variable", ErrContract)
	}

	size := v.Size()
	if size < 1 {
		return fmt.Errorf("%w: %s reports size %d", ErrContract, v.Type(), size)
	}

	if n := len(v.Data()); n != size {
		return fmt.Errorf("%w: %s data has %d values, size is %d", ErrContract, v.Type(), n, size)
	}

	if n := v.Values().Len(); n != size {
		return fmt.Errorf("%w: %s view has %d values, size is %d", ErrContract, v.Type(), n, size)
	}

	if v.Type() == "" {
		return fmt.Errorf("%w: empty type name", ErrContract)
	}

	if v.ID().IsNil() {
		return fmt.Errorf("%w: %s has a nil identity", ErrContract, v.Type())
	}

	if err := manifold.Validate(v.Manifold(), size); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContract, v.Type(), err)
	}

	return nil
}
