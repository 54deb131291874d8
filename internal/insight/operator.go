package insight

import "fmt"

// Operator is a comparison applied between an observed value and a threshold.
type Operator string

// Supported operators.
const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpEqual        Operator = "="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpNotEqual     Operator = "!="
)

// Valid reports whether op is a supported operator.
func (op Operator) Valid() bool {
	switch op {
	case OpGreater, OpLess, OpEqual, OpGreaterEqual, OpLessEqual, OpNotEqual:
		return true
	}
	return false
}

// Compare applies op to (observed, threshold). It panics on an unsupported
// operator; catalogs are validated before rules reach the evaluator.
func (op Operator) Compare(observed, threshold float64) bool {
	switch op {
	case OpGreater:
		return observed > threshold
	case OpLess:
		return observed < threshold
	case OpEqual:
		return observed == threshold
	case OpGreaterEqual:
		return observed >= threshold
	case OpLessEqual:
		return observed <= threshold
	case OpNotEqual:
		return observed != threshold
	}
	panic(fmt.Sprintf("insight: %v %q", ErrUnsupportedOperator, string(op)))
}
