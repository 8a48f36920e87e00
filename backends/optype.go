package backends

import "fmt"

// UnaryOpType enumerates the elementwise unary operations node lowering can
// emit. Backends must support all of them.
type UnaryOpType int

const (
	UnaryAbs UnaryOpType = iota
	UnaryNeg
	UnaryExp
	UnaryLog
	UnarySqrt
	UnaryTanh
)

var unaryOpNames = [...]string{"abs", "neg", "exp", "log", "sqrt", "tanh"}

// String implements fmt.Stringer. It returns the op mnemonic.
func (op UnaryOpType) String() string {
	if op < 0 || int(op) >= len(unaryOpNames) {
		return fmt.Sprintf("UnaryOpType(%d)", int(op))
	}
	return unaryOpNames[op]
}

// BinaryOpType enumerates the elementwise binary operations node lowering can
// emit.
type BinaryOpType int

const (
	BinaryAdd BinaryOpType = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMax
	BinaryMin
	BinaryPow
)

var binaryOpNames = [...]string{"add", "sub", "mul", "div", "max", "min", "pow"}

// String implements fmt.Stringer. It returns the op mnemonic.
func (op BinaryOpType) String() string {
	if op < 0 || int(op) >= len(binaryOpNames) {
		return fmt.Sprintf("BinaryOpType(%d)", int(op))
	}
	return binaryOpNames[op]
}
