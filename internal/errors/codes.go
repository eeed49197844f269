// Package errors provides naab's structured error model: error kinds,
// stack frames, and a JSON-serializable Report shared by the parser,
// evaluator, module loader, executors, and marshaller.
package errors

// Kind is one of the fixed error kinds from spec §4.11.
type Kind string

const (
	EParse           Kind = "E_PARSE"
	EParseTooDeep    Kind = "E_PARSE_TOO_DEEP"
	EType            Kind = "E_TYPE"
	EArity           Kind = "E_ARITY"
	EUndefined       Kind = "E_UNDEFINED"
	EAssignTarget    Kind = "E_ASSIGN_TARGET"
	ENotCallable     Kind = "E_NOT_CALLABLE"
	EIndex           Kind = "E_INDEX"
	EStructField     Kind = "E_STRUCT_FIELD"
	EImport          Kind = "E_IMPORT"
	ECircularImport  Kind = "E_CIRCULAR_IMPORT"
	ENoExecutor      Kind = "E_NO_EXECUTOR"
	EForeign         Kind = "E_FOREIGN"
	ETimeout         Kind = "E_TIMEOUT"
	ECancelled       Kind = "E_CANCELLED"
	EMarshal         Kind = "E_MARSHAL"
	EMarshalOverflow Kind = "E_MARSHAL_OVERFLOW"
	EDivZero         Kind = "E_DIV_ZERO"
	EOverflow        Kind = "E_OVERFLOW"
	ECallDepth       Kind = "E_CALL_DEPTH"
	EInputSize       Kind = "E_INPUT_SIZE"
	EIO              Kind = "E_IO"
	EThrown          Kind = "E_THROWN"
)

// fatal is the set of kinds that short-circuit evaluation and are not
// catchable by a TryStmt unless strict-mode test rigs opt in (spec §7).
var fatal = map[Kind]bool{
	EInputSize: true,
	ECallDepth: true,
	EOverflow:  true,
}

// Fatal reports whether k short-circuits evaluation uncatchably by default.
func (k Kind) Fatal() bool { return fatal[k] }

// Catchable is the inverse of Fatal, kept as a named helper since call
// sites read more naturally asking "can a TryStmt catch this?".
func (k Kind) Catchable(strict bool) bool {
	if strict {
		return true
	}
	return !k.Fatal()
}
