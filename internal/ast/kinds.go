package ast

// Op is the operator kind of a builtin-operator node, resolved once from the token text.
type Op int

const (
	OpUnknown Op = iota

	// evaluated specially
	OpDot
	OpIn
	OpOf
	OpContinue
	OpBreak
	OpReturn

	// output
	OpOut
	OpOutl

	OpAssign
	OpAdd
	OpSub
	OpMul
	OpPow
	OpDiv
	OpTruncDiv
	OpMod
	OpBitXor
	OpBitOr
	OpBitAnd
	OpShiftRight
	OpShiftLeft

	OpGreater
	OpLess
	OpEqual
	OpNotEqual
	OpGreaterEqual
	OpLessEqual

	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpPowAssign
	OpDivAssign
	OpTruncDivAssign
	OpModAssign
	OpBitXorAssign
	OpBitOrAssign
	OpBitAndAssign
	OpShiftRightAssign
	OpShiftLeftAssign

	OpAnd
	OpOr
	OpNot
)

type opInfo struct {
	text  string
	arity int
}

var opInfos = map[Op]opInfo{
	OpDot:      {".", 2},
	OpIn:       {"in", 1},
	OpOf:       {"of", 2},
	OpContinue: {"continue", 0},
	OpBreak:    {"break", 0},
	OpReturn:   {"return", 1},
	OpOut:      {"out", 1},
	OpOutl:     {"outl", 1},

	OpAssign:     {"=", 2},
	OpAdd:        {"+", 2},
	OpSub:        {"-", 2},
	OpMul:        {"*", 2},
	OpPow:        {"**", 2},
	OpDiv:        {"/", 2},
	OpTruncDiv:   {"//", 2},
	OpMod:        {"%", 2},
	OpBitXor:     {"^", 2},
	OpBitOr:      {"|", 2},
	OpBitAnd:     {"&", 2},
	OpShiftRight: {">>", 2},
	OpShiftLeft:  {"<<", 2},

	OpGreater:      {">", 2},
	OpLess:         {"<", 2},
	OpEqual:        {"==", 2},
	OpNotEqual:     {"!=", 2},
	OpGreaterEqual: {">=", 2},
	OpLessEqual:    {"<=", 2},

	OpAddAssign:        {"+=", 2},
	OpSubAssign:        {"-=", 2},
	OpMulAssign:        {"*=", 2},
	OpPowAssign:        {"**=", 2},
	OpDivAssign:        {"/=", 2},
	OpTruncDivAssign:   {"//=", 2},
	OpModAssign:        {"%=", 2},
	OpBitXorAssign:     {"^=", 2},
	OpBitOrAssign:      {"|=", 2},
	OpBitAndAssign:     {"&=", 2},
	OpShiftRightAssign: {">>=", 2},
	OpShiftLeftAssign:  {"<<=", 2},

	OpAnd: {"and", 2},
	OpOr:  {"or", 2},
	OpNot: {"not", 1},
}

var opsByText = func() map[string]Op {
	m := make(map[string]Op, len(opInfos))
	for op, info := range opInfos {
		m[info.text] = op
	}
	return m
}()

// LookupOp resolves operator text. Unknown text yields OpUnknown.
func LookupOp(text string) Op {
	if op, ok := opsByText[text]; ok {
		return op
	}
	return OpUnknown
}

// Arity returns the canonical operand count, or -1 for OpUnknown.
func (o Op) Arity() int {
	if info, ok := opInfos[o]; ok {
		return info.arity
	}
	return -1
}

func (o Op) String() string {
	if info, ok := opInfos[o]; ok {
		return info.text
	}
	return "<unknown>"
}

// Control is the kind of a control-keyword node.
type Control int

const (
	CtrlUnsupported Control = iota
	CtrlIf
	CtrlElsif
	CtrlElse
	CtrlWhile
	CtrlFor
)

var controls = map[string]Control{
	"if":    CtrlIf,
	"elsif": CtrlElsif,
	"else":  CtrlElse,
	"while": CtrlWhile,
	"for":   CtrlFor,
}

func LookupControl(text string) Control {
	if c, ok := controls[text]; ok {
		return c
	}
	return CtrlUnsupported
}

// Method is a collection method reachable through the dot operator.
type Method int

const (
	MethodUnknown Method = iota
	MethodPush
	MethodPop
	MethodLen
	MethodEmpty
	MethodFind
	MethodReverse
	MethodFill
	MethodAt
	MethodNext
	MethodLast
	MethodSub
	MethodClear
	MethodSort
)

type methodInfo struct {
	name     string
	min, max int
}

var methodInfos = map[Method]methodInfo{
	MethodPush:    {"push", 1, 1},
	MethodPop:     {"pop", 0, 0},
	MethodLen:     {"len", 0, 0},
	MethodEmpty:   {"empty", 0, 0},
	MethodFind:    {"find", 1, 1},
	MethodReverse: {"reverse", 0, 0},
	MethodFill:    {"fill", 3, 3},
	MethodAt:      {"at", 1, 1},
	MethodNext:    {"next", 0, 0},
	MethodLast:    {"last", 0, 0},
	MethodSub:     {"sub", 0, 3},
	MethodClear:   {"clear", 0, 0},
	MethodSort:    {"sort", 0, 0},
}

var methodsByName = func() map[string]Method {
	m := make(map[string]Method, len(methodInfos))
	for method, info := range methodInfos {
		m[info.name] = method
	}
	return m
}()

func LookupMethod(name string) Method {
	if m, ok := methodsByName[name]; ok {
		return m
	}
	return MethodUnknown
}

// Arity returns the accepted argument range.
func (m Method) Arity() (lo, hi int) {
	info := methodInfos[m]
	return info.min, info.max
}

func (m Method) String() string {
	if info, ok := methodInfos[m]; ok {
		return info.name
	}
	return "<unknown>"
}

// Builtin is one of the fixed free functions.
type Builtin int

const (
	BuiltinNone Builtin = iota
	BuiltinFloor
	BuiltinCeil
	BuiltinRound
	BuiltinRand
)

var builtins = map[string]Builtin{
	"floor": BuiltinFloor,
	"ceil":  BuiltinCeil,
	"round": BuiltinRound,
	"rand":  BuiltinRand,
}

var builtinArity = map[Builtin]int{
	BuiltinFloor: 1,
	BuiltinCeil:  1,
	BuiltinRound: 2,
	BuiltinRand:  0,
}

func LookupBuiltin(name string) Builtin {
	return builtins[name]
}

func (b Builtin) Arity() int {
	return builtinArity[b]
}

var compoundBase = map[Op]Op{
	OpAddAssign:        OpAdd,
	OpSubAssign:        OpSub,
	OpMulAssign:        OpMul,
	OpPowAssign:        OpPow,
	OpDivAssign:        OpDiv,
	OpTruncDivAssign:   OpTruncDiv,
	OpModAssign:        OpMod,
	OpBitXorAssign:     OpBitXor,
	OpBitOrAssign:      OpBitOr,
	OpBitAndAssign:     OpBitAnd,
	OpShiftRightAssign: OpShiftRight,
	OpShiftLeftAssign:  OpShiftLeft,
}

// Base returns the plain operator behind a compound assignment (`+=` -> `+`).
func (o Op) Base() (Op, bool) {
	b, ok := compoundBase[o]
	return b, ok
}
