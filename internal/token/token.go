package token

type Category string

const (
	GROUP       = "group"
	CONTROL     = "control"
	OPERATOR    = "operator"
	SYMBOL      = "symbol"
	NUMBER      = "number"
	STRING      = "string"
	DECLARATION = "declaration"
)

// Token is the lexical record the parser attaches to every tree node.
// Ops is the operand count the parser declared for operators.
type Token struct {
	Text     string
	Category Category
	Ops      int
	Line     int
}

var categories = map[string]Category{
	"group":       GROUP,
	"control":     CONTROL,
	"operator":    OPERATOR,
	"builtin":     OPERATOR,
	"symbol":      SYMBOL,
	"number":      NUMBER,
	"num":         NUMBER,
	"string":      STRING,
	"str":         STRING,
	"declaration": DECLARATION,
	"decl":        DECLARATION,
}

// LookupCategory maps a category name (or one of its short aliases) to a Category.
func LookupCategory(name string) (Category, bool) {
	c, ok := categories[name]
	return c, ok
}
