package expr

// token packs a token's identity, binary precedence and classification
// flags into one word so the parser can test membership with a single mask.
//
//	bits 0-5   unique index
//	bits 6-8   binary precedence (1 = ||, 6 = multiplicative)
//	bits 9-24  classification flags
type token uint32

const precedenceShift = 6

const (
	tokenIndexMask token = 0x3F
	precedenceMask token = 7 << precedenceShift

	tExpressionTerminal     token = 1 << 9
	tClosingToken           token = 1 << 10
	tOpeningToken           token = 1 << 11
	tAccessScopeTerminal    token = 1 << 12
	tKeyword                token = 1 << 13
	tEOFFlag                token = 1 << 14
	tIdentifier             token = 1 << 15
	tLiteral                token = 1 << 16
	tStringLiteral          token = 1 << 17
	tNumericLiteral         token = 1 << 18
	tBinaryOp               token = 1 << 19
	tUnaryOp                token = 1 << 20
	tMemberExpression       token = 1 << 21
	tMemberOrCallExpression token = 1 << 22
	tTemplateTail           token = 1 << 23
	tTemplateContinuation   token = 1 << 24

	tIdentifierOrKeyword = tIdentifier | tKeyword
)

// tokNone is returned by scanners that consumed input without producing a
// token (whitespace).
const tokNone token = 0

const (
	tokEOF token = 0 | tEOFFlag | tAccessScopeTerminal | tExpressionTerminal

	tokFalseKeyword     token = 1 | tKeyword | tLiteral
	tokTrueKeyword      token = 2 | tKeyword | tLiteral
	tokNullKeyword      token = 3 | tKeyword | tLiteral
	tokUndefinedKeyword token = 4 | tKeyword | tLiteral
	tokThisScope        token = 5 | tIdentifierOrKeyword
	tokParentScope      token = 6 | tIdentifierOrKeyword

	tokLParen    token = 7 | tOpeningToken | tAccessScopeTerminal | tMemberOrCallExpression
	tokLBrace    token = 8 | tOpeningToken
	tokPeriod    token = 9 | tMemberExpression | tMemberOrCallExpression
	tokRBrace    token = 10 | tAccessScopeTerminal | tClosingToken | tExpressionTerminal
	tokRParen    token = 11 | tAccessScopeTerminal | tClosingToken | tExpressionTerminal
	tokSemicolon token = 12 | tExpressionTerminal
	tokComma     token = 13 | tAccessScopeTerminal | tExpressionTerminal
	tokLBracket  token = 14 | tOpeningToken | tAccessScopeTerminal | tMemberExpression | tMemberOrCallExpression
	tokRBracket  token = 15 | tClosingToken | tAccessScopeTerminal | tExpressionTerminal
	tokColon     token = 16 | tAccessScopeTerminal
	tokQuestion  token = 17 | tAccessScopeTerminal
	tokAmpersand token = 18 | tAccessScopeTerminal
	tokBar       token = 19 | tAccessScopeTerminal

	tokBarBar                  token = 20 | 1<<precedenceShift | tBinaryOp
	tokAmpersandAmpersand      token = 21 | 2<<precedenceShift | tBinaryOp
	tokEqualsEquals            token = 22 | 3<<precedenceShift | tBinaryOp
	tokExclamationEquals       token = 23 | 3<<precedenceShift | tBinaryOp
	tokEqualsEqualsEquals      token = 24 | 3<<precedenceShift | tBinaryOp
	tokExclamationEqualsEquals token = 25 | 3<<precedenceShift | tBinaryOp
	tokLessThan                token = 26 | 4<<precedenceShift | tBinaryOp
	tokGreaterThan             token = 27 | 4<<precedenceShift | tBinaryOp
	tokLessThanEquals          token = 28 | 4<<precedenceShift | tBinaryOp
	tokGreaterThanEquals       token = 29 | 4<<precedenceShift | tBinaryOp
	tokInKeyword               token = 30 | 4<<precedenceShift | tBinaryOp | tKeyword
	tokInstanceOfKeyword       token = 31 | 4<<precedenceShift | tBinaryOp | tKeyword
	tokPlus                    token = 32 | 5<<precedenceShift | tBinaryOp | tUnaryOp
	tokMinus                   token = 33 | 5<<precedenceShift | tBinaryOp | tUnaryOp
	tokTypeofKeyword           token = 34 | tUnaryOp | tKeyword
	tokVoidKeyword             token = 35 | tUnaryOp | tKeyword
	tokAsterisk                token = 36 | 6<<precedenceShift | tBinaryOp
	tokPercent                 token = 37 | 6<<precedenceShift | tBinaryOp
	tokSlash                   token = 38 | 6<<precedenceShift | tBinaryOp
	tokEquals                  token = 39 | tAccessScopeTerminal
	tokExclamation             token = 40 | tUnaryOp

	tokIdentifier           token = 41 | tIdentifier
	tokStringLiteral        token = 42 | tStringLiteral | tLiteral
	tokNumericLiteral       token = 43 | tNumericLiteral | tLiteral
	tokTemplateTail         token = 44 | tTemplateTail | tMemberOrCallExpression
	tokTemplateContinuation token = 45 | tTemplateContinuation | tMemberOrCallExpression
)

// tokenText holds the source text of fixed tokens, indexed by token index.
var tokenText = [...]string{
	"end of expression",
	"false", "true", "null", "undefined", "$this", "$parent",
	"(", "{", ".", "}", ")", ";", ",", "[", "]", ":", "?", "&", "|",
	"||", "&&", "==", "!=", "===", "!==", "<", ">", "<=", ">=", "in", "instanceof",
	"+", "-", "typeof", "void", "*", "%", "/", "=", "!",
	"identifier", "string", "number", "template", "template",
}

func (t token) String() string {
	i := int(t & tokenIndexMask)
	if i < len(tokenText) {
		return tokenText[i]
	}
	return "unknown"
}

var keywords = map[string]token{
	"false":      tokFalseKeyword,
	"true":       tokTrueKeyword,
	"null":       tokNullKeyword,
	"undefined":  tokUndefinedKeyword,
	"$this":      tokThisScope,
	"$parent":    tokParentScope,
	"in":         tokInKeyword,
	"instanceof": tokInstanceOfKeyword,
	"typeof":     tokTypeofKeyword,
	"void":       tokVoidKeyword,
}
