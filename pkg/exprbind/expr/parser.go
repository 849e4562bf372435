package expr

import (
	"fmt"
	"strings"
	"sync"
)

// Parser turns expression source into ASTs. Results are cached per input
// string, so parsing the same text twice returns the same Expression.
// A Parser is safe for concurrent use.
type Parser struct {
	mu    sync.RWMutex
	cache map[string]Expression
	hook  func(input string, cached bool, err error)
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithParseHook registers fn to be called after every Parse with whether
// the result came from the cache. The engine uses it for metrics.
func WithParseHook(fn func(input string, cached bool, err error)) ParserOption {
	return func(p *Parser) {
		p.hook = fn
	}
}

// NewParser creates a Parser with an empty cache.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{cache: make(map[string]Expression)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the AST for input. Failed parses are not cached.
func (p *Parser) Parse(input string) (Expression, error) {
	p.mu.RLock()
	e, ok := p.cache[input]
	p.mu.RUnlock()
	if ok {
		p.notify(input, true, nil)
		return e, nil
	}

	e, err := parse(input)
	if err != nil {
		p.notify(input, false, err)
		return nil, err
	}

	p.mu.Lock()
	if existing, ok := p.cache[input]; ok {
		e = existing
	} else {
		p.cache[input] = e
	}
	p.mu.Unlock()
	p.notify(input, false, nil)
	return e, nil
}

// MustParse is like Parse but panics on error.
func (p *Parser) MustParse(input string) Expression {
	e, err := p.Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

// Evict drops input from the cache.
func (p *Parser) Evict(input string) {
	p.mu.Lock()
	delete(p.cache, input)
	p.mu.Unlock()
}

// Len returns the number of cached expressions.
func (p *Parser) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}

func (p *Parser) notify(input string, cached bool, err error) {
	if p.hook != nil {
		p.hook(input, cached, err)
	}
}

// Parse parses input without caching.
func Parse(input string) (Expression, error) {
	return parse(input)
}

// MustParse is Parse that panics on error. It is meant for expressions
// fixed at compile time.
func MustParse(input string) Expression {
	e, err := parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

// Parse context bits. The low bits count $parent hops; the rest record what
// the expression parsed so far is, which decides how a following call or
// member access is represented.
const (
	cAncestor      = 0x1FF
	cThis          = 1 << 9
	cScope         = 1 << 10
	cMember        = 1 << 11
	cKeyed         = 1 << 12
	cShorthandProp = 1 << 13
	cTagged        = 1 << 14
)

type parserState struct {
	input  string
	length int
	index  int
	start  int
	ch     rune
	width  int
	tok    token
	value  any
	raw    string
}

// bailout carries a parse failure up the recursive descent to parse.
type bailout struct {
	err *ParseError
}

func parse(input string) (e Expression, err error) {
	p := &parserState{input: input, length: len(input)}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			e, err = nil, b.err
		}
	}()

	p.decode()
	p.nextToken()
	if p.tok == tokEOF {
		p.fail(ErrUnexpectedToken, "Unexpected end of expression")
	}
	e = p.parseBindingBehavior()
	if p.tok != tokEOF {
		p.fail(ErrUnconsumedToken, fmt.Sprintf("Unconsumed token %s", p.tokenText()))
	}
	return e, nil
}

func (p *parserState) fail(err error, msg string) {
	panic(bailout{err: &ParseError{
		Message: msg,
		Input:   p.input,
		Column:  p.start,
		Err:     err,
	}})
}

func (p *parserState) tokenText() string {
	return p.input[p.start:p.index]
}

func (p *parserState) unexpected() {
	if p.tok == tokEOF {
		p.fail(ErrUnexpectedToken, "Unexpected end of expression")
	}
	p.fail(ErrUnexpectedToken, fmt.Sprintf("Unexpected token %s", p.tokenText()))
}

func (p *parserState) opt(tok token) bool {
	if p.tok == tok {
		p.nextToken()
		return true
	}
	return false
}

func (p *parserState) expect(tok token) {
	if p.tok != tok {
		p.fail(ErrUnexpectedToken, fmt.Sprintf("Missing expected token %s", tok))
	}
	p.nextToken()
}

func (p *parserState) parseBindingBehavior() Expression {
	result := p.parseValueConverter()
	for p.opt(tokAmpersand) {
		if p.tok != tokIdentifier {
			p.fail(ErrUnexpectedToken, "Expected identifier to come after BindingBehavior operator")
		}
		name := p.value.(string)
		p.nextToken()
		var args []Expression
		for p.opt(tokColon) {
			args = append(args, p.parseExpression())
		}
		result = &BindingBehavior{Expression: result, Name: name, Args: args}
	}
	return result
}

func (p *parserState) parseValueConverter() Expression {
	result := p.parseExpression()
	for p.opt(tokBar) {
		if p.tok != tokIdentifier {
			p.fail(ErrUnexpectedToken, "Expected identifier to come after ValueConverter operator")
		}
		name := p.value.(string)
		p.nextToken()
		var args []Expression
		for p.opt(tokColon) {
			args = append(args, p.parseExpression())
		}
		result = &ValueConverter{Expression: result, Name: name, Args: args}
	}
	return result
}

// parseExpression parses an assignment. Assignment is right-associative.
func (p *parserState) parseExpression() Expression {
	start := p.start
	result := p.parseConditional()
	if p.tok != tokEquals {
		return result
	}
	if !isAssignable(result) {
		p.fail(ErrNotAssignable, fmt.Sprintf("Expression %s is not assignable",
			strings.TrimSpace(p.input[start:p.start])))
	}
	p.nextToken()
	return &Assign{Target: result, Value: p.parseExpression()}
}

func isAssignable(e Expression) bool {
	switch e.(type) {
	case *AccessScope, *AccessMember, *AccessKeyed, *Assign:
		return true
	}
	return false
}

func (p *parserState) parseConditional() Expression {
	result := p.parseBinary(0)
	if !p.opt(tokQuestion) {
		return result
	}
	yes := p.parseExpression()
	p.expect(tokColon)
	no := p.parseExpression()
	return &Conditional{Condition: result, Yes: yes, No: no}
}

// parseBinary climbs precedence: it consumes operators binding tighter
// than minPrecedence, so equal precedence associates left.
func (p *parserState) parseBinary(minPrecedence token) Expression {
	left := p.parseLeftHandSide(0)
	for p.tok&tBinaryOp != 0 {
		op := p.tok
		if op&precedenceMask <= minPrecedence {
			break
		}
		p.nextToken()
		left = &Binary{Operation: op.String(), Left: left, Right: p.parseBinary(op & precedenceMask)}
	}
	return left
}

func (p *parserState) parseLeftHandSide(context int) Expression {
	if p.tok&tUnaryOp != 0 {
		op := p.tok.String()
		p.nextToken()
		return &Unary{Operation: op, Expression: p.parseLeftHandSide(0)}
	}

	var result Expression
	var name string

	switch p.tok {
	case tokParentScope:
		for p.tok == tokParentScope {
			p.nextToken()
			context++
			if p.opt(tokPeriod) {
				continue
			}
			if p.tok&(tAccessScopeTerminal|tBinaryOp) == 0 {
				p.unexpected()
			}
			result = &AccessThis{Ancestor: context & cAncestor}
			context = context&cShorthandProp | cThis
			break
		}
		if result == nil {
			if p.tok&tIdentifierOrKeyword == 0 {
				p.unexpected()
			}
			name = p.value.(string)
			result = &AccessScope{Name: name, Ancestor: context & cAncestor}
			context = context&cShorthandProp | cScope
			p.nextToken()
		}
	case tokIdentifier:
		name = p.value.(string)
		result = &AccessScope{Name: name, Ancestor: context & cAncestor}
		context = context&cShorthandProp | cScope
		p.nextToken()
	case tokThisScope:
		p.nextToken()
		result = &AccessThis{}
		context = context&cShorthandProp | cThis
	case tokLParen:
		p.nextToken()
		result = p.parseExpression()
		p.expect(tokRParen)
		context = 0
	case tokLBracket:
		result = p.parseArrayLiteral()
		context = 0
	case tokLBrace:
		result = p.parseObjectLiteral()
		context = 0
	case tokTemplateTail:
		result = &LiteralTemplate{Cooked: []string{p.value.(string)}}
		p.nextToken()
		context = 0
	case tokTemplateContinuation:
		result = p.parseTemplate(0, nil)
		context = 0
	case tokStringLiteral:
		result = &LiteralString{Value: p.value.(string)}
		p.nextToken()
		context = 0
	case tokNumericLiteral:
		result = &LiteralPrimitive{Value: p.value}
		p.nextToken()
		context = 0
	case tokTrueKeyword:
		result = &LiteralPrimitive{Value: true}
		p.nextToken()
		context = 0
	case tokFalseKeyword:
		result = &LiteralPrimitive{Value: false}
		p.nextToken()
		context = 0
	case tokNullKeyword:
		result = &LiteralPrimitive{Value: Null}
		p.nextToken()
		context = 0
	case tokUndefinedKeyword:
		result = &LiteralPrimitive{}
		p.nextToken()
		context = 0
	default:
		p.unexpected()
	}

	if context&cShorthandProp != 0 {
		return result
	}

	for p.tok&tMemberOrCallExpression != 0 {
		switch p.tok {
		case tokPeriod:
			p.nextToken()
			if p.tok&tIdentifierOrKeyword == 0 {
				p.unexpected()
			}
			name = p.value.(string)
			p.nextToken()
			if context&cThis != 0 {
				context = cScope
			} else {
				context = cMember
			}
			if p.tok == tokLParen {
				continue
			}
			if context&cScope != 0 {
				result = &AccessScope{Name: name, Ancestor: ancestorOf(result)}
			} else {
				result = &AccessMember{Object: result, Name: name}
			}
		case tokLBracket:
			p.nextToken()
			result = &AccessKeyed{Object: result, Key: p.parseExpression()}
			p.expect(tokRBracket)
			context = cKeyed
		case tokLParen:
			p.nextToken()
			args := p.parseArguments()
			switch {
			case context&cScope != 0:
				result = &CallScope{Name: name, Args: args, Ancestor: ancestorOf(result)}
			case context&cMember != 0:
				result = &CallMember{Object: result, Name: name, Args: args}
			default:
				result = &CallFunction{Func: result, Args: args}
			}
			context = 0
		case tokTemplateTail:
			result = &LiteralTemplate{
				Cooked: []string{p.value.(string)},
				Raw:    []string{p.raw},
				Func:   result,
			}
			p.nextToken()
			context = 0
		case tokTemplateContinuation:
			result = p.parseTemplate(context|cTagged, result)
			context = 0
		}
	}
	return result
}

// ancestorOf returns the $parent depth of a scope or this access.
func ancestorOf(e Expression) int {
	switch e := e.(type) {
	case *AccessThis:
		return e.Ancestor
	case *AccessScope:
		return e.Ancestor
	}
	return 0
}

func (p *parserState) parseArguments() []Expression {
	var args []Expression
	for p.tok != tokRParen {
		args = append(args, p.parseExpression())
		if !p.opt(tokComma) {
			break
		}
	}
	p.expect(tokRParen)
	return args
}

// parseArrayLiteral parses [a, b]. An elided element is undefined, so [,]
// has two elements.
func (p *parserState) parseArrayLiteral() Expression {
	p.nextToken()
	var elements []Expression
	if p.tok != tokRBracket {
		for {
			if p.tok == tokComma || p.tok == tokRBracket {
				elements = append(elements, &LiteralPrimitive{})
			} else {
				elements = append(elements, p.parseExpression())
			}
			if !p.opt(tokComma) {
				break
			}
		}
	}
	p.expect(tokRBracket)
	return &LiteralArray{Elements: elements}
}

// cursor is a lexer snapshot used to rewind after a failed lookahead.
type cursor struct {
	index, start, width int
	ch                  rune
	tok                 token
	value               any
}

func (p *parserState) save() cursor {
	return cursor{index: p.index, start: p.start, width: p.width, ch: p.ch, tok: p.tok, value: p.value}
}

func (p *parserState) restore(c cursor) {
	p.index, p.start, p.width, p.ch, p.tok, p.value = c.index, c.start, c.width, c.ch, c.tok, c.value
}

// parseObjectLiteral parses {a: 1, 'b': 2, 3: c, d}. An identifier key
// with no colon is shorthand for key: key.
func (p *parserState) parseObjectLiteral() Expression {
	p.nextToken()
	var keys []string
	var values []Expression
	for p.tok != tokRBrace {
		switch {
		case p.tok&tIdentifierOrKeyword != 0:
			snapshot := p.save()
			key := p.value.(string)
			p.nextToken()
			if p.opt(tokColon) {
				values = append(values, p.parseExpression())
			} else {
				p.restore(snapshot)
				values = append(values, p.parseLeftHandSide(cShorthandProp))
			}
			keys = append(keys, key)
		case p.tok == tokStringLiteral:
			keys = append(keys, p.value.(string))
			p.nextToken()
			p.expect(tokColon)
			values = append(values, p.parseExpression())
		case p.tok == tokNumericLiteral:
			keys = append(keys, FormatNumber(p.value.(float64)))
			p.nextToken()
			p.expect(tokColon)
			values = append(values, p.parseExpression())
		default:
			p.unexpected()
		}
		if p.tok != tokRBrace {
			p.expect(tokComma)
		}
	}
	p.expect(tokRBrace)
	return &LiteralObject{Keys: keys, Values: values}
}

// parseTemplate parses a template whose first segment is the current
// TemplateContinuation token. Segments after a substitution are scanned
// directly from the closing brace.
func (p *parserState) parseTemplate(context int, tag Expression) Expression {
	tagged := context&cTagged != 0
	cooked := []string{p.value.(string)}
	var raw []string
	if tagged {
		raw = []string{p.raw}
	}

	var expressions []Expression
	for {
		p.nextToken()
		expressions = append(expressions, p.parseExpression())
		if p.tok != tokRBrace {
			p.fail(ErrUnterminatedTemplate, "Unterminated template")
		}
		p.start = p.index
		tok := p.scanTemplateSegment()
		cooked = append(cooked, p.value.(string))
		if tagged {
			raw = append(raw, p.raw)
		}
		if tok == tokTemplateTail {
			break
		}
	}
	p.nextToken()
	return &LiteralTemplate{Cooked: cooked, Expressions: expressions, Raw: raw, Func: tag}
}
