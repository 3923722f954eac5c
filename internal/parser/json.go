package parser

import (
	"fmt"
	"strings"

	"github.com/gnolang/treduce/internal/tree"
)

// JSON parses JSON documents with a lexer of its own, so every token keeps
// its exact source span; stock decoders hide token positions, which the
// unparser needs for whitespace synthesis.
type JSON struct{}

// Name implements Adapter.
func (JSON) Name() string { return "json" }

// Parse implements Adapter.
func (JSON) Parse(src []byte, opts Options) (*tree.Node, error) {
	toks, err := lexJSON(string(src))
	if err != nil {
		return nil, err
	}
	p := &jsonParser{toks: toks, opts: opts}
	root := tree.NewRoot()
	val, err := p.value(root)
	if err != nil {
		return nil, err
	}
	root.AddChild(val)
	p.drainHidden(root)
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return nil, fmt.Errorf("parser: json: trailing input %q at %d:%d", t.text, t.start.Line, t.start.Col)
	}
	return root, nil
}

type jsonTok struct {
	name   string
	text   string
	hidden bool
	start  tree.Position
	end    tree.Position
}

type jsonParser struct {
	toks []jsonTok
	pos  int
	opts Options
}

// drainHidden attaches pending whitespace tokens to parent (or discards
// them when hidden tokens are not built into the tree).
func (p *jsonParser) drainHidden(parent *tree.Node) {
	for p.pos < len(p.toks) && p.toks[p.pos].hidden {
		t := p.toks[p.pos]
		p.pos++
		if p.opts.HiddenTokens {
			parent.AddChild(tree.NewHiddenToken(t.name, t.text, t.start, t.end))
		}
	}
}

// peek returns the next significant token without consuming it, attaching
// any hidden tokens in front of it to parent.
func (p *jsonParser) peek(parent *tree.Node) (jsonTok, error) {
	p.drainHidden(parent)
	if p.pos >= len(p.toks) {
		return jsonTok{}, fmt.Errorf("parser: json: unexpected end of input")
	}
	return p.toks[p.pos], nil
}

// take consumes the next significant token and appends it to parent.
func (p *jsonParser) take(parent *tree.Node) (jsonTok, error) {
	t, err := p.peek(parent)
	if err != nil {
		return t, err
	}
	p.pos++
	parent.AddChild(tree.NewToken(t.name, t.text, p.opts.replacement(t.name, t.text), t.start, t.end))
	return t, nil
}

// expect consumes the next significant token, which must have the given
// name.
func (p *jsonParser) expect(parent *tree.Node, name string) error {
	t, err := p.peek(parent)
	if err != nil {
		return err
	}
	if t.name != name {
		return fmt.Errorf("parser: json: expected %s, got %q at %d:%d", name, t.text, t.start.Line, t.start.Col)
	}
	_, err = p.take(parent)
	return err
}

// value parses one JSON value. Scalars become single tokens; objects and
// arrays become rule nodes owning their punctuation, so the tree mirrors
// the grammar without singleton wrapper chains.
func (p *jsonParser) value(parent *tree.Node) (*tree.Node, error) {
	t, err := p.peek(parent)
	if err != nil {
		return nil, err
	}
	switch t.name {
	case "LBRACE":
		return p.object()
	case "LBRACKET":
		return p.array()
	case "STRING", "NUMBER", "TRUE", "FALSE", "NULL":
		p.pos++
		return tree.NewToken(t.name, t.text, p.opts.replacement(t.name, t.text), t.start, t.end), nil
	default:
		return nil, fmt.Errorf("parser: json: unexpected %q at %d:%d", t.text, t.start.Line, t.start.Col)
	}
}

func (p *jsonParser) object() (*tree.Node, error) {
	obj := tree.NewRule("object", p.opts.replacement("object", "{}"))
	if err := p.expect(obj, "LBRACE"); err != nil {
		return nil, err
	}
	for {
		t, err := p.peek(obj)
		if err != nil {
			return nil, err
		}
		if t.name == "RBRACE" {
			break
		}
		if err := p.member(obj); err != nil {
			return nil, err
		}
		t, err = p.peek(obj)
		if err != nil {
			return nil, err
		}
		if t.name != "COMMA" {
			break
		}
		if _, err := p.take(obj); err != nil {
			return nil, err
		}
	}
	if err := p.expect(obj, "RBRACE"); err != nil {
		return nil, err
	}
	setSpan(obj)
	return obj, nil
}

func (p *jsonParser) member(obj *tree.Node) error {
	m := tree.NewRule("member", p.opts.replacement("member", ""))
	if err := p.expect(m, "STRING"); err != nil {
		return err
	}
	if err := p.expect(m, "COLON"); err != nil {
		return err
	}
	val, err := p.value(m)
	if err != nil {
		return err
	}
	m.AddChild(val)
	setSpan(m)
	obj.AddChild(m)
	return nil
}

func (p *jsonParser) array() (*tree.Node, error) {
	arr := tree.NewRule("array", p.opts.replacement("array", "[]"))
	if err := p.expect(arr, "LBRACKET"); err != nil {
		return nil, err
	}
	for {
		t, err := p.peek(arr)
		if err != nil {
			return nil, err
		}
		if t.name == "RBRACKET" {
			break
		}
		val, err := p.value(arr)
		if err != nil {
			return nil, err
		}
		arr.AddChild(val)
		t, err = p.peek(arr)
		if err != nil {
			return nil, err
		}
		if t.name != "COMMA" {
			break
		}
		if _, err := p.take(arr); err != nil {
			return nil, err
		}
	}
	if err := p.expect(arr, "RBRACKET"); err != nil {
		return nil, err
	}
	setSpan(arr)
	return arr, nil
}

func setSpan(n *tree.Node) {
	if len(n.Children) == 0 {
		return
	}
	n.Start = n.Children[0].Start
	n.End = n.Children[len(n.Children)-1].End
}

var jsonPunct = map[byte]string{
	'{': "LBRACE",
	'}': "RBRACE",
	'[': "LBRACKET",
	']': "RBRACKET",
	',': "COMMA",
	':': "COLON",
}

func lexJSON(src string) ([]jsonTok, error) {
	var toks []jsonTok
	line, col := 1, 1
	i := 0

	emit := func(name, text string, hidden bool) {
		start := tree.Position{Line: line, Col: col}
		for _, r := range text {
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		toks = append(toks, jsonTok{
			name:   name,
			text:   text,
			hidden: hidden,
			start:  start,
			end:    tree.Position{Line: line, Col: col},
		})
		i += len(text)
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			j := i
			for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
				j++
			}
			emit("WS", src[i:j], true)
		case jsonPunct[c] != "":
			emit(jsonPunct[c], src[i:i+1], false)
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				return nil, fmt.Errorf("parser: json: unterminated string at %d:%d", line, col)
			}
			emit("STRING", src[i:j+1], false)
		case c == '-' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(src) && strings.ContainsRune("0123456789.eE+-", rune(src[j])) {
				j++
			}
			emit("NUMBER", src[i:j], false)
		case strings.HasPrefix(src[i:], "true"):
			emit("TRUE", "true", false)
		case strings.HasPrefix(src[i:], "false"):
			emit("FALSE", "false", false)
		case strings.HasPrefix(src[i:], "null"):
			emit("NULL", "null", false)
		default:
			return nil, fmt.Errorf("parser: json: unexpected character %q at %d:%d", c, line, col)
		}
	}
	return toks, nil
}
