package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser represents a CSS parser
type Parser struct {
	log *zap.Logger
	// media types whose @media blocks are applied; others are skipped
	media map[string]bool
}

// Rule represents a CSS rule
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
}

// NewParser creates a new CSS parser. Rules inside @media blocks are kept only
// for print and all media.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{
		log:   log.Named("css-parser"),
		media: map[string]bool{"print": true, "all": true},
	}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	sheet := &Stylesheet{}
	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.atEnd(parser) {
				return sheet, nil
			}
		case css.BeginRulesetGrammar:
			if rule := p.parseRuleset(parser, data); rule != nil {
				sheet.Rules = append(sheet.Rules, rule)
			}
		case css.BeginAtRuleGrammar:
			if strings.EqualFold(string(data), "@media") && p.mediaApplies(parser.Values()) {
				sheet.Rules = append(sheet.Rules, p.parseMediaBlock(parser)...)
			} else {
				p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))
				skipAtRuleBlock(parser)
			}
		}
	}
}

// ParseInline parses the declarations of a style attribute
func (p *Parser) ParseInline(content string) []*Declaration {
	parser := css.NewParser(parse.NewInput(strings.NewReader(content)), true)
	var out []*Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.atEnd(parser) {
				return out
			}
		case css.DeclarationGrammar:
			if d := newDeclaration(data, parser.Values()); d != nil {
				out = append(out, d)
			}
		}
	}
}

// parseRuleset reads declarations up to the end of the current ruleset
func (p *Parser) parseRuleset(parser *css.Parser, data []byte) *Rule {
	selectors := parseSelectors(data, parser.Values())
	var decls []*Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if !p.atEnd(parser) {
				continue
			}
			fallthrough
		case css.EndRulesetGrammar:
			if len(selectors) == 0 {
				return nil
			}
			return &Rule{Selectors: selectors, Declarations: decls}
		case css.DeclarationGrammar:
			if d := newDeclaration(data, parser.Values()); d != nil {
				decls = append(decls, d)
			}
		}
	}
}

// parseMediaBlock collects the rulesets of an applicable @media block
func (p *Parser) parseMediaBlock(parser *css.Parser) []*Rule {
	var rules []*Rule
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.atEnd(parser) {
				return rules
			}
		case css.EndAtRuleGrammar:
			return rules
		case css.BeginRulesetGrammar:
			if rule := p.parseRuleset(parser, data); rule != nil {
				rules = append(rules, rule)
			}
		case css.BeginAtRuleGrammar:
			skipAtRuleBlock(parser)
		}
	}
}

// mediaApplies reports whether a media query list names a supported media type
func (p *Parser) mediaApplies(tokens []css.Token) bool {
	for _, t := range tokens {
		if t.TokenType == css.IdentToken && p.media[strings.ToLower(string(t.Data))] {
			return true
		}
	}
	return false
}

// atEnd reports whether an ErrorGrammar marks the end of input. Other errors
// only invalidate the current declaration and parsing resumes after it.
func (p *Parser) atEnd(parser *css.Parser) bool {
	err := parser.Err()
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	p.log.Debug("CSS parse error", zap.Error(err))
	return false
}

func skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err == nil || errors.Is(err, io.EOF) {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		case css.AtRuleGrammar:
			// statement at-rule without a block, e.g. @import
		}
	}
}

// parseSelectors splits a selector group on commas
func parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for _, s := range strings.Split(sb.String(), ",") {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// newDeclaration builds a declaration from a property name and its value tokens
func newDeclaration(name []byte, tokens []css.Token) *Declaration {
	property := strings.ToLower(strings.TrimSpace(string(name)))
	if property == "" {
		return nil
	}

	important := false
	tokens = trimWhitespace(tokens)
	if n := len(tokens); n >= 2 &&
		tokens[n-1].TokenType == css.IdentToken && strings.EqualFold(string(tokens[n-1].Data), "important") &&
		tokens[n-2].TokenType == css.DelimToken && string(tokens[n-2].Data) == "!" {
		important = true
		tokens = trimWhitespace(tokens[:n-2])
	}

	var sb strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.Write(t.Data)
	}
	value := strings.TrimSpace(sb.String())
	if value == "" {
		return nil
	}
	return &Declaration{Property: property, Value: value, Important: important}
}

func trimWhitespace(tokens []css.Token) []css.Token {
	for len(tokens) > 0 && tokens[0].TokenType == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].TokenType == css.WhitespaceToken {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}
