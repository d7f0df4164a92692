// Package mediaqueries merges top-level @media blocks that share a query and
// moves them after the rest of the style sheet.
package mediaqueries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
	"github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
)

// ErrUnbalanced is returned for style sheets whose blocks do not close.
var ErrUnbalanced = errors.New("unbalanced style sheet")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register fills the media-query grouping role.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTransform(pipeline.RoleGroupMedia, &registry.RegisteredTransform{
		Module: "mediaqueries",
		New:    func(*project.Settings) (pipeline.Transform, error) { return Grouper{}, nil },
	})
}

// Grouper is the grouping transform.
type Grouper struct{}

// Name returns the transform name.
func (Grouper) Name() string { return "group-media-queries" }

// Apply groups the media queries of f.
func (Grouper) Apply(_ context.Context, f *pipeline.File) ([]*pipeline.File, error) {
	out, err := Group(string(f.Contents))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	f.Contents = []byte(out)
	return []*pipeline.File{f}, nil
}

type statement struct {
	text  string
	key   string
	query string
	body  string
	media bool
}

// Group returns css with every top-level @media block merged into one block
// per distinct query. Other statements, comments included, keep their order;
// the merged blocks follow them in the order their queries first appear.
// Queries that differ only in whitespace are merged.
func Group(css string) (string, error) {
	stmts, err := split(css)
	if err != nil {
		return "", err
	}

	var (
		rest    []string
		order   []string
		queries = make(map[string]string)
		grouped = make(map[string][]string)
	)
	for _, s := range stmts {
		if !s.media {
			rest = append(rest, s.text)
			continue
		}
		if _, seen := queries[s.key]; !seen {
			order = append(order, s.key)
			queries[s.key] = s.query
		}
		if body := strings.TrimSpace(s.body); body != "" {
			grouped[s.key] = append(grouped[s.key], body)
		}
	}

	var b strings.Builder
	for _, text := range rest {
		b.WriteString(text)
		b.WriteByte('\n')
	}
	for _, key := range order {
		fmt.Fprintf(&b, "@media %s {\n%s\n}\n", queries[key], strings.Join(grouped[key], "\n"))
	}
	return b.String(), nil
}

// split cuts css into top-level statements using the parser's grammar
// stream. Offsets into css delimit each statement, so the text of rules is
// kept as written.
func split(css string) ([]statement, error) {
	p := cssparse.NewParser(parse.NewInputString(css), false)

	var (
		out       []statement
		start     int
		bodyStart int
		depth     int
		cur       statement
	)

	emit := func(end int) {
		cur.text = strings.TrimSpace(css[start:end])
		if cur.text != "" {
			out = append(out, cur)
		}
		start, cur = end, statement{}
	}

	for {
		gt, tt, data := p.Next()
		switch gt {
		case cssparse.ErrorGrammar:
			if errors.Is(p.Err(), io.EOF) && !p.HasParseError() {
				if depth != 0 {
					return nil, fmt.Errorf("%w: missing '}'", ErrUnbalanced)
				}
				emit(len(css))
				return out, nil
			}
			if depth == 0 {
				return nil, fmt.Errorf("%w: %v", ErrUnbalanced, p.Err())
			}

		case cssparse.CommentGrammar:
			if !strings.HasSuffix(string(data), "*/") {
				return nil, fmt.Errorf("%w: unterminated comment", ErrUnbalanced)
			}
			emit(p.Offset())

		case cssparse.AtRuleGrammar, cssparse.TokenGrammar:
			if depth == 0 {
				emit(p.Offset())
			}

		case cssparse.BeginAtRuleGrammar:
			if depth == 0 && string(data) == "@media" {
				if key := queryKey(p.Values()); key != "" {
					cur = statement{media: true, key: key, query: rawQuery(css[start : p.Offset()-1])}
					bodyStart = p.Offset()
				}
			}
			depth++

		case cssparse.BeginRulesetGrammar:
			depth++

		case cssparse.EndAtRuleGrammar, cssparse.EndRulesetGrammar:
			if tt == cssparse.ErrorToken {
				return nil, fmt.Errorf("%w: missing '}'", ErrUnbalanced)
			}
			depth--
			if depth == 0 {
				if cur.media {
					cur.body = css[bodyStart : p.Offset()-1]
				}
				emit(p.Offset())
			}
		}
	}
}

// queryKey joins the prelude tokens of an @media rule. The parser has
// already collapsed whitespace and dropped comments.
func queryKey(values []cssparse.Token) string {
	var b strings.Builder
	for _, v := range values {
		b.Write(v.Data)
	}
	return strings.TrimSpace(b.String())
}

// rawQuery returns the query as first written, whitespace collapsed.
func rawQuery(prelude string) string {
	prelude = strings.TrimSpace(prelude)
	return strings.Join(strings.Fields(prelude[len("@media"):]), " ")
}
