package api

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gompdf/gompage/internal/parser/html"
	"go.uber.org/zap/zaptest"
)

const blocksDoc = `<!DOCTYPE html>
<html><head><style>
.page { padding: 0 }
.page p { margin: 0; height: 30px }
</style></head>
<body><div class="document">
<div class="page" data-kind="report">
<p id="b0"></p><p id="b1"></p><p id="b2"></p><p id="b3"></p><p id="b4"></p>
</div>
</div></body></html>`

func tableDoc(rows int) string {
	var b strings.Builder
	b.WriteString(`<html><head><style>
.sheet { padding: 0 }
.sheet table { border-spacing: 0; margin: 0 }
.sheet td, .sheet th { padding: 0 }
</style></head><body><main id="out">
<section class="sheet"><table>
<thead><tr style="height:20px"><th>h</th></tr></thead>
<tbody>`)
	for i := range rows {
		fmt.Fprintf(&b, `<tr id="r%d" style="height:10px"><td></td></tr>`, i)
	}
	b.WriteString(`</tbody></table></section></main></body></html>`)
	return b.String()
}

func pageIDs(p *Page) []string {
	var ids []string
	for _, b := range p.Blocks {
		id, _ := b.GetAttr("id")
		ids = append(ids, id)
	}
	return ids
}

func count(n *html.Node, tag string) int {
	c := 0
	if n.IsElement(tag) {
		c++
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c += count(ch, tag)
	}
	return c
}

func TestPaginateBlocks(t *testing.T) {
	p := New(WithPageSize("400px", "100px"), WithLogger(zaptest.NewLogger(t)))
	res, err := p.Paginate(blocksDoc)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}

	if math.Abs(res.Capacity-100) > 1e-6 || math.Abs(res.Width-400) > 1e-6 {
		t.Errorf("geometry = %v x %v, want 400 x 100", res.Width, res.Capacity)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	if got := strings.Join(pageIDs(res.Pages[0]), ","); got != "b0,b1,b2" {
		t.Errorf("page 1 = %s, want b0,b1,b2", got)
	}
	if got := strings.Join(pageIDs(res.Pages[1]), ","); got != "b3,b4" {
		t.Errorf("page 2 = %s, want b3,b4", got)
	}

	kids := res.Container.Elements()
	if len(kids) != 2 {
		t.Fatalf("container has %d children, want 2 pages", len(kids))
	}
	for i, k := range kids {
		if !k.HasClass("page") {
			t.Errorf("page %d lost its class", i+1)
		}
		if v, _ := k.GetAttr("data-kind"); v != "report" {
			t.Errorf("page %d data-kind = %q, want report", i+1, v)
		}
		if res.Pages[i].Index != i+1 {
			t.Errorf("page %d Index = %d", i+1, res.Pages[i].Index)
		}
	}
	if id, _ := res.Container.GetAttr("id"); !strings.HasPrefix(id, "id-") {
		t.Errorf("container id = %q, want a generated id", id)
	}

	out, err := res.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if !strings.Contains(out, "page-break-after: always") {
		t.Error("print stylesheet missing from output")
	}
	if strings.Contains(out, "data-gompage-workspace") {
		t.Error("measurement workspace leaked into output")
	}
}

func TestPaginateDerivesCapacityFromPadding(t *testing.T) {
	doc := strings.Replace(blocksDoc, ".page { padding: 0 }", ".page { padding: 10px }", 1)
	res, err := New(WithPageSize("400px", "100px")).Paginate(doc)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if math.Abs(res.Capacity-80) > 1e-6 || math.Abs(res.Width-380) > 1e-6 {
		t.Errorf("geometry = %v x %v, want 380 x 80", res.Width, res.Capacity)
	}
	// two 30px blocks per 80px page
	if len(res.Pages) != 3 {
		t.Errorf("got %d pages, want 3", len(res.Pages))
	}
}

func TestPaginateFixedCapacity(t *testing.T) {
	res, err := New(WithPageSize("400px", "100px"), WithCapacity(60)).Paginate(blocksDoc)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	var sizes []int
	for _, pg := range res.Pages {
		sizes = append(sizes, len(pg.Blocks))
	}
	if fmt.Sprint(sizes) != "[2 2 1]" {
		t.Errorf("page sizes = %v, want [2 2 1]", sizes)
	}
}

func TestPaginateMeasuresEachTemplateWithItsOwnStyles(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><head><style>
.page { padding: 0 }
.page p { margin: 0; height: 30px }
.page.big p { height: 60px }
</style></head><body><div class="document">
<div class="page"><p id="a0"></p><p id="a1"></p></div>
<div class="page big">`)
	for i := range 8 {
		fmt.Fprintf(&b, `<p id="c%d"></p>`, i)
	}
	b.WriteString(`</div></div></body></html>`)

	res, err := New(WithPageSize("300px", "400px")).Paginate(b.String())
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	var got []string
	for _, pg := range res.Pages {
		got = append(got, strings.Join(pageIDs(pg), "+"))
	}
	// six 60px blocks fill the 400px page of the second template
	want := "a0+a1,c0+c1+c2+c3+c4+c5,c6+c7"
	if strings.Join(got, ",") != want {
		t.Errorf("pages = %v, want %s", got, want)
	}
	if len(res.Overflows) != 0 {
		t.Errorf("Overflows = %+v, want none", res.Overflows)
	}
	if !res.Pages[2].Node.HasClass("big") || res.Pages[2].Template != 2 {
		t.Errorf("last page template = %d, want the big template", res.Pages[2].Template)
	}
}

func TestPaginateTableRepeatsHeader(t *testing.T) {
	var seen []string
	p := New(
		WithPageSize("400px", "100px"),
		WithContainerSelector("#out"),
		WithPageClass("sheet"),
		WithInject(func(pi PageInfo) string {
			seen = append(seen, fmt.Sprintf("%d/%d", pi.Number, pi.Total))
			return fmt.Sprintf(`<div class="footer">page %d of %d</div>`, pi.Number, pi.Total)
		}),
	)
	res, err := p.Paginate(tableDoc(10))
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	for i, want := range []int{8, 2} {
		pg := res.Pages[i]
		if n := count(pg.Node, "thead"); n != 1 {
			t.Errorf("page %d has %d headers, want 1", i+1, n)
		}
		if n := count(pg.Node, "tr") - 1; n != want {
			t.Errorf("page %d has %d body rows, want %d", i+1, n, want)
		}
	}
	if strings.Join(seen, ",") != "1/2,2/2" {
		t.Errorf("hook saw %v, want 1/2,2/2", seen)
	}

	out, err := res.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if !strings.Contains(out, "page 2 of 2") {
		t.Error("injected footer missing")
	}
	for i := range 10 {
		if strings.Count(out, fmt.Sprintf(`id="r%d"`, i)) != 1 {
			t.Errorf("row r%d not present exactly once", i)
		}
	}
}

func TestPaginateOverflow(t *testing.T) {
	doc := strings.Replace(blocksDoc, `<p id="b2"></p>`, `<p id="b2" style="height:150px"></p>`, 1)

	_, err := New(WithPageSize("400px", "100px")).Paginate(doc)
	var ue *UnrepresentableError
	if !errors.Is(err, ErrUnrepresentable) || !errors.As(err, &ue) {
		t.Fatalf("Paginate() error = %v, want ErrUnrepresentable", err)
	}
	if ue.Tag != "p" || ue.Template != 1 || ue.Row != -1 {
		t.Errorf("error = %+v", ue)
	}

	res, err := New(WithPageSize("400px", "100px"), WithOverflowPolicy(OverflowPlace)).Paginate(doc)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(res.Overflows) != 1 || res.Overflows[0].Tag != "p" {
		t.Errorf("Overflows = %+v, want one <p>", res.Overflows)
	}
	if len(res.Pages) != 3 || res.Pages[1].Overflow == nil {
		t.Errorf("got %d pages, want the oversized block alone on page 2", len(res.Pages))
	}
}

func TestPaginateErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		opts []Option
		want error
	}{
		{"no templates", `<body><div class="document"><p>x</p></div></body>`, nil, ErrNoPageTemplates},
		{"no container", blocksDoc, []Option{WithContainerSelector("#missing")}, ErrNoContainer},
		{"bad page size", blocksDoc, []Option{WithPageSize("50%", "10px")}, ErrInvalidPageSize},
		{"malformed table", `<body><div class="document"><div class="page"><p>a</p><table><tbody><tr><td>x</td></tr></tbody></table></div></div></body>`, nil, ErrMalformedTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...).Paginate(tt.doc)
			if !errors.Is(err, tt.want) {
				t.Errorf("Paginate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPageOrientation(t *testing.T) {
	o := DefaultOptions()
	o.PageOrientation = PageOrientationLandscape
	size, w, h, err := o.pageSize()
	if err != nil {
		t.Fatalf("pageSize() error = %v", err)
	}
	if size.Width != PageSizeA4Height || size.Height != PageSizeA4Width || w <= h {
		t.Errorf("landscape A4 = %+v (%v x %v)", size, w, h)
	}

	o = NewWithOptions(DefaultOptions()).WithOption(WithPageSize("11in", "8.5in")).Options()
	size, _, _, err = o.pageSize()
	if err != nil {
		t.Fatalf("pageSize() error = %v", err)
	}
	if size.Width != "8.5in" {
		t.Errorf("portrait width = %q, want 8.5in", size.Width)
	}
}

func TestPaginateFileAndPDF(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte(".page p { margin: 0; height: 40px }"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := `<html><head><link rel="stylesheet" href="style.css"><style>.page { padding: 0 }</style></head>
<body><div class="document"><div class="page"><h1 style="margin:0;height:20px">Title</h1><p>one</p><p>two</p><p>three</p></div></div></body></html>`
	path := filepath.Join(dir, "doc.html")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(WithPageSize("300px", "100px"), WithTitle("Report"))
	res, err := p.PaginateFile(path)
	if err != nil {
		t.Fatalf("PaginateFile() error = %v", err)
	}
	// 20 + 40 + 40 fills the first page when the linked stylesheet applies
	if len(res.Pages) != 2 || len(res.Pages[0].Blocks) != 3 {
		t.Fatalf("got %d pages, first with %d blocks; want 2 and 3", len(res.Pages), len(res.Pages[0].Blocks))
	}

	var buf bytes.Buffer
	if err := res.WritePDF(&buf); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if n := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); n != 2 {
		t.Errorf("PDF has %d pages, want 2", n)
	}
}
