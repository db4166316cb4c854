package measure

import (
	"errors"
	"math"
	"testing"

	"github.com/gompdf/gompage/internal/layout"
	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/style"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	doc       *html.Document
	styles    *style.StyleEngine
	engine    *layout.Engine
	container *html.Node
	page      *html.Node
}

func newFixture(t *testing.T, src string) *fixture {
	t.Helper()
	doc, err := html.NewParser().ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	log := zaptest.NewLogger(t)
	styles := style.NewStyleEngine(log)
	if err := styles.LoadDocumentStyles(doc.Root); err != nil {
		t.Fatalf("LoadDocumentStyles() error = %v", err)
	}
	f := &fixture{
		doc:    doc,
		styles: styles,
		engine: layout.NewEngine(styles, layout.WithLogger(log)),
	}
	f.container = doc.Root.Find(func(n *html.Node) bool { return n.HasClass("document") })
	f.page = doc.Root.Find(func(n *html.Node) bool { return n.HasClass("page") })
	if f.container == nil || f.page == nil {
		t.Fatal("fixture needs a .document container and a .page template")
	}
	return f
}

func (f *fixture) oracle(t *testing.T, capacity float64, opts ...OracleOption) *LayoutOracle {
	return NewLayoutOracle(f.engine, f.container, 400, capacity,
		append([]OracleOption{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

func countChildren(n *html.Node) int {
	c := 0
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c++
	}
	return c
}

const stackedBlocks = `<div class="document"><div class="page">
	<div style="height:30px"></div>
	<div style="height:30px"></div>
	<div style="height:30px"></div>
	<div style="height:30px"></div>
</div></div>`

func TestLayoutOracleFits(t *testing.T) {
	f := newFixture(t, stackedBlocks)
	blocks := f.page.Elements()
	o := f.oracle(t, 100)

	tests := []struct {
		name string
		n    int
		want bool
	}{
		{"one", 1, true},
		{"three", 3, true},
		{"four", 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := o.Fits(blocks[:tt.n])
			if err != nil {
				t.Fatalf("Fits() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Fits(%d blocks) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
	if o.Calls() != len(tests) {
		t.Errorf("Calls() = %d, want %d", o.Calls(), len(tests))
	}
}

func TestLayoutOracleBoundary(t *testing.T) {
	f := newFixture(t, `<div class="document"><div class="page">
		<div style="height:50px"></div><div style="height:50px"></div>
	</div></div>`)
	blocks := f.page.Elements()

	if ok, err := f.oracle(t, 100).Fits(blocks); err != nil || !ok {
		t.Errorf("Fits() at exact capacity = %v, %v; want true", ok, err)
	}
	if ok, err := f.oracle(t, 99.5).Fits(blocks); err != nil || ok {
		t.Errorf("Fits() above capacity = %v, %v; want false", ok, err)
	}
	if ok, err := f.oracle(t, 99.5, WithTolerance(1)).Fits(blocks); err != nil || !ok {
		t.Errorf("Fits() within tolerance = %v, %v; want true", ok, err)
	}
}

func TestLayoutOracleCollapsesMargins(t *testing.T) {
	f := newFixture(t, `<div class="document"><div class="page">
		<div style="height:30px;margin:10px 0"></div>
		<div style="height:30px;margin:10px 0"></div>
		<div style="height:30px;margin:10px 0"></div>
	</div></div>`)
	blocks := f.page.Elements()
	o := f.oracle(t, 100)

	h, err := o.Height(blocks)
	if err != nil {
		t.Fatalf("Height() error = %v", err)
	}
	if math.Abs(h-110) > 1e-9 {
		t.Errorf("Height() = %v, want 110", h)
	}
	if ok, _ := o.Fits(blocks[:2]); !ok {
		t.Error("two blocks with a collapsed margin should fit in 100px")
	}
}

func TestLayoutOracleReleasesWorkspace(t *testing.T) {
	f := newFixture(t, stackedBlocks)
	before := countChildren(f.container)
	o := f.oracle(t, 100)

	if _, err := o.Fits(f.page.Elements()[:2]); err != nil {
		t.Fatalf("Fits() error = %v", err)
	}
	if _, err := o.Fits([]*html.Node{nil}); !errors.Is(err, ErrMeasurement) {
		t.Errorf("Fits(nil) error = %v, want ErrMeasurement", err)
	}
	if _, err := o.Fits([]*html.Node{html.NewText("x")}); !errors.Is(err, ErrMeasurement) {
		t.Errorf("Fits(text) error = %v, want ErrMeasurement", err)
	}

	if got := countChildren(f.container); got != before {
		t.Errorf("container has %d children after measuring, want %d", got, before)
	}
	leftover := f.doc.Root.Find(func(n *html.Node) bool {
		_, ok := n.GetAttr(workspaceAttr)
		return ok
	})
	if leftover != nil {
		t.Error("workspace still attached")
	}
	if n := len(f.page.Elements()); n != 4 {
		t.Errorf("page has %d blocks after measuring, want 4", n)
	}
}

func TestLayoutOracleWithoutParent(t *testing.T) {
	f := newFixture(t, stackedBlocks)
	o := NewLayoutOracle(f.engine, nil, 400, 100)
	if _, err := o.Fits(f.page.Elements()[:1]); !errors.Is(err, ErrMeasurement) {
		t.Errorf("Fits() error = %v, want ErrMeasurement", err)
	}
}

func TestLayoutOracleShellSelectors(t *testing.T) {
	f := newFixture(t, `<html><head><style>
		.page .tall { height: 60px }
	</style></head><body><div class="document"><div class="page" style="height:500px">
		<div class="tall"></div>
		<div class="tall"></div>
	</div></div></body></html>`)
	blocks := f.page.Elements()

	ok, err := f.oracle(t, 100).Fits(blocks)
	if err != nil || !ok {
		t.Errorf("Fits() outside the page shell = %v, %v; want true", ok, err)
	}
	ok, err = f.oracle(t, 100).ForShell(f.page).Fits(blocks)
	if err != nil || ok {
		t.Errorf("Fits() inside the page shell = %v, %v; want false", ok, err)
	}
}

func TestLayoutOracleForShellPerTemplate(t *testing.T) {
	f := newFixture(t, `<html><head><style>
		.page p { margin: 0; height: 30px }
		.page.big p { height: 60px }
	</style></head><body><div class="document">
		<div class="page"><p></p><p></p></div>
		<div class="page big"><p></p><p></p></div>
	</div></body></html>`)
	pages := f.container.Elements()
	o := f.oracle(t, 100)

	small := o.ForShell(pages[0])
	big := o.ForShell(pages[1])
	if ok, err := small.Fits(pages[1].Elements()); err != nil || !ok {
		t.Errorf("Fits() in the plain template = %v, %v; want true", ok, err)
	}
	if ok, err := big.Fits(pages[1].Elements()); err != nil || ok {
		t.Errorf("Fits() in the big template = %v, %v; want false", ok, err)
	}
	if ok, err := big.Fits(pages[1].Elements()[:1]); err != nil || !ok {
		t.Errorf("Fits() of one block in the big template = %v, %v; want true", ok, err)
	}
	if o.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3 across views", o.Calls())
	}
	if got := countChildren(pages[1]); got != 2 {
		t.Errorf("big template has %d children after measuring, want 2", got)
	}
}

func TestCappedOracle(t *testing.T) {
	height := func(blocks []*html.Node) (float64, error) {
		return float64(len(blocks)) * 25, nil
	}
	o := Capped(height, 100, DefaultTolerance)
	blocks := make([]*html.Node, 5)
	if ok, _ := o.Fits(blocks[:4]); !ok {
		t.Error("four blocks should fit")
	}
	if ok, _ := o.Fits(blocks); ok {
		t.Error("five blocks should not fit")
	}

	failing := Capped(func([]*html.Node) (float64, error) { return 0, ErrMeasurement }, 100, 0)
	if _, err := failing.Fits(nil); !errors.Is(err, ErrMeasurement) {
		t.Errorf("Fits() error = %v, want ErrMeasurement", err)
	}
}

func TestDeriveGeometry(t *testing.T) {
	tests := []struct {
		name    string
		style   string
		want    Geometry
		wantErr error
	}{
		{
			name:  "border box",
			style: "width:200px;height:100px;padding:10px;border:2px solid black;box-sizing:border-box",
			want:  Geometry{Width: 176, Capacity: 76},
		},
		{
			name:  "content box",
			style: "width:200px;height:100px;padding:10px",
			want:  Geometry{Width: 200, Capacity: 100},
		},
		{
			name:  "auto width",
			style: "height:1in;padding:0 20px",
			want:  Geometry{Width: 760, Capacity: 96},
		},
		{
			name:    "no height",
			style:   "width:200px",
			wantErr: ErrNoPageHeight,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, `<div class="document"><div class="page" style="`+tt.style+`"></div></div>`)
			got, err := DeriveGeometry(f.styles, f.page, 800)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DeriveGeometry() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveGeometry() error = %v", err)
			}
			if math.Abs(got.Width-tt.want.Width) > 1e-9 || math.Abs(got.Capacity-tt.want.Capacity) > 1e-9 {
				t.Errorf("DeriveGeometry() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
