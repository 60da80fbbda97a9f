package storefront

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/content"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

type stubReader struct {
	singles     map[string]content.Record
	collections map[string][]content.Record
	err         error
	viewers     []content.Viewer
}

func (s *stubReader) Get(_ context.Context, resource string) (content.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	if rec, ok := s.singles[resource]; ok {
		return rec, nil
	}
	return content.Record{}, nil
}

func (s *stubReader) List(_ context.Context, resource string, viewer content.Viewer, _ bool) ([]content.Record, error) {
	s.viewers = append(s.viewers, viewer)
	return s.collections[resource], nil
}

type stubGate struct{ editable bool }

func (g stubGate) CanEdit() bool { return g.editable }

func (g stubGate) Subscribe(func(editsession.State)) func() { return func() {} }

func newReader() *stubReader {
	return &stubReader{
		singles: map[string]content.Record{
			content.ResourceSiteSettings: {"siteName": "Random Cafe", "tagline": "Good beans"},
			content.ResourceHero:         {"title": "Fresh roast", "subtitle": "Every morning"},
			content.ResourceAbout:        {"title": "About us", "content": "We **love** coffee<script>x()</script>", "heading": "Our story", "description": "Since 2020"},
			content.ResourceContactInfo: {
				"addressStreet": "1 Main St", "addressCity": "Town", "addressState": "ST", "addressZipcode": "00001",
				"phone": "555", "email": "hi@cafe.test",
				"openingHours": map[string]any{"monday": "8-17"},
			},
			content.ResourceSocialLinks: {"instagram": "https://instagram.com/cafe"},
		},
		collections: map[string][]content.Record{
			content.ResourceMenu: {
				{"id": "m1", "name": "Latte", "description": "Milky", "price": 4.5, "isVegetarian": true},
				{"id": "m2", "name": "Bagel", "description": "Toasted", "price": 3.0, "isAvailable": false},
			},
			content.ResourceReviews: {{"id": "r1", "userName": "Ann", "rating": 4.0, "comment": "Lovely"}},
		},
	}
}

func TestRenderReadOnlyPage(t *testing.T) {
	r, err := NewRenderer(newReader())
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(context.Background(), &buf, Request{Gate: stubGate{}}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>Random Cafe</title>",
		"Fresh roast",
		"<strong>love</strong>",
		"4.50",
		"menu-item--unavailable",
		"★★★★☆",
		"<dt>Monday</dt><dd>8-17</dd>",
		"<dt>Tuesday</dt><dd>Closed</dd>",
		`href="https://instagram.com/cafe"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in page:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Fatal("markdown output must be sanitized")
	}
	if strings.Contains(out, "editable-region") || strings.Contains(out, "edit-banner") {
		t.Fatal("read-only page must not carry edit overlays")
	}
}

func TestRenderEditingPageWrapsSections(t *testing.T) {
	r, err := NewRenderer(newReader())
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(context.Background(), &buf, Request{Gate: stubGate{editable: true}, Viewer: content.Viewer{Role: enums.RoleStaff}}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`class="is-editing"`,
		`class="edit-banner"`,
		`data-content-type="hero"`,
		`data-content-type="menu-item" data-record-id="m1"`,
		`aria-label="Edit Menu Item"`,
		`data-content-type="opening-hours"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in page:\n%s", want, out)
		}
	}
}

func TestBuildDispatchesEditorRecords(t *testing.T) {
	reader := newReader()
	r, err := NewRenderer(reader)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	var gotType enums.ContentType
	var gotRec map[string]any
	page, err := r.Build(context.Background(), Request{
		Gate:   stubGate{editable: true},
		Viewer: content.Viewer{Role: enums.RoleAdmin},
		Dispatch: func(t enums.ContentType, rec map[string]any) {
			gotType, gotRec = t, rec
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(reader.viewers) == 0 || reader.viewers[0].Role != enums.RoleAdmin {
		t.Fatalf("expected viewer to be forwarded, got %+v", reader.viewers)
	}

	menu := page.Regions(enums.ContentTypeMenuItem)
	if len(menu) != 2 {
		t.Fatalf("expected two menu regions, got %d", len(menu))
	}
	if !menu[1].Click() {
		t.Fatal("expected click to be handled while editing")
	}
	if gotType != enums.ContentTypeMenuItem || gotRec["id"] != "m2" {
		t.Fatalf("unexpected dispatch %s %v", gotType, gotRec)
	}

	hours := page.Regions(enums.ContentTypeOpeningHours)
	if len(hours) != 1 || !hours[0].Click() {
		t.Fatal("expected opening hours region")
	}
	if gotRec["monday"] != "8-17" {
		t.Fatalf("opening hours editor should receive the nested record, got %v", gotRec)
	}

	about := page.Regions(enums.ContentTypeAbout)
	about[0].Click()
	if _, leaked := gotRec["bodyHTML"]; leaked {
		t.Fatal("rendered markdown must not reach the editor record")
	}
}

func TestRenderPropagatesContentErrors(t *testing.T) {
	reader := newReader()
	reader.err = errors.New("db down")
	r, err := NewRenderer(reader)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if err := r.Render(context.Background(), &bytes.Buffer{}, Request{}); err == nil {
		t.Fatal("expected error")
	}
}
