// Package storefront renders the public café page with every content section
// wrapped in an editable region.
package storefront

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/content"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/editor"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/region"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

//go:embed templates/*.html
var templateFS embed.FS

// EditBanner is the text shown above the page while editing.
var EditBanner = content.Record{
	"text":     "Edit mode is on",
	"subtitle": "Click any highlighted section to change it.",
}

type contentReader interface {
	Get(ctx context.Context, resource string) (content.Record, error)
	List(ctx context.Context, resource string, viewer content.Viewer, all bool) ([]content.Record, error)
}

// Dispatch receives a click on an editable section.
type Dispatch func(contentType enums.ContentType, rec map[string]any)

// Renderer builds the storefront page.
type Renderer struct {
	content contentReader
	tmpl    *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer(reader contentReader) (*Renderer, error) {
	if reader == nil {
		return nil, fmt.Errorf("content reader required")
	}
	tmpl, err := template.New("storefront").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse storefront templates: %w", err)
	}
	return &Renderer{content: reader, tmpl: tmpl}, nil
}

// Request carries the per-visitor inputs of a render.
type Request struct {
	Gate     region.Gate
	Viewer   content.Viewer
	Dispatch Dispatch
}

type pageData struct {
	Title    string
	Editing  bool
	Banner   template.HTML
	Logo     template.HTML
	Nav      template.HTML
	Hero     template.HTML
	About    template.HTML
	Story    template.HTML
	Menu     []template.HTML
	Offers   []template.HTML
	Features []template.HTML
	Team     []template.HTML
	Gallery  []template.HTML
	Reviews  []template.HTML
	Contact  template.HTML
	Hours    template.HTML
	Social   template.HTML
	Footer   template.HTML
}

// Page is a built storefront ready to be written out.
type Page struct {
	tmpl    *template.Template
	data    pageData
	regions []*region.Region
	types   []enums.ContentType
}

// Build loads every section and wraps it in a region bound to req.Gate.
func (r *Renderer) Build(ctx context.Context, req Request) (*Page, error) {
	b := &builder{r: r, req: req, page: &Page{tmpl: r.tmpl}}

	settings := b.single(ctx, content.ResourceSiteSettings)
	about := b.single(ctx, content.ResourceAbout)
	contact := b.single(ctx, content.ResourceContactInfo)
	social := b.single(ctx, content.ResourceSocialLinks)

	data := pageData{
		Title:    stringOr(settings["siteName"], "Café"),
		Editing:  req.Gate != nil && req.Gate.CanEdit(),
		Logo:     b.region(enums.ContentTypeLogo, settings, nil),
		Nav:      b.region(enums.ContentTypeNavLink, b.single(ctx, content.ResourceNavigation), nil),
		Hero:     b.region(enums.ContentTypeHero, b.single(ctx, content.ResourceHero), nil),
		About:    b.region(enums.ContentTypeAbout, withMarkdown(about), about),
		Story:    b.region(enums.ContentTypeAboutStory, about, nil),
		Menu:     b.collection(ctx, content.ResourceMenu, enums.ContentTypeMenuItem),
		Offers:   b.collection(ctx, content.ResourceTodaysOffers, enums.ContentTypeTodaysOffer),
		Features: b.collection(ctx, content.ResourceFeatures, enums.ContentTypeFeature),
		Team:     b.collection(ctx, content.ResourceTeam, enums.ContentTypeTeamMember),
		Gallery:  b.collection(ctx, content.ResourceGallery, enums.ContentTypeGalleryItem),
		Reviews:  b.collection(ctx, content.ResourceReviews, enums.ContentTypeReview),
		Contact:  b.region(enums.ContentTypeContactInfo, contact, nil),
		Hours:    b.region(enums.ContentTypeOpeningHours, hoursView(contact), openingHours(contact)),
		Social:   b.region(enums.ContentTypeSocialLinks, socialView(social), social),
		Footer:   b.region(enums.ContentTypeFooterAbout, about, nil),
	}
	if data.Editing {
		data.Banner = b.region(enums.ContentTypeEditBanner, EditBanner, nil)
	}
	if b.err != nil {
		return nil, b.err
	}
	b.page.data = data
	return b.page, nil
}

// Render builds the page and writes it to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, req Request) error {
	page, err := r.Build(ctx, req)
	if err != nil {
		return err
	}
	return page.Write(w)
}

// Write executes the page template.
func (p *Page) Write(w io.Writer) error {
	return p.tmpl.ExecuteTemplate(w, "page.html", p.data)
}

// Regions returns the regions built for content type t, in page order.
func (p *Page) Regions(t enums.ContentType) []*region.Region {
	var out []*region.Region
	for i, rt := range p.types {
		if rt == t {
			out = append(out, p.regions[i])
		}
	}
	return out
}

type builder struct {
	r    *Renderer
	req  Request
	page *Page
	err  error
}

func (b *builder) single(ctx context.Context, resource string) content.Record {
	if b.err != nil {
		return content.Record{}
	}
	rec, err := b.r.content.Get(ctx, resource)
	if err != nil {
		b.err = err
		return content.Record{}
	}
	return rec
}

func (b *builder) collection(ctx context.Context, resource string, t enums.ContentType) []template.HTML {
	if b.err != nil {
		return nil
	}
	recs, err := b.r.content.List(ctx, resource, b.req.Viewer, false)
	if err != nil {
		b.err = err
		return nil
	}
	out := make([]template.HTML, 0, len(recs))
	for _, rec := range recs {
		out = append(out, b.region(t, rec, nil))
	}
	return out
}

// region renders view through the fragment template for t. edit is the record
// handed to the editor; it defaults to view.
func (b *builder) region(t enums.ContentType, view, edit content.Record) template.HTML {
	if b.err != nil {
		return ""
	}
	if edit == nil {
		edit = view
	}
	fragment := region.FragmentFunc(func(w io.Writer) error {
		return b.r.tmpl.ExecuteTemplate(w, string(t), map[string]any(view))
	})
	onEdit := func() {
		if b.req.Dispatch != nil {
			b.req.Dispatch(t, editor.Record(edit).Clone())
		}
	}
	opts := []region.Option{
		region.WithLabel("Edit " + editor.Label(strings.ReplaceAll(string(t), "-", " "))),
		region.WithAttr("content-type", string(t)),
	}
	if id := editor.Record(edit).ID(); id != "" {
		opts = append(opts, region.WithAttr("record-id", id))
	}
	reg := region.New(b.req.Gate, fragment, onEdit, opts...)
	b.page.regions = append(b.page.regions, reg)
	b.page.types = append(b.page.types, t)

	var buf bytes.Buffer
	if err := reg.Render(&buf); err != nil {
		b.err = fmt.Errorf("render %s: %w", t, err)
		return ""
	}
	return template.HTML(buf.String()) //nolint:gosec // produced by html/template
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
