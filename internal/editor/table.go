package editor

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

// FieldKind selects the input control for a field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindURL      FieldKind = "url"
	KindDate     FieldKind = "date"
	KindCheckbox FieldKind = "checkbox"
	KindSelect   FieldKind = "select"
	KindTextarea FieldKind = "textarea"
)

// Field describes one editable input.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// Target is where a submit goes. Local targets never reach the network.
type Target struct {
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
	PerID  bool   `json:"perId,omitempty"`
	// Wrap nests the submitted values under this key.
	Wrap  string `json:"wrap,omitempty"`
	Local bool   `json:"local,omitempty"`
}

// Spec is the dispatch entry for one content type.
type Spec struct {
	Type   enums.ContentType `json:"type"`
	Fields []Field           `json:"fields"`
	Target Target            `json:"target"`
}

// Field returns the named field of the spec.
func (s Spec) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required lists the names of the required fields in display order.
func (s Spec) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Initial picks the part of a fetched target record the editor works on.
// Wrapped targets edit only the nested record, never the surrounding one.
func (s Spec) Initial(fetched map[string]any) Record {
	if s.Target.Wrap == "" {
		return Record(fetched)
	}
	if inner, ok := fetched[s.Target.Wrap].(map[string]any); ok {
		return Record(inner)
	}
	return Record{}
}

// Path expands the target path. Per-id targets need a non-empty id.
func (s Spec) Path(id string) (string, error) {
	if s.Target.Local {
		return "", nil
	}
	if !s.Target.PerID {
		return s.Target.Path, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingID
	}
	return s.Target.Path + "/" + url.PathEscape(id), nil
}

var (
	menuCategories = []string{"coffee", "tea", "pastries", "breakfast", "lunch", "desserts", "beverages"}
	ratingOptions  = []string{"1", "2", "3", "4", "5"}
	weekdays       = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
)

func field(name string, kind FieldKind) Field {
	return Field{Name: name, Label: Label(name), Kind: kind}
}

func required(name string, kind FieldKind) Field {
	f := field(name, kind)
	f.Required = true
	return f
}

func choice(name string, isRequired bool, options []string) Field {
	f := field(name, KindSelect)
	f.Required = isRequired
	f.Options = options
	return f
}

func put(path string, perID bool) Target {
	return Target{Method: http.MethodPut, Path: path, PerID: perID}
}

func openingHoursFields() []Field {
	fields := make([]Field, 0, len(weekdays))
	for _, day := range weekdays {
		fields = append(fields, field(day, KindText))
	}
	return fields
}

var table = map[enums.ContentType]Spec{
	enums.ContentTypeMenuItem: {
		Fields: []Field{
			required("name", KindText),
			required("description", KindTextarea),
			required("price", KindNumber),
			choice("category", true, menuCategories),
			field("image", KindURL),
			field("isAvailable", KindCheckbox),
			field("isVegetarian", KindCheckbox),
		},
		Target: put("/menu", true),
	},
	enums.ContentTypeHero: {
		Fields: []Field{
			required("title", KindText),
			required("subtitle", KindText),
			field("description", KindTextarea),
			field("backgroundImage", KindURL),
			field("ctaText", KindText),
			field("ctaLink", KindText),
		},
		Target: put("/hero", false),
	},
	enums.ContentTypeFeature: {
		Fields: []Field{
			required("title", KindText),
			required("description", KindTextarea),
			field("icon", KindText),
			field("isActive", KindCheckbox),
		},
		Target: put("/features", true),
	},
	enums.ContentTypeTeamMember: {
		Fields: []Field{
			required("name", KindText),
			required("role", KindText),
			field("bio", KindTextarea),
			field("image", KindURL),
		},
		Target: put("/team", true),
	},
	enums.ContentTypeGalleryItem: {
		Fields: []Field{
			field("title", KindText),
			field("description", KindTextarea),
			field("image", KindURL),
			field("category", KindText),
		},
		Target: put("/gallery", true),
	},
	enums.ContentTypeAbout: {
		Fields: []Field{
			required("title", KindText),
			required("content", KindTextarea),
			field("image", KindURL),
		},
		Target: put("/about", false),
	},
	enums.ContentTypeAboutStory: {
		Fields: []Field{
			required("heading", KindText),
			required("description", KindTextarea),
			field("image", KindURL),
		},
		Target: put("/about", false),
	},
	enums.ContentTypeFooterAbout: {
		Fields: []Field{
			required("title", KindText),
			required("description", KindTextarea),
		},
		Target: put("/about", false),
	},
	enums.ContentTypeTodaysOffer: {
		Fields: []Field{
			required("title", KindText),
			required("description", KindTextarea),
			required("discount", KindText),
			required("validUntil", KindDate),
			field("image", KindURL),
			field("isActive", KindCheckbox),
		},
		Target: put("/todays-offers", true),
	},
	enums.ContentTypeLogo: {
		Fields: []Field{
			required("siteName", KindText),
			field("logoUrl", KindURL),
			field("tagline", KindText),
		},
		Target: put("/site-settings", false),
	},
	enums.ContentTypeNavLink: {
		Fields: []Field{
			required("label", KindText),
			required("path", KindText),
			field("order", KindNumber),
		},
		Target: put("/navigation", false),
	},
	enums.ContentTypeContactInfo: {
		Fields: []Field{
			required("addressStreet", KindText),
			required("addressCity", KindText),
			required("addressState", KindText),
			required("addressZipcode", KindText),
			required("phone", KindText),
			required("email", KindText),
		},
		Target: put("/contact-info", false),
	},
	enums.ContentTypeOpeningHours: {
		Fields: openingHoursFields(),
		Target: Target{Method: http.MethodPut, Path: "/contact-info", Wrap: "openingHours"},
	},
	enums.ContentTypeSocialLinks: {
		Fields: []Field{
			field("facebook", KindURL),
			field("instagram", KindURL),
			field("twitter", KindURL),
			field("youtube", KindURL),
			field("linkedin", KindURL),
		},
		Target: put("/social-links", false),
	},
	enums.ContentTypeReview: {
		Fields: []Field{
			required("userName", KindText),
			choice("rating", true, ratingOptions),
			required("comment", KindTextarea),
			field("isApproved", KindCheckbox),
		},
		Target: put("/reviews", true),
	},
	enums.ContentTypeEditBanner: {
		Fields: []Field{
			required("text", KindText),
			required("subtitle", KindText),
		},
		Target: Target{Local: true},
	},
}

func init() {
	for t, spec := range table {
		spec.Type = t
		table[t] = spec
	}
}

// Lookup returns the dispatch entry for t.
func Lookup(t enums.ContentType) (Spec, error) {
	spec, ok := table[t]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return spec, nil
}

// Specs returns the dispatch entries in content type declaration order.
func Specs() []Spec {
	out := make([]Spec, 0, len(table))
	for _, t := range enums.ContentTypes() {
		if spec, ok := table[t]; ok {
			out = append(out, spec)
		}
	}
	return out
}
