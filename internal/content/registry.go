package content

import (
	"sort"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

// Viewer is who a read is performed for.
type Viewer struct {
	Role enums.Role
}

// Staff reports whether the viewer may see unpublished records.
func (v Viewer) Staff() bool {
	return v.Role.CanEditContent()
}

// Resource describes one addressable content resource.
type Resource struct {
	Name string
	// Collection resources are addressed per id; the rest are singletons.
	Collection bool
	// Merge shallow-merges a PUT body over the stored document instead of replacing it.
	Merge bool
	// Visible filters list reads. A nil Visible shows every record.
	Visible func(rec Record, viewer Viewer) bool
}

func (r Resource) visible(rec Record, viewer Viewer) bool {
	if r.Visible == nil {
		return true
	}
	return r.Visible(rec, viewer)
}

// Resource names as they appear in API paths.
const (
	ResourceMenu         = "menu"
	ResourceHero         = "hero"
	ResourceFeatures     = "features"
	ResourceTeam         = "team"
	ResourceAbout        = "about"
	ResourceGallery      = "gallery"
	ResourceContactInfo  = "contact-info"
	ResourceReviews      = "reviews"
	ResourceTodaysOffers = "todays-offers"
	ResourceSiteSettings = "site-settings"
	ResourceNavigation   = "navigation"
	ResourceSocialLinks  = "social-links"
)

var registry = map[string]Resource{
	ResourceMenu:         {Collection: true},
	ResourceHero:         {},
	ResourceFeatures:     {Collection: true, Visible: activeOnly},
	ResourceTeam:         {Collection: true},
	ResourceAbout:        {},
	ResourceGallery:      {Collection: true},
	ResourceContactInfo:  {Merge: true},
	ResourceReviews:      {Collection: true, Visible: approvedUnlessStaff},
	ResourceTodaysOffers: {Collection: true},
	ResourceSiteSettings: {},
	ResourceNavigation:   {},
	ResourceSocialLinks:  {},
}

func init() {
	for name, res := range registry {
		res.Name = name
		registry[name] = res
	}
}

// LookupResource returns the registered resource with the given name.
func LookupResource(name string) (Resource, bool) {
	res, ok := registry[name]
	return res, ok
}

// Resources returns every registered resource sorted by name.
func Resources() []Resource {
	out := make([]Resource, 0, len(registry))
	for _, res := range registry {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// activeOnly hides records whose isActive flag is explicitly false.
func activeOnly(rec Record, _ Viewer) bool {
	active, ok := rec["isActive"].(bool)
	return !ok || active
}

func approvedUnlessStaff(rec Record, viewer Viewer) bool {
	if viewer.Staff() {
		return true
	}
	approved, _ := rec["isApproved"].(bool)
	return approved
}
