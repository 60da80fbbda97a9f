package enums

import "fmt"

// ContentType names the kind of rendered element an editor modal is opened for.
type ContentType string

const (
	ContentTypeMenuItem     ContentType = "menu-item"
	ContentTypeHero         ContentType = "hero"
	ContentTypeFeature      ContentType = "feature"
	ContentTypeTeamMember   ContentType = "team-member"
	ContentTypeGalleryItem  ContentType = "gallery-item"
	ContentTypeAbout        ContentType = "about"
	ContentTypeAboutStory   ContentType = "about-story"
	ContentTypeTodaysOffer  ContentType = "todays-offer"
	ContentTypeLogo         ContentType = "logo"
	ContentTypeNavLink      ContentType = "nav-link"
	ContentTypeContactInfo  ContentType = "contact-info"
	ContentTypeOpeningHours ContentType = "opening-hours"
	ContentTypeFooterAbout  ContentType = "footer-about"
	ContentTypeSocialLinks  ContentType = "social-links"
	ContentTypeReview       ContentType = "review"
	ContentTypeEditBanner   ContentType = "edit-banner"
)

var validContentTypes = []ContentType{
	ContentTypeMenuItem,
	ContentTypeHero,
	ContentTypeFeature,
	ContentTypeTeamMember,
	ContentTypeGalleryItem,
	ContentTypeAbout,
	ContentTypeAboutStory,
	ContentTypeTodaysOffer,
	ContentTypeLogo,
	ContentTypeNavLink,
	ContentTypeContactInfo,
	ContentTypeOpeningHours,
	ContentTypeFooterAbout,
	ContentTypeSocialLinks,
	ContentTypeReview,
	ContentTypeEditBanner,
}

// ContentTypes returns every known ContentType in declaration order.
func ContentTypes() []ContentType {
	return append([]ContentType(nil), validContentTypes...)
}

// String implements fmt.Stringer.
func (c ContentType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContentType.
func (c ContentType) IsValid() bool {
	for _, candidate := range validContentTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContentType converts raw input into a ContentType.
func ParseContentType(value string) (ContentType, error) {
	for _, candidate := range validContentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid content type %q", value)
}
