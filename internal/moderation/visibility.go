package moderation

import "github.com/event-gallery-api/internal/models"

// EventPublic reports whether anonymous visitors may see e
func EventPublic(e *models.Event) bool {
	return e != nil && e.Status == models.EventStatusPublished
}

// MediaPublic reports whether m appears in its event's public gallery.
// Videos are kept for the admin but never shown publicly.
func MediaPublic(m *models.Media, owner *models.Event) bool {
	return m != nil && m.Visible && m.Type == models.MediaTypeImage && EventPublic(owner)
}

// BlessingPublic reports whether b appears in the public guestbook
func BlessingPublic(b *models.Blessing) bool {
	return b != nil && b.Status == models.BlessingStatusApproved
}

// FilterMedia keeps the items that are publicly visible under owner
func FilterMedia(items []*models.Media, owner *models.Event) []*models.Media {
	out := make([]*models.Media, 0, len(items))
	for _, m := range items {
		if MediaPublic(m, owner) {
			out = append(out, m)
		}
	}
	return out
}

// FilterBlessings keeps approved blessings that match the search term
func FilterBlessings(blessings []*models.Blessing, term string) []*models.Blessing {
	out := make([]*models.Blessing, 0, len(blessings))
	for _, b := range blessings {
		if BlessingPublic(b) && b.MatchesSearch(term) {
			out = append(out, b)
		}
	}
	return out
}
