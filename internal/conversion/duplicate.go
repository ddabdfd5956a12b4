package conversion

import "strings"

// FindDuplicate returns the first existing contact whose mobile or email
// matches the lead's, scanning contacts in their given order. Matching is
// disjunctive: either field alone is enough. Empty fields never match, so a
// lead with no email cannot collide with a contact that also has none.
func FindDuplicate(contacts []Contact, mobile, email string) *Contact {
	mobile = strings.TrimSpace(mobile)
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range contacts {
		c := &contacts[i]
		if mobile != "" && strings.TrimSpace(c.Mobile) == mobile {
			return c
		}
		if email != "" && strings.ToLower(strings.TrimSpace(c.Email)) == email {
			return c
		}
	}
	return nil
}
