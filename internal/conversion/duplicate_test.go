package conversion

import "testing"

func TestFindDuplicateMatchesMobileOrEmail(t *testing.T) {
	contacts := []Contact{
		{ID: "c1", Mobile: "+919876543210", Email: "first@example.com"},
		{ID: "c2", Mobile: "+919000000002", Email: "second@example.com"},
	}

	tests := []struct {
		name   string
		mobile string
		email  string
		wantID string
	}{
		{"mobile match", "+919000000002", "", "c2"},
		{"email match", "", "first@example.com", "c1"},
		{"email match is case-insensitive", "", "SECOND@Example.COM", "c2"},
		{"mobile takes the first matching contact", "+919876543210", "second@example.com", "c1"},
		{"no match", "+919111111111", "nobody@example.com", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FindDuplicate(contacts, tc.mobile, tc.email)
			if tc.wantID == "" {
				if got != nil {
					t.Fatalf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || got.ID != tc.wantID {
				t.Fatalf("got %+v, want contact %s", got, tc.wantID)
			}
		})
	}
}

func TestFindDuplicateFirstMatchWinsInOrder(t *testing.T) {
	// Both contacts collide with the probe, one by email and one by mobile.
	// Resolution is first-match in collection order, not field priority.
	contacts := []Contact{
		{ID: "byEmail", Mobile: "+919000000009", Email: "shared@example.com"},
		{ID: "byMobile", Mobile: "+919876543210", Email: "other@example.com"},
	}

	got := FindDuplicate(contacts, "+919876543210", "shared@example.com")
	if got == nil || got.ID != "byEmail" {
		t.Fatalf("got %+v, want the earlier contact", got)
	}
}

func TestFindDuplicateIgnoresEmptyFields(t *testing.T) {
	contacts := []Contact{
		{ID: "c1", Mobile: "", Email: ""},
	}

	if got := FindDuplicate(contacts, "", ""); got != nil {
		t.Fatalf("empty probe matched %+v", got)
	}
	if got := FindDuplicate(contacts, "+919876543210", ""); got != nil {
		t.Fatalf("empty contact mobile matched %+v", got)
	}
}
