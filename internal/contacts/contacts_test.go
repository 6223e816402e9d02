package contacts

import "testing"

func TestClassifyPartner(t *testing.T) {
	cl := NewClassifier()
	for _, name := range []string{"Bae", "❤️ Alex", "My Love", "Babe", "Honey 😘"} {
		if got := cl.Classify(Contact{Name: name}); got != Partner {
			t.Errorf("%q: expected Partner, got %v", name, got)
		}
	}
}

func TestClassifyCloseFamily(t *testing.T) {
	cl := NewClassifier()
	for _, name := range []string{"Mom", "ICE Dad", "Grandma", "Uncle Joe", "Mother"} {
		if got := cl.Classify(Contact{Name: name}); got != CloseFamily {
			t.Errorf("%q: expected CloseFamily, got %v", name, got)
		}
	}
}

func TestClassifyProfessional(t *testing.T) {
	cl := NewClassifier()
	for _, c := range []Contact{
		{Name: "Sarah", Organization: "Acme Inc"},
		{Name: "Dr. Smith"},
		{Name: "Prof Chen"},
	} {
		if got := cl.Classify(c); got != Professional {
			t.Errorf("%+v: expected Professional, got %v", c, got)
		}
	}
}

func TestOrganizationOutranksEverything(t *testing.T) {
	cl := NewClassifier()
	// Even a family-looking name with an organization is professional.
	c := Contact{Name: "Mom", Organization: "Smith Consulting"}
	if got := cl.Classify(c); got != Professional {
		t.Errorf("expected organization to win, got %v", got)
	}
}

func TestClassifyCasualPeer(t *testing.T) {
	cl := NewClassifier()
	for _, name := range []string{"dave from gym", "Mike 🍺", "alex lol", "jenny"} {
		if got := cl.Classify(Contact{Name: name}); got != CasualPeer {
			t.Errorf("%q: expected CasualPeer, got %v", name, got)
		}
	}
}

func TestClassifyFormalNeutral(t *testing.T) {
	cl := NewClassifier()
	for _, name := range []string{"Sarah Johnson", "Robert Miller", "客户 Wang"} {
		if got := cl.Classify(Contact{Name: name}); got != FormalNeutral {
			t.Errorf("%q: expected FormalNeutral, got %v", name, got)
		}
	}
}

func TestNoFalseFamilyMatch(t *testing.T) {
	cl := NewClassifier()
	// "Madonna" contains "mom"-adjacent substrings but is no family match.
	if got := cl.Classify(Contact{Name: "Madonna Ciccone"}); got != FormalNeutral {
		t.Errorf("expected FormalNeutral for Madonna, got %v", got)
	}
}

func TestWritingModes(t *testing.T) {
	cases := map[Category]string{
		Partner:       "intimate",
		CloseFamily:   "warm",
		Professional:  "professional",
		CasualPeer:    "casual",
		FormalNeutral: "neutral",
	}
	for cat, want := range cases {
		if got := cat.WritingMode(); got != want {
			t.Errorf("%v: expected mode %q, got %q", cat, want, got)
		}
	}
}
