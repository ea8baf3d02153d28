package i18n

import "testing"

func TestLoadBundles(t *testing.T) {
	for _, name := range []string{"pt-BR", "en-US"} {
		s, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", name, err)
		}
		for i, day := range s.DayNames {
			if day == "" {
				t.Errorf("%s: day %d has no name", name, i)
			}
		}
		if s.DateLayout == "" || s.FutureTasks == "" || s.TutorialTask == "" {
			t.Errorf("%s: incomplete bundle %+v", name, s)
		}
	}
}

func TestLoadUnknownBundle(t *testing.T) {
	if _, err := Load("xx-XX"); err == nil {
		t.Error("expected error for unknown bundle")
	}
}
