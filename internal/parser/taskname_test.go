package parser

import "testing"

func TestNormalizeTaskName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Tile Frenzy - Challenge - 2024.01.05-10.30.00 Stats", "Tile Frenzy"},
		{"1wall6targets TE - Challenge - 2024.03.01-08.15.30.123 Stats", "1wall6targets TE"},
		{"Ascended Tracking v3 2024.01.05-10.30.00 Stats", "Ascended Tracking v3"},
		{"Close Strafes Stats", "Close Strafes"},
		{"Plain Name", "Plain Name"},
		{"Double   Spaced   Name", "Double Spaced Name"},
		{"", ""},
	}

	for _, c := range cases {
		if got := NormalizeTaskName(c.in); got != c.want {
			t.Errorf("NormalizeTaskName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestScenarioFromFileName(t *testing.T) {
	got := ScenarioFromFileName("/stats/Tile Frenzy - Challenge - 2024.01.05-10.30.00 Stats.csv")
	if got != "Tile Frenzy" {
		t.Errorf("ScenarioFromFileName = %q, want Tile Frenzy", got)
	}
}
