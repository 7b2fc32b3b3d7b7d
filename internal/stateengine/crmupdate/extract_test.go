package crmupdate

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Décembre", "decembre"},
		{"PRÉFÉRENCE", "preference"},
		{"déjà fait", "deja fait"},
		{"plain ascii", "plain ascii"},
	}
	for _, tc := range tests {
		if got := Fold(tc.in); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCountSessionWords(t *testing.T) {
	tests := []struct {
		message      string
		day, evening int
	}{
		{"je prends le cours du soir", 0, 1},
		{"plutôt en journée svp", 1, 0},
		{"le matin ou l'après-midi", 2, 0},
		{"le jour et le soir me vont", 1, 1},
		{"merci pour votre retour", 0, 0},
		// "journee" must not also count as "jour".
		{"la journée", 1, 0},
		// "soirée" must count on the evening side only.
		{"en soirée", 0, 1},
	}
	for _, tc := range tests {
		day, evening := countSessionWords(tc.message)
		if day != tc.day || evening != tc.evening {
			t.Errorf("countSessionWords(%q) = (%d, %d), want (%d, %d)",
				tc.message, day, evening, tc.day, tc.evening)
		}
	}
}

func TestExtractDates(t *testing.T) {
	tests := []struct {
		message string
		want    []string
	}{
		{"je choisis le 12/05/2025", []string{"2025-05-12"}},
		{"ok pour 2025-05-12", []string{"2025-05-12"}},
		{"je préfère le 12 mai 2025", []string{"2025-05-12"}},
		{"le 1er décembre 2025 si possible", []string{"2025-12-01"}},
		{"le 12/05/2025 ou bien 2025-05-12", []string{"2025-05-12"}},
		{"soit le 12/05/2025 soit le 19/05/2025", []string{"2025-05-12", "2025-05-19"}},
		{"aucune date ici", nil},
		// Impossible dates are dropped.
		{"le 31/02/2025", nil},
	}
	for _, tc := range tests {
		got := ExtractDates(tc.message)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractDates(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}
