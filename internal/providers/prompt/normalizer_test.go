package prompt

import "testing"

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := Normalize("  a   stylish\twalk \n in the rain ")
	want := "a stylish walk in the rain"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeExpandsStylePreset(t *testing.T) {
	got := Normalize("style: noir")
	want := "Noir style, black and white film look, hard shadows, heavy grain"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeUnknownStylePassesThrough(t *testing.T) {
	got := Normalize("style: vaporwave")
	if got != "style: vaporwave" {
		t.Fatalf("Normalize() = %q, want passthrough", got)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize("   "); got != "" {
		t.Fatalf("Normalize() = %q, want empty", got)
	}
}
