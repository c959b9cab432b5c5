package htmlsanitize

import (
	"reflect"
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Beach cleanup", "Beach cleanup"},
		{"strips tags", "<b>Beach</b> cleanup", "Beach cleanup"},
		{"strips script", `<script>alert("x")</script>hello`, "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestText_NoScriptSurvives(t *testing.T) {
	out := Text(`<img src=x onerror="alert(1)">ok`)
	if strings.Contains(out, "onerror") || strings.Contains(out, "<img") {
		t.Errorf("sanitized output still contains markup: %q", out)
	}
}

func TestSlice(t *testing.T) {
	got := Slice([]string{"<i>Education</i>", "Healthcare"})
	want := []string{"Education", "Healthcare"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Slice = %v, want %v", got, want)
	}

	if Slice(nil) != nil {
		t.Error("Slice(nil) should be nil")
	}
}
