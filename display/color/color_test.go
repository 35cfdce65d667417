package color

import (
	"os"
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/pulse-view/display/gauge"
)

func TestShouldDisableColor_NOCOLORSet(t *testing.T) {
	for _, val := range []string{"", "1", "true", "anything"} {
		t.Setenv("NO_COLOR", val)
		if !ShouldDisableColor() {
			t.Errorf("ShouldDisableColor() = false with NO_COLOR=%q, want true", val)
		}
	}
}

func TestEnabled_Modes(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !Enabled(ModeAlways) {
		t.Error("expected always to win over NO_COLOR")
	}
	if Enabled(ModeNever) {
		t.Error("expected never to disable color")
	}
	if Enabled(ModeAuto) {
		t.Error("expected auto to honor NO_COLOR")
	}
	if Enabled("bogus") {
		t.Error("expected unknown modes to behave like auto")
	}
}

func TestApply_NOCOLORSet(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Cleanup(ForceDisable)
	if Apply(ModeAuto) {
		t.Error("Apply(auto) should return false when NO_COLOR is set")
	}
	if !Apply(ModeAlways) {
		t.Error("Apply(always) should return true")
	}
}

func TestApply_NeverIgnoresTerminal(t *testing.T) {
	os.Unsetenv("NO_COLOR")
	t.Cleanup(ForceDisable)
	if Apply(ModeNever) {
		t.Error("Apply(never) should return false")
	}
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "strips color codes",
			input: "\x1b[31mred text\x1b[0m",
			want:  "red text",
		},
		{
			name:  "strips bold",
			input: "\x1b[1mbold\x1b[0m normal",
			want:  "bold normal",
		},
		{
			name:  "strips multiple sequences",
			input: "\x1b[1;31;40mstyle\x1b[0m gap \x1b[32mgreen\x1b[0m",
			want:  "style gap green",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "cursor control stripped",
			input: "\x1b[?25h",
			want:  "",
		},
		{
			name:  "preserves unicode",
			input: "CPU \x1b[32m45%\x1b[0m | RAM 62%",
			want:  "CPU 45% | RAM 62%",
		},
		{
			name:  "preserves sparkline blocks",
			input: "\x1b[36m▁▂▃▄▅▆▇█\x1b[0m",
			want:  "▁▂▃▄▅▆▇█",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripANSI(tt.input)
			if got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripANSI_NoEscapesInOutput(t *testing.T) {
	inputs := []string{
		"\x1b[31mred\x1b[0m",
		"\x1b[1;31;42mcomplex\x1b[0m",
		"plain",
		"\x1b[?25h\x1b[?25l",
	}
	for _, input := range inputs {
		if result := StripANSI(input); strings.Contains(result, "\x1b") {
			t.Errorf("StripANSI(%q) still contains ESC: %q", input, result)
		}
	}
}

func TestPalette_ForLevel(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		level gauge.Level
		want  string
	}{
		{gauge.LevelOK, "#51cf66"},
		{gauge.LevelWarn, "#ffd43b"},
		{gauge.LevelCritical, "#ff6b6b"},
	}
	for _, tt := range tests {
		if got := string(p.ForLevel(tt.level)); got != tt.want {
			t.Errorf("ForLevel(%s) = %s, want %s", tt.level, got, tt.want)
		}
	}
}
