package gen

import "testing"

func TestCIdent(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"plain field":       {input: "gain", want: "GAIN"},
		"dotted path":       {input: "radio.gain", want: "RADIO_GAIN"},
		"itemized index":    {input: "channels[CH0].power", want: "CHANNELS_CH0_POWER"},
		"already uppercase": {input: "FOO_BAR", want: "FOO_BAR"},
		"numeric index":     {input: "history[0]", want: "HISTORY_0_"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := cIdent(tc.input)
			if got != tc.want {
				t.Errorf("cIdent(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
