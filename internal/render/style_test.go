package render

import "testing"

func TestColorIsSet(t *testing.T) {
	var zero Color
	if zero.IsSet() {
		t.Errorf("zero-value Color should not be set")
	}
	if !NewNamedColor("green").IsSet() {
		t.Errorf("NewNamedColor result should be set")
	}
	if !NewColor256(42).IsSet() {
		t.Errorf("NewColor256 result should be set")
	}
}

func TestNamedAttributeKnownColors(t *testing.T) {
	cases := []struct {
		name string
		fg   bool
	}{
		{"red", true},
		{"red", false},
		{"green", true},
		{"blue", false},
	}
	for _, c := range cases {
		// every known name must resolve without falling back to the
		// unknown-name default (white fg / black bg).
		got := namedAttribute(c.name, c.fg)
		fallback := namedAttribute("not-a-color", c.fg)
		if got == fallback && c.name != "white" {
			t.Errorf("namedAttribute(%q, %v) unexpectedly matched the unknown-color fallback", c.name, c.fg)
		}
	}
}

func TestNamedAttributeUnknownNameFallsBack(t *testing.T) {
	if got := namedAttribute("chartreuse", true); got != namedAttribute("white", true) {
		t.Errorf("expected unknown fg color to fall back to white, got %v", got)
	}
	if got := namedAttribute("chartreuse", false); got != namedAttribute("black", false) {
		t.Errorf("expected unknown bg color to fall back to black, got %v", got)
	}
}

func TestNamedAttributeFor256WrapsAround(t *testing.T) {
	// 8 basic names cycle every 8 indices.
	if namedAttributeFor256(0, true) != namedAttributeFor256(8, true) {
		t.Errorf("expected color256 indices 8 apart to bucket to the same attribute")
	}
	if namedAttributeFor256(1, true) == namedAttributeFor256(0, true) {
		t.Errorf("expected adjacent color256 indices to bucket to distinct attributes")
	}
}

func TestColorAttributesUnsetIsNil(t *testing.T) {
	var c Color
	if attrs := c.attributes(true); attrs != nil {
		t.Errorf("expected unset Color to produce no attributes, got %v", attrs)
	}
}

func TestColorAttributesNamedAndColor256(t *testing.T) {
	named := NewNamedColor("green")
	if attrs := named.attributes(true); len(attrs) != 1 {
		t.Errorf("expected exactly one attribute for a named color, got %v", attrs)
	}

	indexed := NewColor256(3)
	if attrs := indexed.attributes(false); len(attrs) != 1 {
		t.Errorf("expected exactly one attribute for a color256 color, got %v", attrs)
	}
}

func TestDefaultStyleTableMatchesEmbeddedDefaults(t *testing.T) {
	table := DefaultStyleTable()
	if table.Addition.Prefix != "+" || table.Deletion.Prefix != "-" {
		t.Errorf("unexpected prefixes: +%q -%q", table.Addition.Prefix, table.Deletion.Prefix)
	}
	if !table.Addition.Bold || !table.Deletion.Bold {
		t.Errorf("expected default style table to be bold, matching config.Default()")
	}
}
