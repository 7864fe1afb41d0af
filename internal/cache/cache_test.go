package cache

import (
	"strings"
	"testing"
)

func TestKeyIsStableAndOrderSensitive(t *testing.T) {
	a := Key("openai", "gpt-4o-mini", []string{"good", "bad"})
	b := Key("openai", "gpt-4o-mini", []string{"good", "bad"})
	if a != b {
		t.Fatal("same input must produce the same key")
	}
	if !strings.HasPrefix(a, "sentiboard:batch:") {
		t.Fatalf("unexpected key prefix: %s", a)
	}
	if a == Key("openai", "gpt-4o-mini", []string{"bad", "good"}) {
		t.Fatal("line order must change the key")
	}
	if a == Key("anthropic", "gpt-4o-mini", []string{"good", "bad"}) {
		t.Fatal("provider must change the key")
	}
	if Key("p", "m", []string{"ab", "c"}) == Key("p", "m", []string{"a", "bc"}) {
		t.Fatal("line boundaries must change the key")
	}
}
