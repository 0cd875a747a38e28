package catalog

import (
	"testing"
	"testing/fstest"
)

func TestDefaultBundle(t *testing.T) {
	bundle := Default()
	for _, locale := range []string{BaseLocale, "pt-BR"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("missing locale %s", locale)
		}
	}
	if got, ok := bundle.Message("pt-BR", "battle.side.attacker"); !ok || got != "Atacante" {
		t.Fatalf("pt-BR attacker = %q, %v", got, ok)
	}
	if got, ok := bundle.Message("fr-FR", "battle.side.attacker"); !ok || got != "Attacker" {
		t.Fatalf("fallback attacker = %q, %v", got, ok)
	}
	if _, ok := bundle.Message(BaseLocale, "missing.key"); ok {
		t.Fatal("expected missing key")
	}
}

func TestLocalesDefineSameKeys(t *testing.T) {
	bundle := Default()
	base := bundle.locales[BaseLocale].messages
	for _, locale := range bundle.Locales() {
		messages := bundle.locales[locale].messages
		if len(messages) != len(base) {
			t.Fatalf("%s has %d messages, %s has %d", locale, len(messages), BaseLocale, len(base))
		}
		for key := range base {
			if _, ok := messages[key]; !ok {
				t.Fatalf("%s misses %s", locale, key)
			}
		}
	}
}

func TestPrinter(t *testing.T) {
	bundle := Default()
	if got := bundle.Printer("pt-BR").Sprintf("battle.phase.attacker_move"); got != "Movimento do atacante" {
		t.Fatalf("pt-BR phase = %q", got)
	}
	if got := bundle.Printer("de-DE").Sprintf("battle.summary.round", 2, 7, "x"); got != "Round 2 of 7, x" {
		t.Fatalf("fallback round = %q", got)
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	resolved, messages := Default().NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != BaseLocale {
		t.Fatalf("resolved locale = %q, want %s", resolved, BaseLocale)
	}
	if messages["BATTLE_NOT_FOUND"] == "" {
		t.Fatal("expected fallback errors namespace")
	}
	messages["BATTLE_NOT_FOUND"] = "changed"
	if _, again := Default().NamespaceMessagesWithFallback(BaseLocale, "errors"); again["BATTLE_NOT_FOUND"] == "changed" {
		t.Fatal("namespace messages must be copied")
	}
}

func TestLoadFromFSRejectsInvalidCatalogs(t *testing.T) {
	base := "locale: en-US\nnamespace: core\nmessages:\n  a.key: \"a\"\n"
	tests := []struct {
		name  string
		files fstest.MapFS
	}{
		{"empty", fstest.MapFS{}},
		{"locale mismatch", fstest.MapFS{
			"locales/en-US/core.yaml": {Data: []byte("locale: pt-BR\nnamespace: core\nmessages:\n  a: \"a\"\n")},
		}},
		{"namespace mismatch", fstest.MapFS{
			"locales/en-US/web.yaml": {Data: []byte(base)},
		}},
		{"no messages", fstest.MapFS{
			"locales/en-US/core.yaml": {Data: []byte("locale: en-US\nnamespace: core\n")},
		}},
		{"unknown field", fstest.MapFS{
			"locales/en-US/core.yaml": {Data: []byte(base + "extra: true\n")},
		}},
		{"duplicate key across namespaces", fstest.MapFS{
			"locales/en-US/core.yaml": {Data: []byte(base)},
			"locales/en-US/web.yaml":  {Data: []byte("locale: en-US\nnamespace: web\nmessages:\n  a.key: \"b\"\n")},
		}},
		{"missing base locale", fstest.MapFS{
			"locales/pt-BR/core.yaml": {Data: []byte("locale: pt-BR\nnamespace: core\nmessages:\n  a: \"a\"\n")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromFS(tt.files); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
