package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	fallback := GetCatalog("missing-locale")
	if fallback != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if GetCatalog("") != base {
		t.Fatal("expected empty locale to resolve to en-US")
	}
}

func TestGetCatalogMatchesRegionVariant(t *testing.T) {
	custom := NewCatalog("pt-BR", map[Code]string{"code": "ok"})
	RegisterCatalog("pt-BR", custom)
	if got := GetCatalog("pt"); got != custom {
		t.Fatalf("expected pt to match pt-BR, got %q", got.Locale())
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if cat.Format("code", nil) != "hello <no value>" {
		t.Fatal("expected template to render missing metadata")
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestFormatDieSizeMessage(t *testing.T) {
	got := GetCatalog("en-US").Format(CodeDieSizeInvalid, map[string]string{
		"Value": "d20",
		"Valid": "d4, d6, d8, d10, d12",
	})
	want := "Invalid die size: d20. Valid sizes are d4, d6, d8, d10, d12."
	if got != want {
		t.Fatalf("format = %q, want %q", got, want)
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[Code]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
}
