package udmf

import "testing"

func TestParseGlobalsAndBlocks(t *testing.T) {
	src := `
// a comment
namespace = "ZDoom";
/* block
   comment */
vertex
{
	x = 64.0;
	y = -128.5;
}
linedef
{
	v1 = 0;
	v2 = 1;
	sidefront = 0;
	special = 1;
	id = 7;
	blocking = true;
}
`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ns, ok := doc.Global["namespace"]
	if !ok || !ns.IsString || ns.Raw != "ZDoom" {
		t.Fatalf("expected namespace=ZDoom string, got %+v ok=%v", ns, ok)
	}

	if len(doc.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Blocks))
	}

	v := doc.Blocks[0]
	if v.Type != "vertex" {
		t.Errorf("expected vertex block, got %s", v.Type)
	}
	if got := v.Fields["x"].Float(); got != 64.0 {
		t.Errorf("expected x=64.0, got %v", got)
	}
	if got := v.Fields["y"].Float(); got != -128.5 {
		t.Errorf("expected y=-128.5, got %v", got)
	}

	ld := doc.Blocks[1]
	if ld.Type != "linedef" {
		t.Errorf("expected linedef block, got %s", ld.Type)
	}
	if got := ld.Fields["v1"].Int(); got != 0 {
		t.Errorf("expected v1=0, got %d", got)
	}
	if got := ld.Fields["id"].Int(); got != 7 {
		t.Errorf("expected id=7, got %d", got)
	}
	if !ld.Fields["blocking"].Bool() {
		t.Errorf("expected blocking=true")
	}
}

func TestParseRejectsUnterminatedString(t *testing.T) {
	_, err := Parse([]byte(`namespace = "ZDoom;`))
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	_, err := Parse([]byte(`namespace = "ZDoom"`))
	if err == nil {
		t.Fatal("expected error for missing semicolon")
	}
}

func TestFieldsDefaults(t *testing.T) {
	f := Fields{"a": Value{Raw: "5"}}
	if got := f.Int("a", 1); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := f.Int("missing", 1); got != 1 {
		t.Errorf("expected default 1, got %d", got)
	}
}
