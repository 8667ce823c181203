package services

import "testing"

const docPrefix = "projects/demo/databases/(default)/documents/"

func TestParseCasaPath(t *testing.T) {
	p, err := parseCasaPath(docPrefix + "congregations/c1/territories/t1/quadras/q1/casas/h1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := CasaPath{Congregation: "c1", Territory: "t1", Quadra: "q1", Casa: "h1"}
	if p != want {
		t.Fatalf("expected %+v, got %+v", want, p)
	}
	if p.QuadraPath() != (QuadraPath{Congregation: "c1", Territory: "t1", Quadra: "q1"}) {
		t.Fatalf("unexpected quadra path: %+v", p.QuadraPath())
	}
	if p.TerritoryPath() != (TerritoryPath{Congregation: "c1", Territory: "t1"}) {
		t.Fatalf("unexpected territory path: %+v", p.TerritoryPath())
	}
}

func TestParseQuadraPath(t *testing.T) {
	p, err := parseQuadraPath(docPrefix + "congregations/c1/territories/t1/quadras/q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := QuadraPath{Congregation: "c1", Territory: "t1", Quadra: "q1"}
	if p != want {
		t.Fatalf("expected %+v, got %+v", want, p)
	}
}

func TestParseTerritoryPath(t *testing.T) {
	p, err := parseTerritoryPath(docPrefix + "congregations/c1/territories/t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := TerritoryPath{Congregation: "c1", Territory: "t1"}
	if p != want {
		t.Fatalf("expected %+v, got %+v", want, p)
	}
}

func TestParsePath_RejectsForeignShapes(t *testing.T) {
	cases := []string{
		"congregations/c1/territories/t1",                        // no resource prefix
		docPrefix + "congregations/c1",                           // wrong depth
		docPrefix + "users/u1/territories/t1",                    // wrong root collection
		docPrefix + "congregations/c1/quadras/q1/territories/t1", // shuffled hierarchy
	}
	for _, name := range cases {
		if _, err := parseTerritoryPath(name); err == nil {
			t.Fatalf("expected parseTerritoryPath to reject %q", name)
		}
	}

	if _, err := parseCasaPath(docPrefix + "congregations/c1/territories/t1/quadras/q1"); err == nil {
		t.Fatal("expected parseCasaPath to reject a quadra path")
	}
	if _, err := parseQuadraPath(docPrefix + "congregations/c1/territories/t1/quadras/q1/casas/h1"); err == nil {
		t.Fatal("expected parseQuadraPath to reject a casa path")
	}
}

func TestUIDFromSubject(t *testing.T) {
	uid, err := UIDFromSubject("refs/status/user-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid != "user-42" {
		t.Fatalf("expected uid user-42, got %q", uid)
	}

	for _, subject := range []string{"", "refs/status", "refs/status/", "refs/presence/u1", "documents/status/u1"} {
		if _, err := UIDFromSubject(subject); err == nil {
			t.Fatalf("expected UIDFromSubject to reject %q", subject)
		}
	}
}
