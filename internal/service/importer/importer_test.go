package importer

import (
	"errors"
	"strings"
	"testing"
)

func rowFrom(pairs ...string) Row {
	row := Row{Values: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		row.Keys = append(row.Keys, pairs[i])
		row.Values[pairs[i]] = pairs[i+1]
	}
	return row
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"Full Name":           "full_name",
		"  Correo  Electronico ": "correo_electronico",
		"TELEFONO":            "telefono",
		"nombre":              "nombre",
	}
	for input, want := range tests {
		if got := normalizeKey(input); got != want {
			t.Fatalf("normalizeKey(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtract_LocalizedHeaders(t *testing.T) {
	row := rowFrom(
		"Full Name", "jane doe",
		"Correo Electronico", "jane@x.com",
		"Cel", "5551234567",
	)
	c := Extract(row)
	if c.Name != "jane doe" {
		t.Fatalf("expected name extracted, got %q", c.Name)
	}
	if c.Email != "jane@x.com" {
		t.Fatalf("expected email extracted, got %q", c.Email)
	}
	if c.Phone != "5551234567" {
		t.Fatalf("expected phone extracted, got %q", c.Phone)
	}
	if c.Source != "Imported" {
		t.Fatalf("expected default source, got %q", c.Source)
	}
}

func TestExtract_NameEmailSwap(t *testing.T) {
	row := rowFrom("Name", "", "Email", "Roberto Garcia")
	c := Extract(row)
	if c.Name != "Roberto Garcia" {
		t.Fatalf("expected swapped name, got %q", c.Name)
	}
	if c.Email != "" {
		t.Fatalf("expected email cleared after swap, got %q", c.Email)
	}
}

func TestExtract_NoSwapWhenEmailValid(t *testing.T) {
	row := rowFrom("Name", "", "Email", "roberto@x.com")
	c := Extract(row)
	if c.Name != "" || c.Email != "roberto@x.com" {
		t.Fatalf("valid email must not be swapped: %+v", c)
	}
}

func TestExtract_FirstValueFallback(t *testing.T) {
	email := Extract(rowFrom("Col A", "", "Col B", "someone@x.com"))
	if email.Email != "someone@x.com" || email.Name != "" {
		t.Fatalf("expected value with @ treated as email: %+v", email)
	}

	name := Extract(rowFrom("Col A", "Juan Perez", "Col B", "whatever"))
	if name.Name != "Juan Perez" || name.Email != "" {
		t.Fatalf("expected value without @ treated as name: %+v", name)
	}
}

func TestExtract_SourceColumn(t *testing.T) {
	c := Extract(rowFrom("Nombre", "ana", "Campaña", "facebook-feb"))
	if c.Source != "facebook-feb" {
		t.Fatalf("expected campaign column mapped to source, got %q", c.Source)
	}

	blank := Extract(rowFrom("Nombre", "ana", "Origen", ""))
	if blank.Source != "Imported" {
		t.Fatalf("blank source cell must fall back to Imported, got %q", blank.Source)
	}
}

func TestExtract_FirstMatchWinsWithWarning(t *testing.T) {
	row := rowFrom(
		"Telefono Casa", "111",
		"Celular", "222",
		"Nombre", "ana",
	)
	c := Extract(row)
	if c.Phone != "111" {
		t.Fatalf("expected first matching column by order, got %q", c.Phone)
	}
	if len(c.Warnings) != 1 || !strings.Contains(c.Warnings[0], "phone") {
		t.Fatalf("expected a phone ambiguity warning, got %+v", c.Warnings)
	}
}

func TestExtract_EmptyRow(t *testing.T) {
	c := Extract(rowFrom("Col A", "", "Col B", "  "))
	if c.Name != "" || c.Email != "" || c.Phone != "" {
		t.Fatalf("expected all-empty candidate, got %+v", c)
	}
	if c.Source != "Imported" {
		t.Fatalf("expected default source, got %q", c.Source)
	}
}

func TestRowEmpty(t *testing.T) {
	if !rowFrom("A", "", "B", " ").Empty() {
		t.Fatalf("expected blank row to be empty")
	}
	if rowFrom("A", "x").Empty() {
		t.Fatalf("expected non-blank row to not be empty")
	}
}

func TestReadCSV(t *testing.T) {
	input := "Nombre,Correo,Telefono\n" +
		"ana,ana@x.com,555\n" +
		"luis,luis@x.com\n"

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0].Value("Correo"); got != "ana@x.com" {
		t.Fatalf("unexpected cell: %q", got)
	}
	// Ragged row padded with an empty cell.
	if got := rows[1].Value("Telefono"); got != "" {
		t.Fatalf("expected empty padded cell, got %q", got)
	}
	if len(rows[0].Keys) != 3 || rows[0].Keys[0] != "Nombre" {
		t.Fatalf("expected column order preserved, got %+v", rows[0].Keys)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestBuildRow_DuplicateHeader(t *testing.T) {
	row := buildRow([]string{"Nombre", "Nombre", "Cel"}, []string{"first", "second", "555"})
	if len(row.Keys) != 2 {
		t.Fatalf("expected duplicate header collapsed, got %+v", row.Keys)
	}
	if row.Value("Nombre") != "first" {
		t.Fatalf("expected first column under repeated header to win, got %q", row.Value("Nombre"))
	}
}
