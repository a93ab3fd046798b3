package gen

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"go.l1config.dev/compiler/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateSet = template.Must(template.New("gen").Funcs(funcMap(&schema.Model{})).ParseFS(templateFS, "templates/*.tmpl"))

// outputs names every file Emit produces, relative to the output
// directory's src/ and include/ subdirectories.
var outputs = []struct {
	template string
	relPath  string
}{
	{"l1_config_types.h.tmpl", filepath.Join("include", "l1_config_types.h")},
	{"l1_config_getter.h.tmpl", filepath.Join("include", "l1_config_getter.h")},
	{"l1_config_keys.h.tmpl", filepath.Join("include", "l1_config_keys.h")},
	{"l1_config_keys.c.tmpl", filepath.Join("src", "l1_config_keys.c")},
}

// Emit renders every generated file for m under outDir, creating the
// src/ and include/ subdirectories as needed.
func Emit(m *schema.Model, outDir string) error {
	tmpl, err := templateSet.Clone()
	if err != nil {
		return fmt.Errorf("cloning template set: %w", err)
	}

	tmpl = tmpl.Funcs(funcMap(m))

	for _, sub := range []string{"src", "include"} {
		if err := os.MkdirAll(filepath.Join(outDir, sub), 0o755); err != nil {
			return &schema.IoError{Msg: "creating " + sub, Err: err}
		}
	}

	for _, o := range outputs {
		path := filepath.Join(outDir, o.relPath)

		f, err := os.Create(path)
		if err != nil {
			return &schema.IoError{Msg: "creating " + path, Err: err}
		}

		execErr := tmpl.ExecuteTemplate(f, o.template, m)

		closeErr := f.Close()

		if execErr != nil {
			return fmt.Errorf("rendering %s: %w", o.template, execErr)
		}

		if closeErr != nil {
			return fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}

	return nil
}
