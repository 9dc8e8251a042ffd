package main

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"
)

type generatorInput struct {
	Package    string
	Func       string
	Qualifier  string
	Components []component
}

var fileTemplate = template.Must(template.New("components").Parse(`// Code generated by ecsgen. DO NOT EDIT.

package {{.Package}}
{{if .Qualifier}}
import "github.com/plus3/entstore/ecs"
{{end}}
// {{.Func}} registers every component type declared in this package.
func {{.Func}}(registry *{{.Qualifier}}ComponentRegistry) {
{{- range .Components}}
	{{$.Qualifier}}RegisterComponent[{{.TypeName}}](registry){{if .Name}} // {{printf "%q" .Name}}{{end}}
{{- end}}
}
`))

func render(in generatorInput) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, in); err != nil {
		return nil, fmt.Errorf("render %s: %w", in.Func, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return src, nil
}
