package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed templates/*
var templateFS embed.FS

// NewTemplate parses the embedded templates. They are compiled into the binary,
// so a parse failure is a programming error.
func NewTemplate() *Template {
	names, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		panic(err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		pages[path.Base(name)] = template.Must(template.New("email").ParseFS(templateFS, name))
	}

	return &Template{pages: pages}
}

// ParseTemplate renders the subject, plainBody and htmlBody blocks of the named template.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	t, ok := tp.pages[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("could not find template %q", name)
	}

	subject := new(bytes.Buffer)
	if err := t.ExecuteTemplate(subject, "subject", data); err != nil {
		return nil, nil, nil, err
	}

	plainBody := new(bytes.Buffer)
	if err := t.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return nil, nil, nil, err
	}

	htmlBody := new(bytes.Buffer)
	if err := t.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
		return nil, nil, nil, err
	}

	return subject, plainBody, htmlBody, nil
}
