package tmx

import (
	"fmt"

	"github.com/eak1mov/go-libtmx/tmx/spec"
)

// Template is a loaded TX document. Object is shared by every instance and
// must not be modified.
type Template struct {
	Source   string
	Object   spec.Object
	Tilesets Tilesets // the template's own tileset, if it has one
}

func (s *session) template(source string) (*Template, error) {
	if tmpl, ok := s.templates[source]; ok {
		return tmpl, nil
	}

	data, err := s.read(source)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", source, err)
	}
	doc, err := spec.DecodeTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", source, err)
	}

	tmpl := &Template{Source: source, Object: doc.Object}
	if doc.Tileset != nil {
		ts, err := s.tileset(*doc.Tileset, source)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", source, err)
		}
		tmpl.Tilesets = Tilesets{ts}
	}

	s.templates[source] = tmpl
	s.Logger.Debug("tmx: loaded template", "source", source)
	return tmpl, nil
}
