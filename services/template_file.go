package services

import (
	"bytes"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// DecodeTemplate reads a template from TOML. Undecoded keys are reported as
// an error so typos in module config surface early.
func DecodeTemplate(r io.Reader) (*Template, error) {
	var tpl Template
	md, err := toml.NewDecoder(r).Decode(&tpl)
	if err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode template: unknown keys %v", undecoded)
	}
	if !tpl.Kind.Valid() {
		return nil, fmt.Errorf("decode template %q: unknown kind %q", tpl.Name, tpl.Kind)
	}
	return &tpl, nil
}

// EncodeTemplate writes tpl as TOML.
func EncodeTemplate(w io.Writer, tpl *Template) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tpl); err != nil {
		return fmt.Errorf("encode template %q: %w", tpl.Name, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
