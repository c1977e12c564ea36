package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/aryan0dhankhar/solkant/internal/domain"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Schema names a request payload schema
type Schema string

const (
	Client      Schema = "client.json"
	Service     Schema = "service.json"
	Quote       Schema = "quote.json"
	QuoteStatus Schema = "quote_status.json"
	Register    Schema = "register.json"
)

var allSchemas = []Schema{Client, Service, Quote, QuoteStatus, Register}

// Validator checks request payloads against the embedded JSON schemas
type Validator struct {
	schemas map[Schema]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	compiler.AssertFormat()

	for _, name := range allSchemas {
		raw, err := schemaFiles.ReadFile("schemas/" + string(name))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", name, err)
		}
		if err := compiler.AddResource(string(name), doc); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[Schema]*jsonschema.Schema, len(allSchemas))}
	for _, name := range allSchemas {
		s, err := compiler.Compile(string(name))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// MustNew is New for package-level wiring and tests.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks raw JSON against a schema. Violations are returned as a
// *domain.ValidationError keyed by field path.
func (v *Validator) Validate(name Schema, raw []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return domain.NewValidationError("body", "JSON invalide")
	}
	if err := schema.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return toDomainError(ve)
		}
		return err
	}
	return nil
}

// Decode validates raw and unmarshals it into out.
func (v *Validator) Decode(name Schema, raw []byte, out any) error {
	if err := v.Validate(name, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewValidationError("body", "JSON invalide")
	}
	return nil
}

func toDomainError(ve *jsonschema.ValidationError) *domain.ValidationError {
	fields := map[string]string{}
	collect(ve, fields)
	if len(fields) == 0 {
		fields["body"] = "Valeur invalide"
	}
	return &domain.ValidationError{Fields: fields}
}

// collect walks the cause tree and records one message per leaf location.
func collect(ve *jsonschema.ValidationError, fields map[string]string) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collect(c, fields)
		}
		return
	}

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		for _, missing := range k.Missing {
			setOnce(fields, fieldPath(ve.InstanceLocation, missing), "Champ requis")
		}
		return
	case *kind.AdditionalProperties:
		for _, extra := range k.Properties {
			setOnce(fields, fieldPath(ve.InstanceLocation, extra), "Champ inconnu")
		}
		return
	}

	keyword := ""
	if ve.ErrorKind != nil {
		if path := ve.ErrorKind.KeywordPath(); len(path) > 0 {
			keyword = path[len(path)-1]
		}
	}
	setOnce(fields, fieldPath(ve.InstanceLocation, ""), messageFor(keyword))
}

func setOnce(fields map[string]string, key, msg string) {
	if _, exists := fields[key]; !exists {
		fields[key] = msg
	}
}

func fieldPath(location []string, leaf string) string {
	parts := make([]string, 0, len(location)+1)
	for _, p := range location {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if leaf != "" {
		parts = append(parts, leaf)
	}
	if len(parts) == 0 {
		return "body"
	}
	return strings.Join(parts, ".")
}

func messageFor(keyword string) string {
	switch keyword {
	case "minLength":
		return "Trop court"
	case "maxLength":
		return "Trop long"
	case "minimum", "exclusiveMinimum":
		return "Valeur trop petite"
	case "maximum", "exclusiveMaximum":
		return "Valeur trop grande"
	case "pattern", "format":
		return "Format invalide"
	case "type":
		return "Type invalide"
	case "enum", "const":
		return "Valeur non autorisée"
	case "minItems":
		return "Au moins un élément requis"
	case "maxItems":
		return "Trop d'éléments"
	default:
		return "Valeur invalide"
	}
}
