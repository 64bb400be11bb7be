// Package stream reads resource lists and writes separated YAML document
// streams.
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"crmigrate/pkg/migrate"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utiljson "k8s.io/apimachinery/pkg/util/json"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// Decode reads `r` and decodes it as a YAML (or JSON) mapping, e.g., the
// output of `kubectl get <resource> -A -o yaml`. Values are decoded into their
// JSON-compatible forms with whole numbers as `int64`, so large integers are
// kept exactly. The input must hold a single document; any further non-empty
// document is malformed input.
func Decode(r io.Reader) (map[string]interface{}, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(r))

	var list interface{}
	for i := 0; ; i++ {
		document, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf(
				"decoding resource list: reading input: %w",
				err,
			)
		}

		v, err := decodeDocument(document)
		if err != nil {
			return nil, fmt.Errorf(
				"decoding resource list: document %d: %w: %w",
				i,
				migrate.ErrMalformedInput,
				err,
			)
		}
		if v == nil {
			continue
		}
		if list != nil {
			return nil, fmt.Errorf(
				"decoding resource list: found more than one document: %w",
				migrate.ErrMalformedInput,
			)
		}
		list = v
	}

	m, ok := list.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf(
			"decoding resource list: top-level value is a %T; expected a "+
				"mapping: %w",
			list,
			migrate.ErrMalformedInput,
		)
	}
	return m, nil
}

// decodeDocument returns nil for documents holding only comments or
// whitespace.
func decodeDocument(document []byte) (interface{}, error) {
	data, err := yaml.YAMLToJSON(document)
	if err != nil {
		return nil, err
	}

	var v interface{}
	if err := utiljson.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode writes each record as its own YAML document, each one preceded by a
// `---` separator. Nothing is written unless every record marshals.
func Encode(w io.Writer, records []*unstructured.Unstructured) error {
	var buf bytes.Buffer
	for _, record := range records {
		data, err := yaml.Marshal(record.Object)
		if err != nil {
			return fmt.Errorf(
				"encoding record `%s/%s`: %w",
				record.GetNamespace(),
				record.GetName(),
				err,
			)
		}
		buf.WriteString("---\n")
		buf.Write(data)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("encoding records: writing output: %w", err)
	}
	return nil
}
