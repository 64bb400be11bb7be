package migrate

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Rule describes which records are legacy and how to rewrite them: records in
// `Group` of kind `Kind` carrying `spec.<SourceField>` are moved to
// `<Group>/<DestVersion>` with the value stored under `spec.<DestField>`.
type Rule struct {
	Group       string `yaml:"group"`
	Kind        string `yaml:"kind"`
	SourceField string `yaml:"sourceField"`
	DestField   string `yaml:"destField"`
	DestVersion string `yaml:"destVersion"`
}

// DefaultRule converts `kodachi.com` FFS resources from the `ffs` field to the
// `curse` field introduced in v1alpha2.
var DefaultRule = Rule{
	Group:       "kodachi.com",
	Kind:        "FFS",
	SourceField: "ffs",
	DestField:   "curse",
	DestVersion: "v1alpha2",
}

// Validate rejects rules with empty members or identical fields.
func (r Rule) Validate() error {
	if field := func() string {
		if r.Group == "" {
			return "group"
		}
		if r.Kind == "" {
			return "kind"
		}
		if r.SourceField == "" {
			return "sourceField"
		}
		if r.DestField == "" {
			return "destField"
		}
		if r.DestVersion == "" {
			return "destVersion"
		}
		return ""
	}(); field != "" {
		return fmt.Errorf("validating migration rule: missing `%s`", field)
	}

	if r.SourceField == r.DestField {
		return errors.New(
			"validating migration rule: source field and destination field " +
				"must differ",
		)
	}
	return nil
}

// APIVersion returns the apiVersion of rewritten records.
func (r Rule) APIVersion() string {
	return r.Group + "/" + r.DestVersion
}

// Matches reports whether a record with the given apiVersion, kind, and spec
// needs to be converted. The stored version can't be trusted (the API server
// reports whatever version it was asked for), so only the group prefix is
// checked and the presence of the source field decides. A null source field
// counts as absent; zero values such as "" or 0 count as present.
func (r Rule) Matches(
	apiVersion string,
	kind string,
	spec map[string]interface{},
) bool {
	value, found := spec[r.SourceField]
	return strings.HasPrefix(apiVersion, r.Group) &&
		kind == r.Kind &&
		found &&
		value != nil
}

// Rewrite builds a new record in the destination version. Metadata is reduced
// to the name and namespace. The returned spec is a new map, but nested
// values are shared with `spec`.
func (r Rule) Rewrite(
	kind string,
	name string,
	namespace string,
	spec map[string]interface{},
) *unstructured.Unstructured {
	rewritten := maps.Clone(spec)
	if rewritten == nil {
		rewritten = map[string]interface{}{}
	}
	value := rewritten[r.SourceField]
	delete(rewritten, r.SourceField)
	rewritten[r.DestField] = value

	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": r.APIVersion(),
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
		"spec": rewritten,
	}}
}
