package migrate

import (
	"fmt"
	"log/slog"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Filter converts the legacy records of a resource list according to `Rule`.
type Filter struct {
	Rule     Rule
	Notifier Notifier

	// Logger receives debug logs for skipped records. Defaults to
	// `slog.Default()`.
	Logger *slog.Logger
}

// Result holds the converted records, in input order, along with the number
// of records examined.
type Result struct {
	Records []*unstructured.Unstructured
	Scanned int
}

// NewFilter validates `rule` and returns a filter for it.
func NewFilter(rule Rule, notifier Notifier) (*Filter, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &Filter{Rule: rule, Notifier: notifier}, nil
}

// Migrate converts every matching record under the `items` key of `list`.
// Records that don't match are dropped. The input is never modified.
//
// Any malformed record aborts the run and no records are returned, although
// notices for the records converted before it have already been written.
func (f *Filter) Migrate(list map[string]interface{}) (Result, error) {
	raw, found := list["items"]
	if !found {
		return Result{}, fmt.Errorf(
			"migrating records: missing top-level `items`: %w",
			ErrMalformedInput,
		)
	}

	items, ok := raw.([]interface{})
	if !ok {
		return Result{}, fmt.Errorf(
			"migrating records: `items` is a %T; expected a sequence: %w",
			raw,
			ErrMalformedInput,
		)
	}

	return f.MigrateItems(items)
}

// MigrateItems is like `Migrate`, but takes the records directly.
func (f *Filter) MigrateItems(items []interface{}) (Result, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var records []*unstructured.Unstructured
	for i, item := range items {
		record, err := f.migrateItem(logger, i, item)
		if err != nil {
			return Result{}, fmt.Errorf("migrating records: %w", err)
		}
		if record != nil {
			records = append(records, record)
		}
	}

	return Result{Records: records, Scanned: len(items)}, nil
}

func (f *Filter) migrateItem(
	logger *slog.Logger,
	index int,
	item interface{},
) (*unstructured.Unstructured, error) {
	object, ok := item.(map[string]interface{})
	if !ok {
		return nil, &MalformedRecordError{
			Index: index,
			Err:   fmt.Errorf("record is a %T; expected a mapping", item),
		}
	}

	apiVersion, err := requiredString(index, object, "apiVersion")
	if err != nil {
		return nil, err
	}
	kind, err := requiredString(index, object, "kind")
	if err != nil {
		return nil, err
	}
	name, err := requiredString(index, object, "metadata", "name")
	if err != nil {
		return nil, err
	}
	namespace, err := requiredString(index, object, "metadata", "namespace")
	if err != nil {
		return nil, err
	}
	spec, err := requiredMap(index, object, "spec")
	if err != nil {
		return nil, err
	}

	if !f.Rule.Matches(apiVersion, kind, spec) {
		logger.Debug(
			"skipping record",
			"apiVersion", apiVersion,
			"kind", kind,
			"name", name,
			"namespace", namespace,
		)
		return nil, nil
	}

	record := f.Rule.Rewrite(kind, name, namespace, spec)
	f.Notifier.Updated(name, namespace)
	return record, nil
}

func requiredString(
	index int,
	object map[string]interface{},
	fields ...string,
) (string, error) {
	value, found, err := unstructured.NestedString(object, fields...)
	if err != nil {
		return "", &MalformedRecordError{
			Index: index,
			Field: joinFields(fields),
			Err:   err,
		}
	}
	if !found {
		return "", &MalformedRecordError{
			Index: index,
			Field: joinFields(fields),
		}
	}
	return value, nil
}

func requiredMap(
	index int,
	object map[string]interface{},
	fields ...string,
) (map[string]interface{}, error) {
	value, found, err := unstructured.NestedFieldNoCopy(object, fields...)
	if err != nil {
		return nil, &MalformedRecordError{
			Index: index,
			Field: joinFields(fields),
			Err:   err,
		}
	}
	if !found {
		return nil, &MalformedRecordError{
			Index: index,
			Field: joinFields(fields),
		}
	}
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, &MalformedRecordError{
			Index: index,
			Field: joinFields(fields),
			Err:   fmt.Errorf("found a %T; expected a mapping", value),
		}
	}
	return m, nil
}

func joinFields(fields []string) string { return strings.Join(fields, ".") }
