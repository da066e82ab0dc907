package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"
)

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Tabler is implemented by values that render themselves as a table.
type Tabler interface {
	Table() *Table
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// TableFormatter formats data as an aligned table.
//
// Supported: *Table, Tabler, a struct (one FIELD/VALUE row per field), a
// slice of structs (one row per element) and scalars.
type TableFormatter struct{}

// Format formats data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch d := data.(type) {
	case nil:
		return nil
	case *Table:
		return d.Render(w)
	case Tabler:
		return d.Table().Render(w)
	}

	v := reflect.Indirect(reflect.ValueOf(data))
	switch v.Kind() {
	case reflect.Struct:
		return structTable(v).Render(w)
	case reflect.Slice, reflect.Array:
		return sliceTable(v).Render(w)
	default:
		_, err := fmt.Fprintln(w, formatValue(v))
		return err
	}
}

func structTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	for i, name := range fieldNames(v.Type()) {
		if name == "" {
			continue
		}
		t.AddRow(name, formatValue(v.Field(i)))
	}
	return t
}

func sliceTable(v reflect.Value) *Table {
	t := &Table{}
	elem := v.Type().Elem()
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		t.Headers = []string{"VALUE"}
		for i := 0; i < v.Len(); i++ {
			t.AddRow(formatValue(v.Index(i)))
		}
		return t
	}

	names := fieldNames(elem)
	for _, name := range names {
		if name != "" {
			t.Headers = append(t.Headers, strings.ToUpper(name))
		}
	}
	for i := 0; i < v.Len(); i++ {
		row := reflect.Indirect(v.Index(i))
		cells := make([]string, 0, len(t.Headers))
		for j, name := range names {
			if name != "" {
				cells = append(cells, formatValue(row.Field(j)))
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// fieldNames returns the json name of every exported field, or "" for
// fields that are skipped.
func fieldNames(t reflect.Type) []string {
	names := make([]string, t.NumField())
	for i := range names {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}
		names[i] = name
	}
	return names
}

var timeType = reflect.TypeOf(time.Time{})

// formatValue formats a reflect.Value for display.
func formatValue(v reflect.Value) string {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return "-"
	}

	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Format(time.RFC3339)
	}
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Struct:
		parts := make([]string, 0, v.NumField())
		for i, name := range fieldNames(v.Type()) {
			if name != "" {
				parts = append(parts, name+"="+formatValue(v.Field(i)))
			}
		}
		return strings.Join(parts, " ")
	case reflect.Slice, reflect.Array, reflect.Map:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes())
		}
		return fmt.Sprintf("[%d items]", v.Len())
	default:
		return fmt.Sprint(v.Interface())
	}
}
