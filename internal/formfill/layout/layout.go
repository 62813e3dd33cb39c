// internal/formfill/layout/layout.go
package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind is the namespace of a template field. Text and checkbox numbering are
// independent: text12 and checkbox12 are different widgets.
type Kind string

const (
	Text     Kind = "text"
	Checkbox Kind = "checkbox"
)

// Fillable reports whether values can be written to widgets of this kind.
func (k Kind) Fillable() bool {
	return k == Text || k == Checkbox
}

// FieldID returns the mapping key for widget number n of kind k.
func FieldID(k Kind, n int) string {
	return string(k) + strconv.Itoa(n)
}

// ParseFieldID splits a mapping key such as "checkbox20" into its kind and
// number.
func ParseFieldID(id string) (Kind, int, bool) {
	for _, k := range []Kind{Checkbox, Text} {
		rest, found := strings.CutPrefix(id, string(k))
		if !found || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return "", 0, false
		}
		return k, n, true
	}
	return "", 0, false
}

// NormalizeWidgetName converts a template widget name to a field id.
// "Text12" becomes "text12" and "Check Box20" becomes "checkbox20".
// Qualified names ("form1.Text12") keep only their last segment.
func NormalizeWidgetName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// SortFieldIDs orders ids text first, then checkbox, each by number.
// Keys outside both namespaces sort last, lexically.
func SortFieldIDs(ids []string) {
	rank := func(id string) (int, int) {
		k, n, ok := ParseFieldID(id)
		switch {
		case !ok:
			return 2, 0
		case k == Text:
			return 0, n
		default:
			return 1, n
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		ri, ni := rank(ids[i])
		rj, nj := rank(ids[j])
		if ri != rj {
			return ri < rj
		}
		if ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
}

// Row places one logical field of an entity type in the template.
//
// The k-th instance lives at Base + k*Stride. Where the template numbers its
// rows irregularly, Anchors lists the number of every instance instead and
// Capacity is len(Anchors). Width > 1 spreads a value over consecutive cells,
// such as the twelve digit boxes of a director id.
type Row struct {
	Field    string
	Kind     Kind
	Base     int
	Stride   int
	Capacity int
	Width    int
	Anchors  []int
}

// Cap is the number of instances the template has room for.
func (r Row) Cap() int {
	switch {
	case r.Kind == "":
		return 0
	case len(r.Anchors) > 0:
		return len(r.Anchors)
	case r.Capacity <= 0:
		return 1
	default:
		return r.Capacity
	}
}

// Cells is the number of widgets a single instance covers.
func (r Row) Cells() int {
	if r.Width <= 1 {
		return 1
	}
	return r.Width
}

// ID returns the field id of instance k, or false when k is beyond capacity.
func (r Row) ID(k int) (string, bool) {
	return r.Cell(k, 0)
}

// Cell returns the field id of cell i of instance k.
func (r Row) Cell(k, i int) (string, bool) {
	if k < 0 || k >= r.Cap() || i < 0 || i >= r.Cells() {
		return "", false
	}
	n := r.Base + k*r.Stride
	if len(r.Anchors) > 0 {
		n = r.Anchors[k]
	}
	return FieldID(r.Kind, n+i), true
}

// Table is a versioned, immutable set of rows.
type Table struct {
	version string
	rows    map[string]Row
	order   []string
}

// NewTable builds a table and checks that no two rows claim the same widget.
func NewTable(version string, rows ...Row) (*Table, error) {
	t := &Table{
		version: version,
		rows:    make(map[string]Row, len(rows)),
		order:   make([]string, 0, len(rows)),
	}
	for _, r := range rows {
		if r.Field == "" || !r.Kind.Fillable() {
			return nil, fmt.Errorf("layout %s: row %q has no field name or an unknown kind %q", version, r.Field, r.Kind)
		}
		if _, dup := t.rows[r.Field]; dup {
			return nil, fmt.Errorf("layout %s: duplicate row %q", version, r.Field)
		}
		t.rows[r.Field] = r
		t.order = append(t.order, r.Field)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustTable is NewTable for package-level tables.
func MustTable(version string, rows ...Row) *Table {
	t, err := NewTable(version, rows...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Version() string {
	return t.version
}

// Row returns the row for field. Unknown fields yield a zero Row whose ids
// are never valid.
func (t *Table) Row(field string) Row {
	return t.rows[field]
}

// Rows returns all rows in declaration order.
func (t *Table) Rows() []Row {
	out := make([]Row, 0, len(t.order))
	for _, f := range t.order {
		out = append(out, t.rows[f])
	}
	return out
}

// IDs expands every row to the full list of widget ids it can occupy.
func (t *Table) IDs() []string {
	var ids []string
	for _, r := range t.Rows() {
		for k := 0; k < r.Cap(); k++ {
			for i := 0; i < r.Cells(); i++ {
				id, _ := r.Cell(k, i)
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Validate reports the first widget claimed by more than one row slot.
func (t *Table) Validate() error {
	owner := make(map[string]string)
	for _, r := range t.Rows() {
		for k := 0; k < r.Cap(); k++ {
			for i := 0; i < r.Cells(); i++ {
				id, _ := r.Cell(k, i)
				if prev, taken := owner[id]; taken {
					return fmt.Errorf("layout %s: %s claimed by both %s and %s[%d]", t.version, id, prev, r.Field, k)
				}
				owner[id] = fmt.Sprintf("%s[%d]", r.Field, k)
			}
		}
	}
	return nil
}

var versions = map[string]*Table{
	V1.Version(): V1,
}

// Default is the layout used when no version is configured.
var Default = V1

// Lookup returns the table registered under version.
func Lookup(version string) (*Table, bool) {
	t, ok := versions[version]
	return t, ok
}

// Versions lists the registered layout versions.
func Versions() []string {
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
