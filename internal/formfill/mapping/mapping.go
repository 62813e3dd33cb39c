// internal/formfill/mapping/mapping.go
package mapping

import (
	"loan-form-workers/internal/formfill/layout"
)

// Mapping is a flat set of template field ids. Values are string for text
// widgets and bool for checkboxes.
type Mapping map[string]interface{}

// Generator flattens application records onto one layout version.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	table *layout.Table
}

func NewGenerator(table *layout.Table) *Generator {
	if table == nil {
		table = layout.Default
	}
	return &Generator{table: table}
}

// Generate flattens record with the default layout.
func Generate(record interface{}) Mapping {
	return NewGenerator(nil).Generate(record)
}

func (g *Generator) Table() *layout.Table {
	return g.table
}

// Generate converts a nested application record into a mapping. Malformed
// input never fails: a non-object or empty root yields an empty mapping and
// a bad value drops only its own slot.
func (g *Generator) Generate(record interface{}) Mapping {
	root, ok := asMap(record)
	if !ok || len(root) == 0 {
		return Mapping{}
	}

	r := newRecord(root)
	b := &builder{table: g.table, out: Mapping{}}

	companySection(b, r)
	solvencySection(b, r)
	individualSection(b, r)
	individualAssetSection(b, r)
	securitySection(b, r)
	loanSection(b, r)
	requirementSection(b, r)
	exitSection(b, r)

	return b.out
}

// slot is the outcome of formatting one value: included with a value, or
// omitted.
type slot struct {
	value interface{}
	ok    bool
}

func include(v interface{}) slot { return slot{value: v, ok: true} }

func omit() slot { return slot{} }

// builder writes included slots to the ids the layout assigns them.
// Instances past a row's capacity resolve to no id and are dropped.
type builder struct {
	table *layout.Table
	out   Mapping
}

func (b *builder) put(field string, k int, s slot) {
	b.putCell(field, k, 0, s)
}

func (b *builder) putCell(field string, k, cell int, s slot) {
	if !s.ok {
		return
	}
	id, ok := b.table.Row(field).Cell(k, cell)
	if !ok {
		return
	}
	b.out[id] = s.value
}

func (b *builder) putDate(prefix string, k int, v interface{}) {
	day, month, year, ok := dateParts(v)
	if !ok {
		return
	}
	b.put(prefix+".day", k, include(day))
	b.put(prefix+".month", k, include(month))
	b.put(prefix+".year", k, include(year))
}

// putYesNo sets a complementary pair of checkboxes.
func (b *builder) putYesNo(prefix string, k int, v interface{}) {
	yes := truthy(v)
	b.put(prefix+".yes", k, include(yes))
	b.put(prefix+".no", k, include(!yes))
}
