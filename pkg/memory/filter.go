package memory

// Filter is a boolean predicate over document metadata fields. Stores either
// compile it into their native query language or evaluate it in process via
// Matches.
type Filter interface {
	// Matches evaluates the predicate against a document's metadata fields.
	Matches(fields map[string]string) bool
}

type eqFilter struct {
	field string
	value string
}

func (f eqFilter) Matches(fields map[string]string) bool {
	return fields[f.field] == f.value
}

type inFilter struct {
	field  string
	values []string
}

func (f inFilter) Matches(fields map[string]string) bool {
	for _, v := range f.values {
		if fields[f.field] == v {
			return true
		}
	}
	return false
}

type andFilter struct {
	operands []Filter
}

func (f andFilter) Matches(fields map[string]string) bool {
	for _, op := range f.operands {
		if !op.Matches(fields) {
			return false
		}
	}
	return true
}

type orFilter struct {
	operands []Filter
}

func (f orFilter) Matches(fields map[string]string) bool {
	for _, op := range f.operands {
		if op.Matches(fields) {
			return true
		}
	}
	return false
}

// Eq matches documents whose field equals value.
func Eq(field, value string) Filter {
	return eqFilter{field: field, value: value}
}

// In matches documents whose field equals any of the given values.
func In(field string, values ...string) Filter {
	return inFilter{field: field, values: values}
}

// And matches documents satisfying every operand.
func And(operands ...Filter) Filter {
	if len(operands) == 1 {
		return operands[0]
	}
	return andFilter{operands: operands}
}

// Or matches documents satisfying at least one operand.
func Or(operands ...Filter) Filter {
	if len(operands) == 1 {
		return operands[0]
	}
	return orFilter{operands: operands}
}

// Visit exposes the filter structure to store adapters that compile filters
// into a backend query language.
func Visit(f Filter, v Visitor) {
	switch t := f.(type) {
	case eqFilter:
		v.Eq(t.field, t.value)
	case inFilter:
		v.In(t.field, t.values)
	case andFilter:
		v.And(t.operands)
	case orFilter:
		v.Or(t.operands)
	}
}

// Visitor receives the structure of a Filter during Visit.
type Visitor interface {
	Eq(field, value string)
	In(field string, values []string)
	And(operands []Filter)
	Or(operands []Filter)
}
