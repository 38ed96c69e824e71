// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package catalog

import (
	"fmt"

	"github.com/purpleidea/tgp/scope"
	"github.com/purpleidea/tgp/types"
	"github.com/purpleidea/tgp/util/errwrap"

	"gopkg.in/yaml.v2"
)

// Spec is the serialized description of a catalog.
type Spec struct {
	Records   []*RecordSpec   `yaml:"records"`
	Builtins  []*BuiltinSpec  `yaml:"builtins"`
	Constants []*ConstantSpec `yaml:"constants"`
	Variables []*VariableSpec `yaml:"variables"`
}

// RecordSpec describes a record type. Field types may reference any record,
// including the one being defined.
type RecordSpec struct {
	Name   string       `yaml:"name"`
	Fields []*FieldSpec `yaml:"fields"`
}

// FieldSpec is a single field of a record.
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// BuiltinSpec selects a registered builtin.
type BuiltinSpec struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight,omitempty"`
}

// ConstantSpec is a named literal.
type ConstantSpec struct {
	Name   string      `yaml:"name"`
	Type   string      `yaml:"type"`
	Value  interface{} `yaml:"value"`
	Weight float64     `yaml:"weight,omitempty"`
}

// VariableSpec is a name whose value is given at evaluation time.
type VariableSpec struct {
	Name   string  `yaml:"name"`
	Type   string  `yaml:"type"`
	Weight float64 `yaml:"weight,omitempty"`
}

// ParseSpec decodes a catalog spec from YAML. Unknown keys are an error.
func ParseSpec(data []byte) (*Spec, error) {
	spec := &Spec{}
	if err := yaml.UnmarshalStrict(data, spec); err != nil {
		return nil, errwrap.Wrapf(err, "could not parse catalog")
	}
	return spec, nil
}

// Build turns the spec into a catalog. Builtins are added first, then
// constants, then variables, each in the order given.
func (obj *Spec) Build() (*Catalog, error) {
	cat := New()

	// two passes, so that records can reference each other
	for _, r := range obj.Records {
		if r.Name == "" {
			return nil, fmt.Errorf("record without a name")
		}
		if _, exists := cat.records[r.Name]; exists {
			return nil, fmt.Errorf("duplicate record `%s`", r.Name)
		}
		cat.records[r.Name] = types.NewRecord(r.Name)
	}
	for _, r := range obj.Records {
		rec := cat.records[r.Name]
		for _, f := range r.Fields {
			if _, exists := rec.Map[f.Name]; exists {
				return nil, fmt.Errorf("duplicate field `%s` in record `%s`", f.Name, r.Name)
			}
			t, err := types.Parse(f.Type, cat.records)
			if err != nil {
				return nil, errwrap.Wrapf(err, "bad type for field `%s` of `%s`", f.Name, r.Name)
			}
			rec.AddField(f.Name, t)
		}
	}

	for _, b := range obj.Builtins {
		entry, err := Lookup(b.Name)
		if err != nil {
			return nil, err
		}
		if err := cat.Add(b.Name, entry, weight(b.Weight)); err != nil {
			return nil, err
		}
	}

	for _, c := range obj.Constants {
		t, err := types.Parse(c.Type, cat.records)
		if err != nil {
			return nil, errwrap.Wrapf(err, "bad type for constant `%s`", c.Name)
		}
		v, err := convert(t, c.Value)
		if err != nil {
			return nil, errwrap.Wrapf(err, "bad value for constant `%s`", c.Name)
		}
		if err := cat.Add(c.Name, &Entry{Type: t, Value: v}, weight(c.Weight)); err != nil {
			return nil, err
		}
	}

	for _, v := range obj.Variables {
		t, err := types.Parse(v.Type, cat.records)
		if err != nil {
			return nil, errwrap.Wrapf(err, "bad type for variable `%s`", v.Name)
		}
		variable := &Variable{
			Name:   v.Name,
			Type:   t,
			Weight: weight(v.Weight),
		}
		if err := cat.AddVariable(variable); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

func weight(w float64) float64 {
	if w <= 0 {
		return scope.DefaultWeight
	}
	return w
}

// convert checks a decoded literal against an atomic type.
func convert(typ *types.Type, v interface{}) (interface{}, error) {
	if typ.Kind != types.KindAtomic {
		return nil, fmt.Errorf("constants must be atomic, got `%s`", typ)
	}
	switch typ.Name {
	case types.TypeInt.Name:
		if i, ok := v.(int); ok {
			return i, nil
		}
	case types.TypeBool.Name:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case types.TypeFloat.Name:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		}
	case types.TypeStr.Name:
		if s, ok := v.(string); ok {
			return s, nil
		}
	default:
		return nil, fmt.Errorf("unsupported constant type `%s`", typ)
	}
	return nil, fmt.Errorf("value %v of type %T does not fit `%s`", v, v, typ)
}
