package netcdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	gonetcdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// Variable is an in-memory NetCDF variable.
type Variable struct {
	Name       string
	Values     any
	Dimensions []string
	Attributes api.AttributeMap
}

// Dataset is an in-memory NetCDF dataset. Variables keep file order.
type Dataset struct {
	Variables []Variable
	attrKeys  []string
	attrs     map[string]any
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{attrs: make(map[string]any)}
}

// ReadFile loads a whole NetCDF file into memory.
func ReadFile(path string) (*Dataset, error) {
	g, err := gonetcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer g.Close()
	ds, err := readDataset(g)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// readDataset loads every variable and global attribute of an open group.
func readDataset(g api.Group) (*Dataset, error) {
	ds := NewDataset()
	for _, name := range g.ListVariables() {
		v, err := g.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("read variable %s: %w", name, err)
		}
		ds.Variables = append(ds.Variables, Variable{
			Name:       name,
			Values:     v.Values,
			Dimensions: v.Dimensions,
			Attributes: v.Attributes,
		})
	}
	if am := g.Attributes(); am != nil {
		for _, k := range am.Keys() {
			val, _ := am.Get(k)
			ds.SetAttribute(k, val)
		}
	}
	return ds, nil
}

// Variable returns the named variable.
func (d *Dataset) Variable(name string) (Variable, bool) {
	for _, v := range d.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Attribute returns a global attribute.
func (d *Dataset) Attribute(key string) (any, bool) {
	v, ok := d.attrs[key]
	return v, ok
}

// SetAttribute sets a global attribute, appending new keys at the end.
func (d *Dataset) SetAttribute(key string, val any) {
	if _, ok := d.attrs[key]; !ok {
		d.attrKeys = append(d.attrKeys, key)
	}
	d.attrs[key] = val
}

// Records returns the length of dim, taken from the first variable that uses
// it as its leading dimension.
func (d *Dataset) Records(dim string) int {
	for _, v := range d.Variables {
		if alongDim(v, dim) {
			rv := reflect.ValueOf(v.Values)
			if rv.Kind() == reflect.Slice {
				return rv.Len()
			}
		}
	}
	return 0
}

// Concat joins datasets along dim in the given order. Every dataset must hold
// the same set of variables. Variables led by dim are appended; every other
// variable and all global attributes come from the first dataset.
func Concat(datasets []*Dataset, dim string) (*Dataset, error) {
	if len(datasets) == 0 {
		return nil, errors.New("concat: no datasets")
	}
	base := datasets[0]
	if err := sameVariables(datasets); err != nil {
		return nil, err
	}
	out := NewDataset()
	for _, k := range base.attrKeys {
		out.SetAttribute(k, base.attrs[k])
	}

	for _, v := range base.Variables {
		if !alongDim(v, dim) {
			out.Variables = append(out.Variables, v)
			continue
		}
		joined := reflect.ValueOf(v.Values)
		if joined.Kind() != reflect.Slice {
			return nil, fmt.Errorf("concat %s: values of type %T cannot be concatenated", v.Name, v.Values)
		}
		joined = reflect.AppendSlice(reflect.MakeSlice(joined.Type(), 0, joined.Len()*len(datasets)), joined)
		for i, ds := range datasets[1:] {
			other, _ := ds.Variable(v.Name)
			if !alongDim(other, dim) {
				return nil, fmt.Errorf("concat %s: dataset %d does not lead with %s", v.Name, i+2, dim)
			}
			ov := reflect.ValueOf(other.Values)
			if ov.Type() != joined.Type() {
				return nil, fmt.Errorf("concat %s: type %s does not match %s in dataset %d", v.Name, ov.Type(), joined.Type(), i+2)
			}
			joined = reflect.AppendSlice(joined, ov)
		}
		v.Values = joined.Interface()
		out.Variables = append(out.Variables, v)
	}
	return out, nil
}

// sameVariables reports the first variable that is absent from some dataset.
func sameVariables(datasets []*Dataset) error {
	base := datasets[0]
	for i, ds := range datasets[1:] {
		for _, v := range base.Variables {
			if _, ok := ds.Variable(v.Name); !ok {
				return fmt.Errorf("concat %s: missing from dataset %d", v.Name, i+2)
			}
		}
		for _, v := range ds.Variables {
			if _, ok := base.Variable(v.Name); !ok {
				return fmt.Errorf("concat %s: missing from dataset 1", v.Name)
			}
		}
	}
	return nil
}

// Renumber sets the coordinate variable of dim to 0..n-1, keeping its element
// type when it is numeric. A missing coordinate is added as int32.
func (d *Dataset) Renumber(dim string) {
	n := d.Records(dim)
	for i, v := range d.Variables {
		if v.Name != dim {
			continue
		}
		d.Variables[i].Values = sequence(v.Values, n)
		d.Variables[i].Dimensions = []string{dim}
		return
	}
	d.Variables = append(d.Variables, Variable{
		Name:       dim,
		Values:     sequence(nil, n),
		Dimensions: []string{dim},
	})
}

func sequence(like any, n int) any {
	t := reflect.TypeOf(like)
	if t == nil || t.Kind() != reflect.Slice {
		t = reflect.TypeOf([]int32(nil))
	}
	out := reflect.MakeSlice(t, n, n)
	for i := range n {
		e := out.Index(i)
		switch e.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			e.SetInt(int64(i))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			e.SetUint(uint64(i))
		case reflect.Float32, reflect.Float64:
			e.SetFloat(float64(i))
		default:
			return sequence(nil, n)
		}
	}
	return out.Interface()
}

func alongDim(v Variable, dim string) bool {
	return len(v.Dimensions) > 0 && v.Dimensions[0] == dim
}

// Write stores the dataset as a NetCDF classic file at path. A partially
// written file is removed on failure.
func (d *Dataset) Write(path string) (err error) {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := cw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	for _, v := range d.Variables {
		attrs := v.Attributes
		if attrs == nil {
			attrs, err = util.NewOrderedMap(nil, nil)
			if err != nil {
				return err
			}
		}
		err = cw.AddVar(v.Name, api.Variable{
			Values:     v.Values,
			Dimensions: v.Dimensions,
			Attributes: attrs,
		})
		if err != nil {
			return fmt.Errorf("write variable %s: %w", v.Name, err)
		}
	}

	global, err := util.NewOrderedMap(d.attrKeys, d.attrs)
	if err != nil {
		return fmt.Errorf("global attributes: %w", err)
	}
	if err = cw.AddGlobalAttrs(global); err != nil {
		return fmt.Errorf("write global attributes: %w", err)
	}
	return nil
}

// Bytes encodes the dataset as a NetCDF classic file and returns its contents.
func (d *Dataset) Bytes() ([]byte, error) {
	dir, err := os.MkdirTemp("", "netcdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "dataset.nc")
	if err := d.Write(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
