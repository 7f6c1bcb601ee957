// Package compiler turns declarative interaction documents into ir.Model.
//
// Documents may be written as CUE, JSON, or YAML. All three go through the
// CUE SDK: JSON and YAML are extracted into CUE syntax first, so every
// format is checked against the same schema and reports errors with source
// positions.
package compiler

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/motion/internal/ir"
)

//go:embed schema.cue
var schemaSrc string

// Compile checks a CUE value against the document schema and decodes it.
//
// The value should be the document root:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`events: click: {...}, actionLists: fade: {...}`)
//	model, err := Compile(v)
func Compile(v cue.Value) (*ir.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	doc := schema.LookupPath(cue.ParsePath("#Document")).Unify(v)
	if err := doc.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.Model{}
	if err := doc.Decode(m); err != nil {
		return nil, formatCUEError(err)
	}

	order, err := eventOrder(doc)
	if err != nil {
		return nil, err
	}
	m.EventOrder = order
	normalize(m)
	return m, nil
}

// CompileBytes compiles a document, picking the format from the file
// extension.
func CompileBytes(filename string, data []byte) (*ir.Model, error) {
	ctx := cuecontext.New()

	var v cue.Value
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		v = ctx.CompileBytes(data, cue.Filename(filename))
	case ".json":
		expr, err := cuejson.Extract(filename, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		v = ctx.BuildExpr(expr, cue.Filename(filename))
	case ".yaml", ".yml":
		f, err := cueyaml.Extract(filename, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		v = ctx.BuildFile(f, cue.Filename(filename))
	default:
		return nil, &CompileError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported document format %q (want .cue, .json, .yaml)", filepath.Ext(filename)),
		}
	}
	return Compile(v)
}

// LoadFile reads and compiles one document file.
func LoadFile(path string) (*ir.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return CompileBytes(path, data)
}

// LoadDir compiles every .cue file of the package in dir as one document.
func LoadDir(dir string) (*ir.Model, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &CompileError{Field: "load", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	v := cuecontext.New().BuildInstance(inst)
	return Compile(v)
}

// Load compiles a document file or a directory of CUE files.
func Load(path string) (*ir.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// eventOrder returns event labels in declaration order.
func eventOrder(doc cue.Value) ([]string, error) {
	events := doc.LookupPath(cue.ParsePath("events"))
	if !events.Exists() {
		return nil, nil
	}
	iter, err := events.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var order []string
	for iter.Next() {
		order = append(order, ir.NormalizeID(iter.Label()))
	}
	return order, nil
}

// normalize fills ids from map labels, normalizes identifiers and
// selectors, and resolves each item's render type.
func normalize(m *ir.Model) {
	events := make(map[string]ir.Event, len(m.Events))
	for label, ev := range m.Events {
		label = ir.NormalizeID(label)
		if ev.ID == "" {
			ev.ID = label
		}
		ev.ID = ir.NormalizeID(ev.ID)
		ev.Target = normalizeTarget(ev.Target)
		for i, t := range ev.Targets {
			ev.Targets[i] = normalizeTarget(t)
		}
		ev.Action.Config.ActionListID = ir.NormalizeID(ev.Action.Config.ActionListID)
		ev.Action.Config.AutoStopEventID = ir.NormalizeID(ev.Action.Config.AutoStopEventID)
		events[label] = ev
	}
	m.Events = events

	lists := make(map[string]ir.ActionList, len(m.ActionLists))
	for label, l := range m.ActionLists {
		label = ir.NormalizeID(label)
		if l.ID == "" {
			l.ID = label
		}
		l.ID = ir.NormalizeID(l.ID)
		for gi := range l.ActionItemGroups {
			normalizeItems(l.ActionItemGroups[gi].ActionItems)
		}
		for pi := range l.ContinuousParameterGroups {
			for ai := range l.ContinuousParameterGroups[pi].ContinuousActionGroups {
				normalizeItems(l.ContinuousParameterGroups[pi].ContinuousActionGroups[ai].ActionItems)
			}
		}
		lists[label] = l
	}
	m.ActionLists = lists
}

func normalizeItems(items []ir.ActionItem) {
	for i := range items {
		items[i].RenderType = ir.RenderTypeOf(items[i].ActionTypeID)
		items[i].Config.Target = normalizeTarget(items[i].Config.Target)
	}
}

func normalizeTarget(t ir.Target) ir.Target {
	t.ID = ir.NormalizeID(t.ID)
	t.Selector = ir.NormalizeID(t.Selector)
	return t
}
