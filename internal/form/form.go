// Package form converts XEP-0004 data form subtrees to and from a flat,
// transport-friendly field list.
package form

import "encoding/xml"

// NS is the data forms namespace.
const NS = "jabber:x:data"

// Form type attribute values.
const (
	TypeForm   = "form"
	TypeSubmit = "submit"
)

// X is the wire representation of a data form, the <x/> element.
type X struct {
	XMLName      xml.Name `xml:"jabber:x:data x"`
	Type         string   `xml:"type,attr,omitempty"`
	Title        string   `xml:"title,omitempty"`
	Instructions string   `xml:"instructions,omitempty"`
	Fields       []XField `xml:"field"`
}

// XField is one wire-level form field.
type XField struct {
	Var      string    `xml:"var,attr,omitempty"`
	Type     string    `xml:"type,attr,omitempty"`
	Label    string    `xml:"label,attr,omitempty"`
	Values   []string  `xml:"value"`
	Required *struct{} `xml:"required"`
	Options  []XOption `xml:"option"`
}

// XOption is a wire-level field option.
type XOption struct {
	Label string `xml:"label,attr,omitempty"`
	Value string `xml:"value"`
}

// Data is the flattened view of a form handed to clients.
type Data struct {
	Title        string  `json:"title,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
	Fields       []Field `json:"fields"`
}

// Field is the flattened view of one form field.
type Field struct {
	Var      string   `json:"var,omitempty"`
	Type     string   `json:"type,omitempty"`
	Label    string   `json:"label,omitempty"`
	Value    string   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
	Required bool     `json:"required"`
	Options  []Option `json:"options,omitempty"`
}

// Option is a flattened field option.
type Option struct {
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// Parse flattens a wire form into client-facing data.
func Parse(x *X) Data {
	data := Data{
		Title:        x.Title,
		Instructions: x.Instructions,
		Fields:       make([]Field, 0, len(x.Fields)),
	}
	for _, xf := range x.Fields {
		f := Field{
			Var:      xf.Var,
			Type:     xf.Type,
			Label:    xf.Label,
			Required: xf.Required != nil,
		}
		switch len(xf.Values) {
		case 0:
		case 1:
			f.Value = xf.Values[0]
		default:
			f.Values = xf.Values
		}
		for _, o := range xf.Options {
			f.Options = append(f.Options, Option{Label: o.Label, Value: o.Value})
		}
		data.Fields = append(data.Fields, f)
	}
	return data
}

// Submit builds a submit-type wire form from a flat field list. The first
// field is always the hidden FORM_TYPE field carrying the given namespace.
func Submit(formType string, fields []Field) *X {
	x := &X{
		Type: TypeSubmit,
		Fields: []XField{{
			Var:    "FORM_TYPE",
			Type:   "hidden",
			Values: []string{formType},
		}},
	}
	for _, f := range fields {
		xf := XField{Var: f.Var, Type: f.Type, Label: f.Label}
		if f.Value != "" {
			xf.Values = []string{f.Value}
		}
		xf.Values = append(xf.Values, f.Values...)
		x.Fields = append(x.Fields, xf)
	}
	return x
}
