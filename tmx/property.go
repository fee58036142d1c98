package tmx

import (
	"fmt"
	"strconv"
	"strings"
)

type PropertyType string

const (
	TypeString PropertyType = "string"
	TypeInt    PropertyType = "int"
	TypeFloat  PropertyType = "float"
	TypeBool   PropertyType = "bool"
	TypeColor  PropertyType = "color"
	TypeFile   PropertyType = "file"
	TypeObject PropertyType = "object"
	TypeClass  PropertyType = "class"
)

// Value is a typed property value. The concrete types are StringValue,
// IntValue, FloatValue, BoolValue, ColorValue, FileValue, ObjectValue and
// ClassValue.
type Value interface {
	Type() PropertyType
	// String returns the value as written in the document.
	String() string
	isValue()
}

type (
	StringValue string
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	ColorValue  Color
	// FileValue is a path as written in the document, relative to it.
	FileValue string
	// ObjectValue is the id of an object in the same map; 0 means none.
	ObjectValue int
)

// ClassValue is an instance of a custom property type. Members holds only
// the members set in the document; the rest take the type's defaults.
type ClassValue struct {
	Name    string // custom type name, the propertytype attribute
	Members Properties
}

func (StringValue) Type() PropertyType { return TypeString }
func (IntValue) Type() PropertyType    { return TypeInt }
func (FloatValue) Type() PropertyType  { return TypeFloat }
func (BoolValue) Type() PropertyType   { return TypeBool }
func (ColorValue) Type() PropertyType  { return TypeColor }
func (FileValue) Type() PropertyType   { return TypeFile }
func (ObjectValue) Type() PropertyType { return TypeObject }
func (ClassValue) Type() PropertyType  { return TypeClass }

func (v StringValue) String() string { return string(v) }
func (v IntValue) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v FloatValue) String() string  { return formatFloat(float64(v)) }
func (v BoolValue) String() string   { return strconv.FormatBool(bool(v)) }
func (v ColorValue) String() string  { return Color(v).String() }
func (v FileValue) String() string   { return string(v) }
func (v ObjectValue) String() string { return strconv.Itoa(int(v)) }

// String returns the type name; members are written as nested properties.
func (v ClassValue) String() string { return v.Name }

func (StringValue) isValue() {}
func (IntValue) isValue()    {}
func (FloatValue) isValue()  {}
func (BoolValue) isValue()   {}
func (ColorValue) isValue()  {}
func (FileValue) isValue()   {}
func (ObjectValue) isValue() {}
func (ClassValue) isValue()  {}

// ParseValue converts the document text of a property into a typed value.
// An empty type means string. A class value carries no text, so only its
// type name is set here.
func ParseValue(typ PropertyType, text string) (Value, error) {
	switch typ {
	case "", TypeString:
		return StringValue(text), nil
	case TypeInt:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: int property %q", ErrFormat, text)
		}
		return IntValue(v), nil
	case TypeFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: float property %q", ErrFormat, text)
		}
		return FloatValue(v), nil
	case TypeBool:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "1":
			return BoolValue(true), nil
		case "false", "0", "":
			return BoolValue(false), nil
		}
		return nil, fmt.Errorf("%w: bool property %q", ErrFormat, text)
	case TypeColor:
		if text == "" {
			return ColorValue{}, nil
		}
		c, err := ParseColor(text)
		if err != nil {
			return nil, err
		}
		return ColorValue(c), nil
	case TypeFile:
		return FileValue(text), nil
	case TypeObject:
		if text == "" {
			return ObjectValue(0), nil
		}
		v, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("%w: object property %q", ErrFormat, text)
		}
		return ObjectValue(v), nil
	case TypeClass:
		return ClassValue{Name: text}, nil
	}
	return nil, fmt.Errorf("%w: property type %q not supported", ErrFormat, typ)
}

type Property struct {
	Name  string
	Value Value
}

// Properties is an ordered property bag. Bags are independent: a tile does
// not inherit the properties of its tileset or map.
type Properties []Property

func (p Properties) Get(name string) (Value, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing property or appends a new one.
func (p *Properties) Set(name string, value Value) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Property{Name: name, Value: value})
}

func (p *Properties) Delete(name string) {
	for i := range *p {
		if (*p)[i].Name == name {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
