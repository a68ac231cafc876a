package paramcore

import "fmt"

// Value is the tagged union stored per parameter id. It is implemented by
// the eleven *Value types below; each carries exactly one Go-typed payload
// matching a DataType/NumericWidth combination.
type Value interface {
	isValue()
	// String renders the value's canonical textual form, used for
	// ignore_if comparison, metadata emission, and re-parsing clean hooks.
	String() string
}

type Int64Value int64
type Int32Value int32
type Float64Value float64
type Float32Value float32
type BoolValue bool
type StringValue string
type ImageValue ImageBlob
type ImageListValue []ImageBlob
type ModelValue ModelHandle
type StringListValue []string
type ModelListValue []ModelHandle

func (Int64Value) isValue()      {}
func (Int32Value) isValue()      {}
func (Float64Value) isValue()    {}
func (Float32Value) isValue()    {}
func (BoolValue) isValue()       {}
func (StringValue) isValue()     {}
func (ImageValue) isValue()      {}
func (ImageListValue) isValue()  {}
func (ModelValue) isValue()      {}
func (StringListValue) isValue() {}
func (ModelListValue) isValue()  {}

func (v Int64Value) String() string   { return fmt.Sprintf("%d", int64(v)) }
func (v Int32Value) String() string   { return fmt.Sprintf("%d", int32(v)) }
func (v Float64Value) String() string { return fmt.Sprintf("%g", float64(v)) }
func (v Float32Value) String() string { return fmt.Sprintf("%g", float32(v)) }
func (v BoolValue) String() string    { return fmt.Sprintf("%t", bool(v)) }
func (v StringValue) String() string  { return string(v) }
func (v ImageValue) String() string   { return v.Ref }
func (v ModelValue) String() string   { return v.Canonical }

func (v ImageListValue) String() string {
	s := ""
	for i, b := range v {
		if i > 0 {
			s += "|"
		}
		s += b.Ref
	}
	return s
}

func (v StringListValue) String() string {
	s := ""
	for i, item := range v {
		if i > 0 {
			s += ","
		}
		s += item
	}
	return s
}

func (v ModelListValue) String() string {
	s := ""
	for i, m := range v {
		if i > 0 {
			s += ","
		}
		s += m.Canonical
	}
	return s
}

// AsInt64 narrows v to int64, widening Int32Value. ok is false for any
// other concrete type, including StringValue (no text parsing happens here).
func AsInt64(v Value) (int64, bool) {
	switch t := v.(type) {
	case Int64Value:
		return int64(t), true
	case Int32Value:
		return int64(t), true
	}
	return 0, false
}

// AsInt32 narrows a 64-bit integer value to 32 bits. The narrowing happens
// on read so a parameter can be declared once and stored at its natural
// width while 32-bit consumers still get a plain truncating conversion.
func AsInt32(v Value) (int32, bool) {
	switch t := v.(type) {
	case Int32Value:
		return int32(t), true
	case Int64Value:
		return int32(t), true
	}
	return 0, false
}

// AsFloat64 narrows v to float64.
func AsFloat64(v Value) (float64, bool) {
	switch t := v.(type) {
	case Float64Value:
		return float64(t), true
	case Float32Value:
		return float64(t), true
	}
	return 0, false
}

// AsFloat32 narrows a double-precision value to float32 on read.
func AsFloat32(v Value) (float32, bool) {
	switch t := v.(type) {
	case Float32Value:
		return float32(t), true
	case Float64Value:
		return float32(t), true
	}
	return 0, false
}

// AsBool narrows v to bool.
func AsBool(v Value) (bool, bool) {
	if t, ok := v.(BoolValue); ok {
		return bool(t), true
	}
	return false, false
}

// AsString returns v's canonical textual form for any concrete type.
func AsString(v Value) (string, bool) {
	if v == nil {
		return "", false
	}
	return v.String(), true
}

// AsStringList narrows v to a string list.
func AsStringList(v Value) ([]string, bool) {
	if t, ok := v.(StringListValue); ok {
		return []string(t), true
	}
	return nil, false
}

// AsModel narrows v to a model handle.
func AsModel(v Value) (ModelHandle, bool) {
	if t, ok := v.(ModelValue); ok {
		return ModelHandle(t), true
	}
	return ModelHandle{}, false
}

// AsModelList narrows v to a model handle list.
func AsModelList(v Value) ([]ModelHandle, bool) {
	if t, ok := v.(ModelListValue); ok {
		return []ModelHandle(t), true
	}
	return nil, false
}

// AsImage narrows v to an image blob.
func AsImage(v Value) (ImageBlob, bool) {
	if t, ok := v.(ImageValue); ok {
		return ImageBlob(t), true
	}
	return ImageBlob{}, false
}

// AsImageList narrows v to an image blob list.
func AsImageList(v Value) ([]ImageBlob, bool) {
	if t, ok := v.(ImageListValue); ok {
		return []ImageBlob(t), true
	}
	return nil, false
}

// cloneValue deep-copies list-typed values; scalar values are returned as-is
// since Go values of these concrete types are already immutable by copy.
func cloneValue(v Value) Value {
	switch t := v.(type) {
	case ImageListValue:
		out := make(ImageListValue, len(t))
		copy(out, t)
		return out
	case StringListValue:
		out := make(StringListValue, len(t))
		copy(out, t)
		return out
	case ModelListValue:
		out := make(ModelListValue, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
