// Package openapidesc loads paramcore.ParamDescriptor values from an
// OpenAPI v3 document's components.parameters section, so a deployment
// can describe its generation parameters in a schema file instead of Go
// literals.
package openapidesc

import (
	"fmt"
	"os"
	"strings"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/imagegen/paramweave/paramcore"
)

type extensionMap = orderedmap.Map[string, *yaml.Node]

// swarmTypeExtension names the data type beyond what JSON Schema's own
// "type" distinguishes (MODEL, IMAGE, IMAGE_LIST, DROPDOWN).
const swarmTypeExtension = "x-swarm-type"

var swarmTypeNames = map[string]paramcore.DataType{
	"integer":   paramcore.Integer,
	"decimal":   paramcore.Decimal,
	"boolean":   paramcore.Boolean,
	"text":      paramcore.Text,
	"dropdown":  paramcore.Dropdown,
	"image":     paramcore.Image,
	"imagelist": paramcore.ImageList,
	"model":     paramcore.Model,
	"list":      paramcore.List,
}

// LoadFile reads and parses path as an OpenAPI v3 document.
func LoadFile(path string) ([]*paramcore.ParamDescriptor, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OpenAPI descriptor file: %w", err)
	}
	return Load(content)
}

// Load parses content as an OpenAPI v3 document and returns one
// ParamDescriptor per entry in components.parameters.
func Load(content []byte) ([]*paramcore.ParamDescriptor, error) {
	doc, err := libopenapi.NewDocument(content)
	if err != nil {
		return nil, fmt.Errorf("not a valid OpenAPI document: %w", err)
	}
	model, err := doc.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI v3 model: %w", err)
	}
	if model == nil || model.Model.Components == nil || model.Model.Components.Parameters == nil {
		return nil, nil
	}

	var descriptors []*paramcore.ParamDescriptor
	for pair := model.Model.Components.Parameters.First(); pair != nil; pair = pair.Next() {
		desc, err := toDescriptor(pair.Key(), pair.Value())
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pair.Key(), err)
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

func toDescriptor(id string, param *v3.Parameter) (*paramcore.ParamDescriptor, error) {
	desc := &paramcore.ParamDescriptor{ID: id}

	dataType, width, err := resolveDataType(param)
	if err != nil {
		return nil, err
	}
	desc.DataType = dataType
	desc.NumericWidth = width

	if param.Schema != nil {
		if schema := param.Schema.Schema(); schema != nil && schema.Default != nil {
			if text, ok := scalarToText(schema.Default.Value); ok {
				desc.Default = &text
			}
		}
	}

	if ext, ok := stringExtension(param.Extensions, "x-swarm-ignore-if"); ok {
		desc.IgnoreIf = &ext
	}
	if ext, ok := stringExtension(param.Extensions, "x-swarm-feature-flag"); ok {
		desc.FeatureFlag = &ext
	}
	if ext, ok := stringExtension(param.Extensions, "x-swarm-subtype"); ok {
		desc.Subtype = ext
	}
	if hide, ok := boolExtension(param.Extensions, "x-swarm-hide-from-metadata"); ok {
		desc.HideFromMetadata = hide
	}
	if prefix, ok := stringExtension(param.Extensions, "x-swarm-metadata-trim-prefix"); ok {
		desc.MetadataFormat = func(s string) string { return strings.TrimPrefix(s, prefix) }
	}

	return desc, nil
}

func resolveDataType(param *v3.Parameter) (paramcore.DataType, paramcore.NumericWidth, error) {
	if swarmType, ok := stringExtension(param.Extensions, swarmTypeExtension); ok {
		dt, ok := swarmTypeNames[strings.ToLower(swarmType)]
		if !ok {
			return 0, 0, fmt.Errorf("unknown %s value: %s", swarmTypeExtension, swarmType)
		}
		return dt, widthForType(param, dt), nil
	}

	if param.Schema == nil {
		return paramcore.Text, 0, nil
	}
	schema := param.Schema.Schema()
	if schema == nil || len(schema.Type) == 0 {
		return paramcore.Text, 0, nil
	}

	switch schema.Type[0] {
	case "integer":
		return paramcore.Integer, widthFromFormat(schema.Format, paramcore.Width64), nil
	case "number":
		return paramcore.Decimal, widthFromFormat(schema.Format, paramcore.Width64), nil
	case "boolean":
		return paramcore.Boolean, 0, nil
	case "array":
		return paramcore.List, 0, nil
	default:
		return paramcore.Text, 0, nil
	}
}

func widthForType(param *v3.Parameter, dt paramcore.DataType) paramcore.NumericWidth {
	if dt != paramcore.Integer && dt != paramcore.Decimal {
		return 0
	}
	if param.Schema == nil {
		return paramcore.Width64
	}
	schema := param.Schema.Schema()
	if schema == nil {
		return paramcore.Width64
	}
	return widthFromFormat(schema.Format, paramcore.Width64)
}

func widthFromFormat(format string, def paramcore.NumericWidth) paramcore.NumericWidth {
	switch format {
	case "int32", "float":
		return paramcore.Width32
	case "int64", "double":
		return paramcore.Width64
	default:
		return def
	}
}

func stringExtension(extensions *extensionMap, key string) (string, bool) {
	if extensions == nil {
		return "", false
	}
	node, ok := extensions.Get(key)
	if !ok || node == nil {
		return "", false
	}
	return strings.TrimSpace(node.Value), node.Value != ""
}

func boolExtension(extensions *extensionMap, key string) (bool, bool) {
	s, ok := stringExtension(extensions, key)
	if !ok {
		return false, false
	}
	return strings.EqualFold(s, "true"), true
}

func scalarToText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case nil:
		return "", false
	default:
		return fmt.Sprintf("%v", t), true
	}
}
