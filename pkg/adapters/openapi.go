package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ternhq/tern/pkg/schema"
)

// OpenAPI parses OpenAPI 3.x documents in YAML or JSON.
type OpenAPI struct{}

// NewOpenAPI creates the OpenAPI adapter.
func NewOpenAPI() *OpenAPI { return &OpenAPI{} }

func (a *OpenAPI) Format() schema.Format { return schema.FormatOpenAPI }

// httpMethods is the emission order for operations under a path item.
var httpMethods = []string{"get", "put", "post", "delete", "patch", "head", "options", "trace"}

// Parse converts an OpenAPI document: every path item operation becomes an
// operation node keyed by method and route, followed by the component
// schemas in name order. Schema objects go through the same conversion as
// JSON Schema documents.
func (a *OpenAPI) Parse(raw []byte) (*schema.Model, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		// YAML is a superset of JSON, but surface a JSON error when the
		// document is unambiguously JSON.
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr != nil {
			return nil, schema.NewParseError(schema.FormatOpenAPI, "invalid document", err)
		}
	}
	if _, ok := doc["openapi"]; !ok {
		if _, ok := doc["swagger"]; !ok {
			return nil, schema.NewParseError(schema.FormatOpenAPI, "missing openapi version field", nil)
		}
	}

	var nodes []*schema.Node

	if paths, ok := doc["paths"].(map[string]any); ok {
		routes := make([]string, 0, len(paths))
		for r := range paths {
			routes = append(routes, r)
		}
		sort.Strings(routes)
		for _, route := range routes {
			item, ok := paths[route].(map[string]any)
			if !ok {
				continue
			}
			ops, err := convertPathItem(route, item)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, ops...)
		}
	}

	if components, ok := doc["components"].(map[string]any); ok {
		if schemas, ok := components["schemas"].(map[string]any); ok {
			names := make([]string, 0, len(schemas))
			for n := range schemas {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, name := range names {
				sm, ok := schemas[name].(map[string]any)
				if !ok {
					return nil, schema.NewParseError(schema.FormatOpenAPI,
						fmt.Sprintf("component schema %q is not an object", name), nil)
				}
				n, err := convertJSONSchema(sm)
				if err != nil {
					return nil, err
				}
				n.Name = name
				nodes = append(nodes, n)
			}
		}
	}

	return &schema.Model{Format: schema.FormatOpenAPI, Nodes: nodes}, nil
}

func convertPathItem(route string, item map[string]any) ([]*schema.Node, error) {
	var shared []schema.Field
	if rawParams, ok := item["parameters"].([]any); ok {
		params, err := convertParameters(route, rawParams)
		if err != nil {
			return nil, err
		}
		shared = params
	}

	var nodes []*schema.Node
	for _, method := range httpMethods {
		op, ok := item[method].(map[string]any)
		if !ok {
			continue
		}
		node, err := convertOperation(route, method, op, shared)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func convertOperation(route, method string, op map[string]any, shared []schema.Field) (*schema.Node, error) {
	node := &schema.Node{
		Kind:   schema.KindOperation,
		Route:  route,
		Method: strings.ToUpper(method),
	}
	if id, ok := op["operationId"].(string); ok {
		node.Name = id
	}

	node.Parameters = append(node.Parameters, shared...)
	if rawParams, ok := op["parameters"].([]any); ok {
		params, err := convertParameters(route, rawParams)
		if err != nil {
			return nil, err
		}
		node.Parameters = append(node.Parameters, params...)
	}

	if rb, ok := op["requestBody"].(map[string]any); ok {
		body, err := convertMediaSchema(rb)
		if err != nil {
			return nil, err
		}
		node.RequestBody = body
	}

	if responses, ok := op["responses"].(map[string]any); ok {
		statuses := make([]string, 0, len(responses))
		for s := range responses {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			rm, ok := responses[status].(map[string]any)
			if !ok {
				continue
			}
			body, err := convertMediaSchema(rm)
			if err != nil {
				return nil, err
			}
			node.Responses = append(node.Responses, schema.Response{Status: status, Body: body})
		}
	}

	return node, nil
}

func convertParameters(route string, raw []any) ([]schema.Field, error) {
	fields := make([]schema.Field, 0, len(raw))
	for _, rp := range raw {
		pm, ok := rp.(map[string]any)
		if !ok {
			return nil, schema.NewParseError(schema.FormatOpenAPI,
				fmt.Sprintf("parameter entry under %s is not an object", route), nil)
		}
		name, _ := pm["name"].(string)
		if name == "" {
			return nil, schema.NewParseError(schema.FormatOpenAPI,
				fmt.Sprintf("parameter under %s is missing a name", route), nil)
		}
		// Location participates in identity: a query parameter and a header
		// with the same name are different parameters.
		if in, ok := pm["in"].(string); ok && in != "" {
			name = in + ":" + name
		}

		f := schema.Field{Name: name}
		if req, ok := pm["required"].(bool); ok {
			f.Required = req
		}
		if dep, ok := pm["deprecated"].(bool); ok {
			f.Deprecated = dep
		}
		if sm, ok := pm["schema"].(map[string]any); ok {
			typ, err := convertJSONSchema(sm)
			if err != nil {
				return nil, err
			}
			f.Type = typ
			if def, ok := sm["default"]; ok {
				f.HasDefault = true
				f.Default = renderJSON(def)
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// convertMediaSchema pulls the schema out of a requestBody or response
// object, preferring application/json over other media types.
func convertMediaSchema(m map[string]any) (*schema.Node, error) {
	content, ok := m["content"].(map[string]any)
	if !ok {
		return nil, nil
	}

	mediaTypes := make([]string, 0, len(content))
	for mt := range content {
		mediaTypes = append(mediaTypes, mt)
	}
	sort.Strings(mediaTypes)

	chosen := ""
	for _, mt := range mediaTypes {
		if mt == "application/json" {
			chosen = mt
			break
		}
	}
	if chosen == "" && len(mediaTypes) > 0 {
		chosen = mediaTypes[0]
	}
	if chosen == "" {
		return nil, nil
	}

	mm, ok := content[chosen].(map[string]any)
	if !ok {
		return nil, nil
	}
	sm, ok := mm["schema"].(map[string]any)
	if !ok {
		return nil, nil
	}
	return convertJSONSchema(sm)
}
