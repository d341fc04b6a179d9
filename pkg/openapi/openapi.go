// Package openapi describes mounted resources as an OpenAPI 3 document.
package openapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/restkit/pkg/query"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// Resource is the part of a mounted resource the document needs.
type Resource struct {
	Name string
	Path string
	// Supports lists the lower-cased methods of the default routes.
	Supports []string
	// Statics lists the static route patterns, without the "/{id}" variants.
	Statics []string
}

// Build returns a document with one path pair per resource.
func Build(title, version string, resources []Resource) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
	}

	for _, res := range resources {
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: res.Name})

		collection := &openapi3.PathItem{}
		item := &openapi3.PathItem{}
		for _, m := range res.Supports {
			method := strings.ToUpper(m)
			if op := collectionOperation(res, method); op != nil {
				collection.SetOperation(method, op)
			}
			if op := itemOperation(res, method); op != nil {
				item.SetOperation(method, op)
			}
		}
		if len(collection.Operations()) > 0 {
			doc.Paths.Set(res.Path, collection)
		}
		if len(item.Operations()) > 0 {
			doc.Paths.Set(res.Path+"/{id}", item)
		}

		for _, pattern := range res.Statics {
			name := strings.TrimPrefix(pattern, res.Path+"/")
			doc.Paths.Set(pattern, &openapi3.PathItem{Get: staticOperation(res, name, false)})
			doc.Paths.Set(pattern+"/{id}", &openapi3.PathItem{Get: staticOperation(res, name, true)})
		}
	}

	return doc
}

// MarshalJSON encodes doc as indented JSON.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// MarshalYAML encodes doc as YAML.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}

func documentList() *openapi3.Schema {
	return openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.Responses {
	return openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema),
		}),
		openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Invalid request").WithJSONSchema(messageSchema()),
		}),
	)
}

func messageSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithProperty("message", openapi3.NewStringSchema())
}

func idParameter() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())}
}

func documentBody() *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(openapi3.NewObjectSchema()),
	}
}

// listParameters documents the reserved query parameters. Every other
// parameter filters on the field of the same name.
func listParameters() openapi3.Parameters {
	return openapi3.Parameters{
		{Value: openapi3.NewQueryParameter(query.ParamSort).WithSchema(openapi3.NewStringSchema()).
			WithDescription("Space-separated fields; a leading - sorts descending")},
		{Value: openapi3.NewQueryParameter(query.ParamPage).WithSchema(openapi3.NewIntegerSchema().WithMin(1)).
			WithDescription("1-based page number")},
		{Value: openapi3.NewQueryParameter(query.ParamLimit).WithSchema(openapi3.NewIntegerSchema().WithMin(0)).
			WithDescription("Page size, capped by the resource maximum")},
	}
}

func newOperation(res Resource, id, summary string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Tags = []string{res.Name}
	return op
}

func collectionOperation(res Resource, method string) *openapi3.Operation {
	switch method {
	case http.MethodGet:
		op := newOperation(res, "list"+res.Name, "List "+res.Name)
		op.Parameters = listParameters()
		op.Responses = jsonResponse("Matching documents", documentList())
		return op
	case http.MethodPost:
		op := newOperation(res, "create"+res.Name, "Create a "+res.Name+" document")
		op.RequestBody = documentBody()
		op.Responses = jsonResponse("The created document", openapi3.NewObjectSchema())
		return op
	case http.MethodDelete:
		op := newOperation(res, "deleteAll"+res.Name, "Delete every "+res.Name+" document")
		op.Responses = jsonResponse("Number of deleted documents",
			openapi3.NewObjectSchema().WithProperty("deleted", openapi3.NewIntegerSchema()))
		return op
	}
	return nil
}

func itemOperation(res Resource, method string) *openapi3.Operation {
	var op *openapi3.Operation
	switch method {
	case http.MethodGet:
		op = newOperation(res, "get"+res.Name, "Get a "+res.Name+" document by id")
		op.Responses = jsonResponse("A list holding the document, or empty", documentList())
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		verb := strings.ToLower(method)
		op = newOperation(res, verb+res.Name, "Update a "+res.Name+" document")
		op.RequestBody = documentBody()
		op.Responses = jsonResponse("The updated document", openapi3.NewObjectSchema())
	case http.MethodDelete:
		op = newOperation(res, "delete"+res.Name, "Delete a "+res.Name+" document")
		op.Responses = jsonResponse("Number of deleted documents",
			openapi3.NewObjectSchema().WithProperty("deleted", openapi3.NewIntegerSchema()))
	default:
		return nil
	}
	op.Parameters = openapi3.Parameters{idParameter()}
	return op
}

func staticOperation(res Resource, name string, withID bool) *openapi3.Operation {
	id := "static" + res.Name + "_" + name
	op := newOperation(res, id, "Saved query "+name)
	op.Responses = jsonResponse("Matching documents", documentList())
	if withID {
		op.OperationID = id + "_byId"
		op.Parameters = openapi3.Parameters{idParameter()}
	}
	return op
}
