package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternhq/tern/pkg/schema"
)

const petstoreYAML = `
openapi: "3.0.3"
info:
  title: Pets
  version: "1.0"
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            format: int32
            default: 20
      responses:
        "200":
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/NewPet"
      responses:
        "201":
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: string
    get:
      operationId: getPet
      responses:
        "200":
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
        "404":
          description: not found
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
          format: int64
        name:
          type: string
    NewPet:
      type: object
      required: [name]
      properties:
        name:
          type: string
`

func TestOpenAPIParseDocument(t *testing.T) {
	model, err := NewOpenAPI().Parse([]byte(petstoreYAML))
	require.NoError(t, err)
	assert.Equal(t, schema.FormatOpenAPI, model.Format)

	// Three operations (routes sorted) followed by two component schemas.
	require.Len(t, model.Nodes, 5)
	assert.Equal(t, "GET /pets", model.Nodes[0].Identity())
	assert.Equal(t, "POST /pets", model.Nodes[1].Identity())
	assert.Equal(t, "GET /pets/{petId}", model.Nodes[2].Identity())
	assert.Equal(t, "NewPet", model.Nodes[3].Name)
	assert.Equal(t, "Pet", model.Nodes[4].Name)

	list := model.Nodes[0]
	assert.Equal(t, "listPets", list.Name)
	require.Len(t, list.Parameters, 1)
	limit := list.Parameters[0]
	assert.Equal(t, "query:limit", limit.Name)
	assert.False(t, limit.Required)
	assert.True(t, limit.HasDefault)
	assert.Equal(t, schema.ScalarInt32, limit.Type.Scalar)

	require.Len(t, list.Responses, 1)
	assert.Equal(t, "200", list.Responses[0].Status)
	body := list.Responses[0].Body
	require.NotNil(t, body)
	assert.Equal(t, schema.KindArray, body.Kind)
	assert.Equal(t, "Pet", body.Item.Name)

	create := model.Nodes[1]
	require.NotNil(t, create.RequestBody)
	assert.Equal(t, "NewPet", create.RequestBody.Name)

	get := model.Nodes[2]
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "path:petId", get.Parameters[0].Name)
	assert.True(t, get.Parameters[0].Required)
	// The 404 arm has no content and yields a nil body.
	require.Len(t, get.Responses, 2)
	assert.Nil(t, get.Responses[1].Body)

	pet := model.Nodes[4]
	require.Len(t, pet.Fields, 2)
	assert.Equal(t, schema.ScalarInt64, pet.Fields[0].Type.Scalar)
	assert.True(t, pet.Fields[0].Required)
}

func TestOpenAPIParseJSONInput(t *testing.T) {
	raw := []byte(`{"openapi": "3.1.0", "paths": {"/ping": {"get": {"responses": {"200": {"description": "ok"}}}}}}`)
	model, err := NewOpenAPI().Parse(raw)
	require.NoError(t, err)
	require.Len(t, model.Nodes, 1)
	assert.Equal(t, "GET /ping", model.Nodes[0].Identity())
}

func TestOpenAPIParseRejectsNonOpenAPI(t *testing.T) {
	_, err := NewOpenAPI().Parse([]byte(`{"title": "just a schema"}`))
	require.Error(t, err)
	var perr *schema.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, schema.FormatOpenAPI, perr.Format)
}
