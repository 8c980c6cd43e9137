// Package swagger registers the generated OpenAPI document with the
// http-swagger handler. Regenerate with:
//
//	swag init -g cmd/api/main.go -o docs/swagger --instanceName swagger
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "email": "support@shopcore.dev"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/inventory": {
            "get": {
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "List inventory items",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Create inventory item",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/inventory/{sku}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Get inventory item",
                "parameters": [
                    {"type": "string", "name": "sku", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/inventory/{sku}/reservations": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Reserve stock",
                "parameters": [
                    {"type": "string", "name": "sku", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Create order",
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/orders/{id}/confirm": {
            "post": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Confirm order",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Shopcore API",
	Description:      "Inventory and order management API built as a DDD modular monolith.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
