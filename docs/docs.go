// Package docs registers the OpenAPI description of the API, served by
// gin-swagger under /swagger/. Keep it in step with the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Check if the service is running",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a user",
                "parameters": [
                    {"description": "Account details", "name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in with email and password",
                "parameters": [
                    {"description": "Credentials", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/api/v1/oauth/token": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["oauth2"],
                "summary": "OAuth2 token endpoint",
                "parameters": [
                    {"type": "string", "description": "client_credentials or authorization_code", "name": "grant_type", "in": "formData", "required": true},
                    {"type": "string", "name": "client_id", "in": "formData", "required": true},
                    {"type": "string", "name": "client_secret", "in": "formData", "required": true},
                    {"type": "string", "name": "code", "in": "formData"},
                    {"type": "string", "name": "redirect_uri", "in": "formData"},
                    {"type": "string", "name": "code_verifier", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.OAuth2Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.OAuth2Error"}}
                }
            }
        },
        "/api/v1/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/api/v1/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/api/v1/tags": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tags"],
                "summary": "Get all tags",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Tag"}}}
                }
            }
        },
        "/api/v1/ingredients": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ingredients"],
                "summary": "Get all ingredients",
                "parameters": [
                    {"type": "string", "description": "Name prefix (case-insensitive)", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Ingredient"}}}
                }
            }
        },
        "/api/v1/recipes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["recipes"],
                "summary": "Get recipes",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Author ID", "name": "author", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Tag slugs (any of)", "name": "tags", "in": "query"},
                    {"type": "integer", "name": "is_favorited", "in": "query"},
                    {"type": "integer", "name": "is_in_shopping_cart", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recipes"],
                "summary": "Create a recipe",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/api/v1/recipes/download_shopping_cart": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/plain"],
                "tags": ["recipes"],
                "summary": "Download the shopping list",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/api/v1/admin": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Admin registry",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "controllers.RegisterRequest": {
            "type": "object",
            "required": ["email", "first_name", "last_name", "password", "username"],
            "properties": {
                "email": {"type": "string", "maxLength": 254},
                "first_name": {"type": "string", "maxLength": 150},
                "last_name": {"type": "string", "maxLength": 150},
                "password": {"type": "string", "minLength": 6},
                "username": {"type": "string", "maxLength": 150}
            }
        },
        "controllers.UserResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "id": {"type": "integer"},
                "is_subscribed": {"type": "boolean"},
                "last_name": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true},
                "message": {"type": "string"}
            }
        },
        "models.Ingredient": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "measurement_unit": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"}
            }
        },
        "models.OAuth2Error": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"},
                "error_uri": {"type": "string"}
            }
        },
        "models.Tag": {
            "type": "object",
            "properties": {
                "color": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "slug": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Foodgram API",
	Description:      "Recipe sharing: recipes, tags, ingredients, favorites, shopping carts and subscriptions",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
