// Package docs registers the portal's OpenAPI document with swag so that
// echo-swagger can serve it under /swagger/.
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
        "/dashboard": {
            "get": {
                "tags": ["session"],
                "summary": "Landing redirect",
                "responses": {"302": {"description": "Found"}}
            }
        },
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}}
            },
            "delete": {
                "tags": ["session"],
                "summary": "Logout",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/session/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ports.RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/careseeker/profile": {
            "get": {"tags": ["careseeker"], "summary": "Careseeker profile", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["careseeker"], "summary": "Edit careseeker profile", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}},
            "delete": {"tags": ["careseeker"], "summary": "Close careseeker profile", "responses": {"204": {"description": "No Content"}}}
        },
        "/careseeker/profile/save": {
            "post": {"tags": ["careseeker"], "summary": "Save careseeker profile", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}, "502": {"description": "Bad Gateway"}}}
        },
        "/careseeker/profile/reset": {
            "post": {"tags": ["careseeker"], "summary": "Revert careseeker profile", "responses": {"200": {"description": "OK"}}}
        },
        "/careseeker/profile/avatar": {
            "post": {"consumes": ["multipart/form-data"], "tags": ["careseeker"], "summary": "Upload careseeker avatar", "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/careseeker/caregivers": {
            "get": {"tags": ["careseeker"], "summary": "Caregiver directory", "parameters": [{"type": "string", "name": "q", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/careseeker/caregivers/{id}": {
            "get": {"tags": ["careseeker"], "summary": "Caregiver details", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/caregiver/profile": {
            "get": {"tags": ["caregiver"], "summary": "Caregiver profile", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["caregiver"], "summary": "Edit caregiver profile", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["caregiver"], "summary": "Close caregiver profile", "responses": {"204": {"description": "No Content"}}}
        },
        "/caregiver/profile/save": {
            "post": {"tags": ["caregiver"], "summary": "Save caregiver profile", "responses": {"200": {"description": "OK"}}}
        },
        "/caregiver/profile/avatar": {
            "post": {"consumes": ["multipart/form-data"], "tags": ["caregiver"], "summary": "Upload caregiver avatar", "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/feedback": {
            "post": {"tags": ["feedback"], "summary": "Submit feedback", "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/feedback/form": {
            "get": {"tags": ["feedback"], "summary": "Feedback form", "responses": {"200": {"description": "OK"}}}
        },
        "/feedback/mine": {
            "get": {"tags": ["feedback"], "summary": "My feedback", "responses": {"200": {"description": "OK"}}}
        },
        "/feedback/{id}": {
            "get": {"tags": ["feedback"], "summary": "Edit feedback", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["feedback"], "summary": "Change feedback", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/careseekers": {
            "get": {"tags": ["admin"], "summary": "Careseeker accounts", "parameters": [{"type": "string", "name": "q", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "boolean", "name": "refresh", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/careseekers/{id}/status": {
            "put": {"tags": ["admin"], "summary": "Change account status", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/admin/feedback": {
            "get": {"tags": ["admin"], "summary": "Feedback board", "parameters": [{"type": "string", "name": "q", "in": "query"}, {"type": "integer", "name": "stars", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/feedback/{id}": {
            "delete": {"tags": ["admin"], "summary": "Delete feedback", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/previews/{id}": {
            "get": {"tags": ["previews"], "summary": "Avatar preview", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "field": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "CAREGIVER", "CARE_SEEKER"]},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "home": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "ports.RegisterInput": {
            "type": "object",
            "required": ["email", "firstName", "lastName", "password", "role"],
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "city": {"type": "string"},
                "address": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "CAREGIVER", "CARE_SEEKER"]}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CareNet Portal API",
	Description:      "Session, profile, feedback and admin views of the CareNet portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
