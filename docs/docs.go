// Package docs registers the portal API's OpenAPI document with swag so
// echo-swagger can serve it under /swagger/*. Regenerate with `swag init -g
// cmd/server/main.go` after changing handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "429": {"description": "Too Many Requests"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh access token",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.refreshResponse"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PublicUser"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "User profile",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PublicUser"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/games/statki": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["statki"],
                "summary": "New statki game",
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.boardResponse"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/games/statki/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["statki"],
                "summary": "Get statki game",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Game ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.boardResponse"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/games/statki/{id}/attack": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["statki"],
                "summary": "Attack a cell",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Game ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.attackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.attackResponse"}},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"}
                }
            }
        }
    },
    "definitions": {
        "domain.PublicUser": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["emailOrUsername", "password"],
            "properties": {
                "emailOrUsername": {"type": "string"},
                "password": {"type": "string", "maxLength": 72}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 1, "maxLength": 72},
                "username": {"type": "string", "maxLength": 64}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "accessToken": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.PublicUser"}
            }
        },
        "handler.refreshResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.PublicUser"}
            }
        },
        "handler.attackRequest": {
            "type": "object",
            "required": ["x", "y"],
            "properties": {
                "x": {"type": "integer"},
                "y": {"type": "integer"}
            }
        },
        "handler.boardResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "cells": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}},
                "shots": {"type": "integer"},
                "ships_left": {"type": "integer"},
                "finished": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handler.attackResponse": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "enum": ["miss", "hit", "sunk", "repeat"]},
                "finished": {"type": "boolean"},
                "board": {"$ref": "#/definitions/handler.boardResponse"}
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
	Title:            "Game Portal API",
	Description:      "Accounts, sessions and the statki game for the browser game portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
