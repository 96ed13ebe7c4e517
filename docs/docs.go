// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with `swag init -g cmd/api/main.go`.
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
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"],
                "tags": ["events"], "summary": "Create a new event",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateEventRequest"}}],
                "responses": {
                    "201": {"description": "Created event", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }}
        },
        "/events/{eventID}": {
            "get": {"produces": ["application/json"], "tags": ["events"], "summary": "Get an event",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Event and rating", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }},
            "delete": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["events"], "summary": "Delete an event",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }}
        },
        "/events/{eventID}/capacity": {
            "patch": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"],
                "tags": ["events"], "summary": "Change event capacity",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.UpdateCapacityRequest"}}
                ],
                "responses": {"200": {"description": "Updated event", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events/{eventID}/publish": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["events"], "summary": "Publish an event",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events/{eventID}/close": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["events"], "summary": "Close an event",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events/{eventID}/stats": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["events"], "summary": "Attendance statistics",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events/{eventID}/reconcile": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["events"], "summary": "Repair the registration counter",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events/{eventID}/checkins/{userID}": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["checkins"], "summary": "Check an attendee in",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true},
                    {"type": "string", "name": "userID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Already checked in", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "201": {"description": "Checked in", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: not_registered", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }}
        },
        "/events/{eventID}/registrations": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["registrations"], "summary": "Register the current user for an event",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Already registered", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "201": {"description": "New registration", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: event_full | event_not_open", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }},
            "delete": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["registrations"], "summary": "Cancel the current user's registration",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Cancelled ticket", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: not_registered", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }}
        },
        "/tickets/mine": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["registrations"], "summary": "List the current user's tickets",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "data contains items and pagination", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events/{eventID}/feedback": {
            "get": {"produces": ["application/json"], "tags": ["feedback"], "summary": "List feedback for an event",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["feedback"], "summary": "Rate an event",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LeaveFeedbackRequest"}}
                ],
                "responses": {"200": {"description": "Stored feedback", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        },
        "/events/{eventID}/feedback/summary": {
            "get": {"produces": ["application/json"], "tags": ["feedback"], "summary": "Rating summary for an event",
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}}
        }
    },
    "definitions": {
        "helpers.APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "helpers.APIResponse": {"type": "object", "properties": {"data": {}, "error": {"$ref": "#/definitions/helpers.APIError"}}},
        "controllers.CreateEventRequest": {"type": "object", "properties": {
            "title": {"type": "string"}, "description": {"type": "string"}, "city": {"type": "string"}, "place": {"type": "string"},
            "start_at": {"type": "string"}, "end_at": {"type": "string"}, "capacity": {"type": "integer"},
            "tags": {"type": "array", "items": {"type": "string"}}}},
        "controllers.UpdateCapacityRequest": {"type": "object", "properties": {"capacity": {"type": "integer"}}},
        "controllers.LeaveFeedbackRequest": {"type": "object", "properties": {"rating": {"type": "integer"}, "text": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "EventHub API",
	Description:      "Event registration service: capacity-bounded tickets, check-ins and feedback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
