package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/assignments": {
            "get": {
                "tags": ["assignments"],
                "summary": "List grouped assignments",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "mode", "type": "string", "enum": ["date", "course"], "description": "Grouping mode"}
                ],
                "responses": {
                    "200": {"description": "Grouped assignments", "schema": {"$ref": "#/definitions/GroupedAssignments"}},
                    "400": {"description": "Invalid mode", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/assignments/refresh": {
            "post": {
                "tags": ["assignments"],
                "summary": "Refetch assignments from every institution",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Grouped assignments", "schema": {"$ref": "#/definitions/GroupedAssignments"}},
                    "401": {"description": "Canvas rejected the token", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Unknown institution prefix", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Superseded by a newer refresh", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Canvas request failed", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/assignments.ics": {
            "get": {
                "tags": ["assignments"],
                "summary": "Visible assignments as an iCalendar feed",
                "produces": ["text/calendar"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "iCalendar feed"}
                }
            }
        },
        "/widget": {
            "get": {
                "tags": ["widget"],
                "summary": "Compact list of the next upcoming assignments",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "limit", "type": "integer", "description": "Maximum number of assignments"}
                ],
                "responses": {
                    "200": {"description": "Widget snapshot"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["courses"],
                "summary": "List registered courses in display order",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Courses", "schema": {"type": "array", "items": {"$ref": "#/definitions/Course"}}}
                }
            },
            "post": {
                "tags": ["courses"],
                "summary": "Register a course",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Course"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Course code already registered", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["courses"],
                "summary": "Remove every course",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Removed"}
                }
            }
        },
        "/courses/{code}": {
            "put": {
                "tags": ["courses"],
                "summary": "Edit a course",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "code", "type": "integer", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/UpdateCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Course"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["courses"],
                "summary": "Remove a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "code", "type": "integer", "required": true}
                ],
                "responses": {
                    "204": {"description": "Removed"},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/courses/move": {
            "post": {
                "tags": ["courses"],
                "summary": "Move a course to a new position",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/MoveCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Courses in their new order", "schema": {"type": "array", "items": {"$ref": "#/definitions/Course"}}},
                    "400": {"description": "Index out of range", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/courses/import": {
            "post": {
                "tags": ["courses"],
                "summary": "Import courses from every institution",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "request", "schema": {"$ref": "#/definitions/ImportCoursesRequest"}}
                ],
                "responses": {
                    "200": {"description": "Import result"},
                    "502": {"description": "Canvas request failed", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/hidden": {
            "get": {
                "tags": ["hidden"],
                "summary": "List hidden assignments",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Hidden assignments"}
                }
            },
            "post": {
                "tags": ["hidden"],
                "summary": "Hide a current assignment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/HideRequest"}}
                ],
                "responses": {
                    "201": {"description": "Hidden"},
                    "404": {"description": "Not in the current list", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["hidden"],
                "summary": "Unhide everything",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Cleared"}
                }
            }
        },
        "/hidden/{index}": {
            "delete": {
                "tags": ["hidden"],
                "summary": "Unhide the assignment at an index of the hidden list",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "index", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "Unhidden"},
                    "400": {"description": "Index out of range", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/profile/image": {
            "get": {
                "tags": ["profile"],
                "summary": "Stored profile picture",
                "produces": ["application/octet-stream"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Image bytes"},
                    "404": {"description": "No image stored"}
                }
            }
        },
        "/profile/refresh": {
            "post": {
                "tags": ["profile"],
                "summary": "Refetch the profile and its picture",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile"}
                }
            }
        }
    },
    "definitions": {
        "Color": {
            "type": "object",
            "properties": {
                "r": {"type": "number"},
                "g": {"type": "number"},
                "b": {"type": "number"},
                "a": {"type": "number"}
            }
        },
        "Course": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "name": {"type": "string"},
                "teacher": {"type": "string"},
                "order": {"type": "integer"},
                "color": {"$ref": "#/definitions/Color"}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "required": ["code", "name"],
            "properties": {
                "code": {"type": "integer"},
                "name": {"type": "string"},
                "teacher": {"type": "string"},
                "color": {"$ref": "#/definitions/Color"}
            }
        },
        "UpdateCourseRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "teacher": {"type": "string"},
                "color": {"$ref": "#/definitions/Color"}
            }
        },
        "MoveCourseRequest": {
            "type": "object",
            "properties": {
                "from": {"type": "integer"},
                "to": {"type": "integer"}
            }
        },
        "ImportCoursesRequest": {
            "type": "object",
            "properties": {
                "favorites_only": {"type": "boolean"},
                "current_term_only": {"type": "boolean"}
            }
        },
        "HideRequest": {
            "type": "object",
            "required": ["name", "url"],
            "properties": {
                "name": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "GroupedAssignments": {
            "type": "object",
            "properties": {
                "mode": {"type": "string"},
                "groups": {"type": "array", "items": {"type": "object"}}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and a token from 'acrylic token issue'"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Acrylic API",
	Description:      "Canvas assignment tracker shared by the app and widget surfaces",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
