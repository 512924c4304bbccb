package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "NoteHub API",
        "description": "Academic resource sharing backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Profile", "description": "Caller profile management"},
        {"name": "Resources", "description": "Resource upload, browsing and files"},
        {"name": "Reviews", "description": "Resource ratings and comments"}
    ],
    "paths": {
        "/profile": {
            "post": {
                "tags": ["Profile"],
                "summary": "Register the caller's profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProfileRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Profile"],
                "summary": "Get the caller's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Profile"],
                "summary": "Update the caller's profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Profile"],
                "summary": "Delete the caller's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources": {
            "post": {
                "tags": ["Resources"],
                "summary": "Upload a resource with its file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "title", "in": "formData", "required": true, "type": "string"},
                    {"name": "subject", "in": "formData", "required": true, "type": "string"},
                    {"name": "branch", "in": "formData", "type": "string"},
                    {"name": "semester", "in": "formData", "required": true, "type": "integer"},
                    {"name": "year", "in": "formData", "required": true, "type": "integer"},
                    {"name": "resource_type", "in": "formData", "required": true, "type": "string"},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "tags", "in": "formData", "type": "string"},
                    {"name": "privacy", "in": "formData", "type": "string", "enum": ["Public", "Private"]},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/mine": {
            "get": {
                "tags": ["Resources"],
                "summary": "List the caller's uploads",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/mine/export": {
            "get": {
                "tags": ["Resources"],
                "summary": "Export the caller's uploads as CSV or PDF",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/resources/browse": {
            "get": {
                "tags": ["Resources"],
                "summary": "Browse resources visible to the caller",
                "parameters": [
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "branch", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "privacy", "in": "query", "type": "string", "enum": ["Public", "Private"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["latest", "popular", "rated"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Profile required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/{id}": {
            "get": {
                "tags": ["Resources"],
                "summary": "Get one resource's metadata",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Resources"],
                "summary": "Update resource metadata",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateResourceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Resources"],
                "summary": "Delete a resource and its stored file",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/resources/{id}/download": {
            "get": {
                "tags": ["Resources"],
                "summary": "Download the stored file",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/resources/{id}/view": {
            "get": {
                "tags": ["Resources"],
                "summary": "Stream the stored file for inline display",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/resources/{id}/reviews": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Add or replace the caller's review of a resource",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Reviews"],
                "summary": "List reviews of a resource",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Profile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "uid": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "college": {"type": "string"},
                "branch": {"type": "string"},
                "semester": {"type": "integer"},
                "bio": {"type": "string"},
                "avatarUrl": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "Resource": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "subject": {"type": "string"},
                "branch": {"type": "string"},
                "semester": {"type": "integer"},
                "year": {"type": "integer"},
                "resourceType": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "privacy": {"type": "string"},
                "uploaderUid": {"type": "string"},
                "uploaderName": {"type": "string"},
                "uploaderCollege": {"type": "string"},
                "fileName": {"type": "string"},
                "fileSize": {"type": "integer"},
                "mimeType": {"type": "string"},
                "views": {"type": "integer"},
                "downloads": {"type": "integer"},
                "avgRating": {"type": "number"},
                "ratingCount": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "Review": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "resourceId": {"type": "string"},
                "reviewerUid": {"type": "string"},
                "reviewerName": {"type": "string"},
                "rating": {"type": "number"},
                "comment": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "CreateProfileRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "college": {"type": "string"},
                "branch": {"type": "string"},
                "semester": {"type": "integer"},
                "bio": {"type": "string"},
                "avatar": {"type": "string"}
            },
            "required": ["name", "email", "college", "branch", "semester"]
        },
        "UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "college": {"type": "string"},
                "branch": {"type": "string"},
                "semester": {"type": "integer"},
                "bio": {"type": "string"},
                "avatar": {"type": "string"}
            },
            "required": ["name", "email", "college", "branch", "semester"]
        },
        "UpdateResourceRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "subject": {"type": "string"},
                "branch": {"type": "string"},
                "semester": {"type": "integer"},
                "year": {"type": "integer"},
                "resource_type": {"type": "string"},
                "description": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "privacy": {"type": "string"}
            }
        },
        "SubmitReviewRequest": {
            "type": "object",
            "properties": {
                "rating": {"type": "number", "minimum": 1, "maximum": 5},
                "comment": {"type": "string"}
            },
            "required": ["rating"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
