package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ScholarFlow API",
        "description": "Medical leave document intake and substitute matching for schools",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Licenses", "description": "Medical leave document intake"},
        {"name": "Professors", "description": "Professor roster and availability"},
        {"name": "Organizations", "description": "Tenant organizations"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/organizations": {
            "get": {
                "tags": ["Organizations"],
                "summary": "List organizations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Organizations"],
                "summary": "Create organization",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOrganizationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}": {
            "get": {
                "tags": ["Organizations"],
                "summary": "Get organization",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/licenses/extract": {
            "post": {
                "tags": ["Licenses"],
                "summary": "Extract leave fields from an uploaded document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Normalized leave record for review", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unsupported file format"},
                    "422": {"description": "Required field missing or invalid"}
                }
            }
        },
        "/organizations/{orgId}/licenses": {
            "get": {
                "tags": ["Licenses"],
                "summary": "List leave records",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "national_id", "in": "query", "type": "string"},
                    {"name": "unresolved", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Licenses"],
                "summary": "Persist a reviewed leave record and run substitute matching",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Stored record plus match outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Required field missing or invalid"}
                }
            }
        },
        "/organizations/{orgId}/licenses/{id}": {
            "get": {
                "tags": ["Licenses"],
                "summary": "Get leave record",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Licenses"],
                "summary": "Apply reviewed corrections",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLeaveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/licenses/export": {
            "get": {
                "tags": ["Licenses"],
                "summary": "Export the leave register as CSV or PDF",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Signed download metadata", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Licenses"],
                "summary": "Download a generated export via signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "404": {"description": "Invalid or expired token"}
                }
            }
        },
        "/organizations/{orgId}/professors": {
            "get": {
                "tags": ["Professors"],
                "summary": "List professors",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "available", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Professors"],
                "summary": "Register professor",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProfessorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "National id already registered"}
                }
            }
        },
        "/organizations/{orgId}/professors/{id}": {
            "get": {
                "tags": ["Professors"],
                "summary": "Get professor",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Professors"],
                "summary": "Update professor",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfessorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/organizations/{orgId}/professors/{id}/availability": {
            "put": {
                "tags": ["Professors"],
                "summary": "Toggle professor availability",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LeaveRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "organization_id": {"type": "string"},
                "professor_name": {"type": "string"},
                "professor_id": {"type": "string"},
                "diagnosis_code": {"type": "string"},
                "rest_days": {"type": "integer"},
                "start_date": {"type": "string", "description": "ISO date when resolved, otherwise the raw extracted text"},
                "end_date": {"type": "string", "description": "ISO date when resolved, otherwise the raw extracted text"},
                "issuer": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "MatchResult": {
            "type": "object",
            "properties": {
                "ran": {"type": "boolean"},
                "candidates": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/MatchCandidate"}
                }
            }
        },
        "MatchCandidate": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "full_name": {"type": "string"},
                "phone": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Professor": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "organization_id": {"type": "string"},
                "full_name": {"type": "string"},
                "national_id": {"type": "string"},
                "phone": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "is_available": {"type": "boolean"},
                "contract_hours": {"type": "number"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "UpdateLeaveRequest": {
            "type": "object",
            "properties": {
                "professor_name": {"type": "string"},
                "professor_id": {"type": "string"},
                "diagnosis_code": {"type": "string"},
                "rest_days": {"type": "integer"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "issuer": {"type": "string"}
            },
            "required": ["professor_name", "professor_id", "rest_days", "start_date", "end_date", "issuer"]
        },
        "CreateProfessorRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "national_id": {"type": "string"},
                "phone": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "is_available": {"type": "boolean"},
                "contract_hours": {"type": "number"}
            },
            "required": ["full_name", "national_id"]
        },
        "UpdateProfessorRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "national_id": {"type": "string"},
                "phone": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "is_available": {"type": "boolean"},
                "contract_hours": {"type": "number"}
            },
            "required": ["full_name", "national_id"]
        },
        "AvailabilityRequest": {
            "type": "object",
            "properties": {
                "is_available": {"type": "boolean"}
            },
            "required": ["is_available"]
        },
        "CreateOrganizationRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            },
            "required": ["name"]
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
                "status": {"type": "integer"},
                "field": {"type": "string"}
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
