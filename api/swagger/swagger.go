package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FitDesk Trainer API",
        "description": "Schedule optimization service for fitness trainers",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Trainer authentication"},
        {"name": "Booking Requests", "description": "Client booking request intake"},
        {"name": "Preferences", "description": "Trainer scheduling preferences"},
        {"name": "Scheduler", "description": "Schedule optimization proposals"},
        {"name": "Exports", "description": "Schedule and request exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a trainer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current trainer claims",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/booking-requests": {
            "get": {
                "tags": ["Booking Requests"],
                "summary": "List booking requests",
                "parameters": [
                    {"name": "trainerId", "in": "query", "type": "string"},
                    {"name": "clientId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Booking Requests"],
                "summary": "Submit a booking request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/booking-requests/{id}": {
            "get": {
                "tags": ["Booking Requests"],
                "summary": "Get a booking request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Booking Requests"],
                "summary": "Cancel a pending booking request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Cancelled"},
                    "409": {"description": "Not pending"}
                }
            }
        },
        "/trainers/{id}/preferences": {
            "get": {
                "tags": ["Preferences"],
                "summary": "Get scheduling preferences",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Store scheduling preferences",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertPreferenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            },
            "delete": {
                "tags": ["Preferences"],
                "summary": "Reset preferences to defaults",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Reset"}
                }
            }
        },
        "/scheduler/optimize": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate an optimized schedule proposal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OptimizeScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Proposal generated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "404": {"description": "Trainer not found"}
                }
            }
        },
        "/scheduler/proposals/{id}": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Fetch a cached proposal",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or expired"}
                }
            }
        },
        "/scheduler/apply": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Apply a cached proposal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Proposal not found or expired"}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["client_id", "trainer_id", "session_type", "duration_minutes"],
            "properties": {
                "client_id": {"type": "string"},
                "trainer_id": {"type": "string"},
                "session_type": {"type": "string"},
                "location_type": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "preferred_windows": {"type": "array", "items": {"$ref": "#/definitions/TimeWindow"}},
                "avoid_windows": {"type": "array", "items": {"$ref": "#/definitions/TimeWindow"}},
                "allow_weekend": {"type": "boolean"},
                "allow_evening": {"type": "boolean"},
                "is_recurring": {"type": "boolean"},
                "recurrence_pattern": {"type": "string"},
                "special_requests": {"type": "string"}
            }
        },
        "TimeWindow": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "12:00"}
            }
        },
        "UpsertPreferenceRequest": {
            "type": "object",
            "required": ["work_start", "work_end"],
            "properties": {
                "max_sessions_per_day": {"type": "integer"},
                "min_break_minutes": {"type": "integer"},
                "prefer_consecutive": {"type": "boolean"},
                "work_start": {"type": "string", "example": "08:00"},
                "work_end": {"type": "string", "example": "18:00"},
                "days_off": {"type": "array", "items": {"type": "integer"}},
                "preferred_blocks": {"type": "array", "items": {"type": "string"}},
                "prioritize_recurring": {"type": "boolean"},
                "prioritize_high_value": {"type": "boolean"}
            }
        },
        "OptimizeScheduleRequest": {
            "type": "object",
            "required": ["trainer_id"],
            "properties": {
                "trainer_id": {"type": "string"},
                "start_date": {"type": "string", "example": "2026-09-01"},
                "end_date": {"type": "string", "example": "2026-09-07"},
                "max_results": {"type": "integer"}
            }
        },
        "ApplyScheduleRequest": {
            "type": "object",
            "required": ["proposal_id"],
            "properties": {
                "proposal_id": {"type": "string"}
            }
        },
        "CreateExportRequest": {
            "type": "object",
            "required": ["trainer_id", "kind", "format"],
            "properties": {
                "trainer_id": {"type": "string"},
                "kind": {"type": "string", "enum": ["schedule", "requests"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"}
            }
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
