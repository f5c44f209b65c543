// Package docs holds the OpenAPI description served at /swagger.
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
        "/api/v1/sessions": {
            "post": {
                "description": "Schedules a session. Without questions they are drafted from the resume.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Create an interview session",
                "parameters": [
                    {
                        "description": "Session",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.CreateSessionRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.SessionResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/api/v1/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Get a session",
                "parameters": [
                    {"type": "integer", "description": "Session ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/api/v1/sessions/{id}/end": {
            "post": {
                "description": "Completes the session, writes its transcript and starts closeout",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "End a session",
                "parameters": [
                    {"type": "integer", "description": "Session ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.EndSessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/api/v1/sessions/{id}/merge/{kind}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Media"],
                "summary": "Merge the chunks of a session",
                "parameters": [
                    {"type": "integer", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "audio or video", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.TaskResponse"}}
                }
            }
        },
        "/api/v1/sessions/{id}/evaluate": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Evaluations"],
                "summary": "Evaluate a completed session",
                "parameters": [
                    {"type": "integer", "description": "Session ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.EvaluationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/api/v1/media/chunks": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Media"],
                "summary": "Upload a recorded chunk",
                "parameters": [
                    {"type": "integer", "description": "Session ID", "name": "session_id", "in": "formData", "required": true},
                    {"type": "integer", "description": "Question index", "name": "question_index", "in": "formData", "required": true},
                    {"type": "integer", "description": "Chunk index", "name": "chunk_index", "in": "formData", "required": true},
                    {"type": "string", "description": "audio, video or text", "name": "kind", "in": "formData", "required": true},
                    {"type": "file", "description": "Chunk payload", "name": "chunk", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.ChunkResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/api/v1/evaluations/{id}/report": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Evaluations"],
                "summary": "Download the report of an evaluation",
                "parameters": [
                    {"type": "integer", "description": "Evaluation ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/api/v1/admin/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Session and evaluation statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DashboardResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.QuestionInput": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "competency": {"type": "string"},
                "content": {"type": "string"}
            }
        },
        "dto.CreateSessionRequest": {
            "type": "object",
            "required": ["candidate_name", "interviewer_id"],
            "properties": {
                "candidate_name": {"type": "string", "maxLength": 200},
                "candidate_resume": {"type": "string"},
                "interviewer_id": {"type": "integer", "minimum": 1},
                "questions": {"type": "array", "maxItems": 20, "items": {"$ref": "#/definitions/dto.QuestionInput"}}
            }
        },
        "dto.SessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "candidate_name": {"type": "string"},
                "candidate_resume": {"type": "string"},
                "interviewer_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["scheduled", "in_progress", "completed", "evaluated", "cancelled"]},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "video_path": {"type": "string"},
                "audio_path": {"type": "string"},
                "stt_path": {"type": "string"},
                "questions": {"type": "array", "items": {"type": "object"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.EndSessionResponse": {
            "type": "object",
            "properties": {
                "session": {"$ref": "#/definitions/dto.SessionResponse"},
                "stt_path": {"type": "string"},
                "closeout_id": {"type": "string"}
            }
        },
        "dto.ChunkResponse": {
            "type": "object",
            "properties": {
                "location": {"type": "string"},
                "transcript": {"type": "string"}
            }
        },
        "dto.TaskResponse": {
            "type": "object",
            "properties": {
                "task": {"type": "object"}
            }
        },
        "dto.EvaluationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "session_id": {"type": "integer"},
                "total_score": {"type": "number"},
                "verbal_score": {"type": "number"},
                "nonverbal_score": {"type": "number"},
                "detailed_scores": {"type": "object"},
                "feedback": {"type": "string"},
                "report_url": {"type": "string"}
            }
        },
        "dto.DashboardResponse": {
            "type": "object",
            "properties": {
                "sessions": {"type": "object", "additionalProperties": {"type": "integer"}},
                "evaluations": {"type": "integer"},
                "average_score": {"type": "number"},
                "recent_sessions": {"type": "array", "items": {"$ref": "#/definitions/dto.SessionResponse"}}
            }
        },
        "errors.APIError": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "request_id": {"type": "string"}
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
	Title:            "Interview Capture API",
	Description:      "Records interview sessions chunk by chunk, transcribes them and scores the candidate.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
