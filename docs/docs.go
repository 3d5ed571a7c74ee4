package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Состояние сервиса и адресного хранилища",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "503": {"description": "Degraded", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}}
                }
            }
        },
        "/api/v1/departures": {
            "get": {
                "produces": ["application/json", "application/xml"],
                "tags": ["Departures"],
                "summary": "Отправления по тексту или координатам",
                "parameters": [
                    {"type": "string", "description": "Адрес в свободной форме с почтовым индексом", "name": "q", "in": "query"},
                    {"type": "number", "description": "Широта", "name": "lat", "in": "query"},
                    {"type": "number", "description": "Долгота", "name": "lon", "in": "query"},
                    {"type": "integer", "default": 3, "description": "Максимум остановок", "name": "stops", "in": "query"},
                    {"type": "integer", "default": 3, "description": "Максимум отправлений на остановку", "name": "departures", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DeparturesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json", "application/xml"],
                "tags": ["Departures"],
                "summary": "Отправления для адреса или координат",
                "parameters": [
                    {"description": "Адрес, ID адреса, текст или координаты", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.DeparturesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DeparturesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/providers": {
            "get": {
                "produces": ["application/json", "application/xml"],
                "tags": ["Departures"],
                "summary": "Загруженные провайдеры",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProvidersResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.DeparturesRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "integer"},
                "street": {"type": "string"},
                "houseNumber": {"type": "string"},
                "zipCode": {"type": "string"},
                "city": {"type": "string"},
                "district": {"type": "string"},
                "text": {"type": "string"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "stops": {"type": "integer"},
                "departures": {"type": "integer"}
            }
        },
        "dto.DeparturesResponse": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "stops": {"type": "array", "items": {"$ref": "#/definitions/dto.StopDTO"}}
            }
        },
        "dto.StopDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "geo": {"type": "array", "items": {"type": "number"}},
                "departures": {"type": "array", "items": {"$ref": "#/definitions/dto.StopEventDTO"}}
            }
        },
        "dto.StopEventDTO": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "line": {"type": "string"},
                "destination": {"type": "string"},
                "scheduled": {"type": "string", "format": "date-time"},
                "estimated": {"type": "string", "format": "date-time", "x-nullable": true}
            }
        },
        "dto.ProvidersResponse": {
            "type": "object",
            "properties": {
                "fallback": {"type": "string"},
                "providers": {"type": "array", "items": {"$ref": "#/definitions/dto.ProviderDTO"}}
            }
        },
        "dto.ProviderDTO": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "utils.SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "total": {"type": "integer"},
                        "time_ms": {"type": "number"}
                    }
                }
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/errors.AppError"}
            }
        },
        "errors.AppError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "LPT Gateway API",
	Description:      "Unified local public transport departures",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
