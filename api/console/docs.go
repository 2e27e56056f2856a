// Package console holds the OpenAPI document served at /swagger/. It is
// produced by swag from the annotations in internal/console/http; regenerate
// with:
//
//	swag init -g router.go -d internal/console/http,pkg/consolesdk -o api/console --outputTypes go
package console

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/specter"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Health Check Endpoint",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.HealthResponse"
                        }
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Readiness Check Endpoint",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.HealthResponse"
                        }
                    }
                }
            }
        },
        "/v1/audiences": {
            "get": {
                "tags": [
                    "Audiences"
                ],
                "summary": "Audience Availability",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Identity; defaults to the active token's",
                        "name": "upn",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.AudiencesResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "no_active_context",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/audiences/resolve": {
            "post": {
                "tags": [
                    "Audiences"
                ],
                "summary": "Resolve Token",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Audience, optional UPN",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/consolesdk.ResolveRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.ResolveResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "no_active_context, no_refresh_token, cross_identity_tokens_available",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "502": {
                        "description": "exchange_failed, invalid_token_received",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "504": {
                        "description": "upstream_timeout",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/cache": {
            "delete": {
                "tags": [
                    "Graph"
                ],
                "summary": "Clear Response Cache",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Identity",
                        "name": "upn",
                        "in": "query"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/clients": {
            "get": {
                "tags": [
                    "Clients"
                ],
                "summary": "List Clients",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "boolean",
                        "description": "Only FOCI members",
                        "name": "foci",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.ListClientsResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/graph/me": {
            "get": {
                "tags": [
                    "Graph"
                ],
                "summary": "Graph /me",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Identity; defaults to the active token's",
                        "name": "upn",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "no_active_context, no_refresh_token",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "502": {
                        "description": "exchange_failed, upstream_error",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/operators/me/api-key": {
            "post": {
                "tags": [
                    "Operators"
                ],
                "summary": "Rotate API Key",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIKeyResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/operators/me/totp/enroll": {
            "post": {
                "tags": [
                    "Operators"
                ],
                "summary": "Enroll TOTP",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.TOTPEnrollResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "TOTP already enabled",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/operators/me/totp/verify": {
            "post": {
                "tags": [
                    "Operators"
                ],
                "summary": "Verify TOTP",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Six digit code",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/consolesdk.TOTPVerifyRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "400": {
                        "description": "invalid code",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "not enrolled or already enabled",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/refresh/stats": {
            "get": {
                "tags": [
                    "Refresh Tokens"
                ],
                "summary": "Refresh Token Statistics",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.RefreshStats"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/refresh/{id}/foci-targets": {
            "get": {
                "tags": [
                    "Refresh Tokens"
                ],
                "summary": "FOCI Targets",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Refresh token ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.FOCITargetsResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "400": {
                        "description": "not_refresh_token",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "client_not_in_family",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/refresh/{id}/use": {
            "post": {
                "tags": [
                    "Refresh Tokens"
                ],
                "summary": "Use Refresh Token",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Refresh token ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Target client and scope",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/consolesdk.UseRefreshRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.UseRefreshResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "400": {
                        "description": "not_refresh_token",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "404": {
                        "description": "not_found",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "client_not_in_family",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "502": {
                        "description": "exchange_failed, invalid_token_received",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/scheduler/config": {
            "put": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Update Scheduler Config",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Fields to change",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/consolesdk.SchedulerConfigRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.SchedulerStatus"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "400": {
                        "description": "invalid_request",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/scheduler/expiring": {
            "get": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Expiring Tokens",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Window; defaults to the configured threshold",
                        "name": "minutes",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.ExpiringResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/scheduler/history": {
            "get": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Scheduler History",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Maximum events (default 20, max 100)",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.SchedulerHistoryResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/scheduler/start": {
            "post": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Start Scheduler",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.SchedulerStatus"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "scheduler_state",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/scheduler/status": {
            "get": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Scheduler Status",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.SchedulerStatus"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/scheduler/stop": {
            "post": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Stop Scheduler",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.SchedulerStatus"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "409": {
                        "description": "scheduler_state",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/scheduler/trigger": {
            "post": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Run Check Now",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.TickReport"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens": {
            "get": {
                "tags": [
                    "Tokens"
                ],
                "summary": "List Tokens",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "access_token, refresh_token or ngc_token",
                        "name": "kind",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Identity filter",
                        "name": "upn",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Audience substring",
                        "name": "audience",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Client ID filter",
                        "name": "client_id",
                        "in": "query"
                    },
                    {
                        "type": "boolean",
                        "description": "Only the active token",
                        "name": "active_only",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Maximum results",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.ListTokensResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "400": {
                        "description": "invalid_request",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens/active": {
            "get": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Get Active Token",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.Token"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "404": {
                        "description": "no token is active",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens/expired": {
            "delete": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Delete Expired Tokens",
                "produces": [
                    "application/json"
                ],
                "description": "Removes expired access tokens. Tokens still carrying a refresh token are kept.",
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.DeleteExpiredResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens/import": {
            "post": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Import Broker Export",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Recorded as the import source",
                        "name": "filename",
                        "in": "query"
                    },
                    {
                        "description": "Broker export: {metadata, tokens}",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.ImportResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "400": {
                        "description": "invalid_request",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens/import-jwt": {
            "post": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Import Access Token",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Access token and optional refresh token",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/consolesdk.ImportJWTRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.Token"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "400": {
                        "description": "invalid_request",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens/import-refresh": {
            "post": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Import Refresh Token",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Refresh token, client ID, UPN",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/consolesdk.ImportRefreshRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.Token"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "400": {
                        "description": "invalid_request",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens/stats": {
            "get": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Token Statistics",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.TokenStats"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens/{id}": {
            "get": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Get Token",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Token ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "boolean",
                        "description": "Reveal the full secret and embedded refresh token",
                        "name": "full",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.Token"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "404": {
                        "description": "not_found",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Delete Token",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Token ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "404": {
                        "description": "not_found",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/tokens/{id}/activate": {
            "post": {
                "tags": [
                    "Tokens"
                ],
                "summary": "Activate Token",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "APIKeyAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Token ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.Token"
                        }
                    },
                    "401": {
                        "description": "unauthorized, otp_required",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    },
                    "404": {
                        "description": "not_found",
                        "schema": {
                            "$ref": "#/definitions/consolesdk.APIError"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "consolesdk.APIError": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "error_description": {
                    "type": "string"
                },
                "candidates": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/consolesdk.Candidate"
                    }
                },
                "provider_error": {
                    "type": "string"
                },
                "provider_error_description": {
                    "type": "string"
                },
                "provider_status": {
                    "type": "integer"
                },
                "error_codes": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "consolesdk.APIKeyResponse": {
            "type": "object",
            "properties": {
                "api_key": {
                    "type": "string"
                }
            }
        },
        "consolesdk.AudienceStatus": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "resource": {
                    "type": "string"
                },
                "available": {
                    "type": "boolean"
                },
                "token_id": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "consolesdk.AudiencesResponse": {
            "type": "object",
            "properties": {
                "upn": {
                    "type": "string"
                },
                "foci_available": {
                    "type": "boolean"
                },
                "audiences": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/consolesdk.AudienceStatus"
                    }
                }
            }
        },
        "consolesdk.Candidate": {
            "type": "object",
            "properties": {
                "upn": {
                    "type": "string"
                },
                "token_id": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "consolesdk.ClientInfo": {
            "type": "object",
            "properties": {
                "client_id": {
                    "type": "string"
                },
                "display_name": {
                    "type": "string"
                },
                "foci": {
                    "type": "boolean"
                }
            }
        },
        "consolesdk.DeleteExpiredResponse": {
            "type": "object",
            "properties": {
                "deleted": {
                    "type": "integer"
                }
            }
        },
        "consolesdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "error_description": {
                    "type": "string"
                }
            }
        },
        "consolesdk.ExpiringResponse": {
            "type": "object",
            "properties": {
                "threshold_minutes": {
                    "type": "number"
                },
                "tokens": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/consolesdk.Token"
                    }
                }
            }
        },
        "consolesdk.FOCITarget": {
            "type": "object",
            "properties": {
                "client_id": {
                    "type": "string"
                },
                "display_name": {
                    "type": "string"
                },
                "is_current": {
                    "type": "boolean"
                }
            }
        },
        "consolesdk.FOCITargetsResponse": {
            "type": "object",
            "properties": {
                "token_id": {
                    "type": "string"
                },
                "targets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/consolesdk.FOCITarget"
                    }
                }
            }
        },
        "consolesdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {
                    "type": "string"
                },
                "scheduler": {
                    "type": "string"
                }
            }
        },
        "consolesdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "uptime": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                },
                "checks": {
                    "$ref": "#/definitions/consolesdk.HealthChecks"
                }
            }
        },
        "consolesdk.ImportJWTRequest": {
            "type": "object",
            "properties": {
                "access_token": {
                    "type": "string"
                },
                "refresh_token": {
                    "type": "string"
                },
                "client_id": {
                    "type": "string"
                },
                "activate": {
                    "type": "boolean"
                }
            }
        },
        "consolesdk.ImportRefreshRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {
                    "type": "string"
                },
                "client_id": {
                    "type": "string"
                },
                "upn": {
                    "type": "string"
                },
                "tenant_id": {
                    "type": "string"
                },
                "is_prt_bound": {
                    "type": "boolean"
                }
            }
        },
        "consolesdk.ImportResponse": {
            "type": "object",
            "properties": {
                "imported": {
                    "type": "integer"
                },
                "skipped": {
                    "type": "integer"
                },
                "expired": {
                    "type": "integer"
                },
                "duplicates": {
                    "type": "integer"
                },
                "by_kind": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "token_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "message": {
                    "type": "string"
                },
                "errors": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "consolesdk.ListClientsResponse": {
            "type": "object",
            "properties": {
                "clients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/consolesdk.ClientInfo"
                    }
                },
                "count": {
                    "type": "integer"
                },
                "foci_count": {
                    "type": "integer"
                }
            }
        },
        "consolesdk.ListTokensResponse": {
            "type": "object",
            "properties": {
                "tokens": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/consolesdk.Token"
                    }
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "consolesdk.RefreshResult": {
            "type": "object",
            "properties": {
                "token_id": {
                    "type": "string"
                },
                "upn": {
                    "type": "string"
                },
                "client_id": {
                    "type": "string"
                },
                "audience": {
                    "type": "string"
                },
                "rt_origin": {
                    "type": "string"
                },
                "new_token_id": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "consolesdk.RefreshStats": {
            "type": "object",
            "properties": {
                "total_refresh_tokens": {
                    "type": "integer"
                },
                "foci_refresh_tokens": {
                    "type": "integer"
                },
                "used_refresh_tokens": {
                    "type": "integer"
                },
                "unused_refresh_tokens": {
                    "type": "integer"
                }
            }
        },
        "consolesdk.ResolveRequest": {
            "type": "object",
            "properties": {
                "audience": {
                    "type": "string"
                },
                "upn": {
                    "type": "string"
                },
                "reveal": {
                    "type": "boolean"
                }
            }
        },
        "consolesdk.ResolveResponse": {
            "type": "object",
            "properties": {
                "token_id": {
                    "type": "string"
                },
                "upn": {
                    "type": "string"
                },
                "client_id": {
                    "type": "string"
                },
                "audience": {
                    "type": "string"
                },
                "access_token": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "via": {
                    "type": "string"
                }
            }
        },
        "consolesdk.SchedulerConfigRequest": {
            "type": "object",
            "properties": {
                "interval_minutes": {
                    "type": "number"
                },
                "threshold_minutes": {
                    "type": "number"
                }
            }
        },
        "consolesdk.SchedulerEvent": {
            "type": "object",
            "properties": {
                "timestamp": {
                    "type": "string",
                    "format": "date-time"
                },
                "type": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "data": {
                    "type": "object"
                }
            }
        },
        "consolesdk.SchedulerHistoryResponse": {
            "type": "object",
            "properties": {
                "events": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/consolesdk.SchedulerEvent"
                    }
                }
            }
        },
        "consolesdk.SchedulerStatus": {
            "type": "object",
            "properties": {
                "running": {
                    "type": "boolean"
                },
                "interval_minutes": {
                    "type": "number"
                },
                "threshold_minutes": {
                    "type": "number"
                },
                "last_run_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "next_run_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "last_report": {
                    "$ref": "#/definitions/consolesdk.TickReport"
                },
                "ticks": {
                    "type": "integer"
                },
                "total_refreshed": {
                    "type": "integer"
                },
                "total_failed": {
                    "type": "integer"
                }
            }
        },
        "consolesdk.TOTPEnrollResponse": {
            "type": "object",
            "properties": {
                "secret": {
                    "type": "string"
                },
                "otpauth_url": {
                    "type": "string"
                },
                "issuer": {
                    "type": "string"
                },
                "account": {
                    "type": "string"
                }
            }
        },
        "consolesdk.TOTPVerifyRequest": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                }
            }
        },
        "consolesdk.TickReport": {
            "type": "object",
            "properties": {
                "started_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "duration_ms": {
                    "type": "integer"
                },
                "candidates": {
                    "type": "integer"
                },
                "refreshed": {
                    "type": "integer"
                },
                "failed": {
                    "type": "integer"
                },
                "results": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/consolesdk.RefreshResult"
                    }
                },
                "aborted": {
                    "type": "boolean"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "consolesdk.Token": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "kind": {
                    "type": "string"
                },
                "client_id": {
                    "type": "string"
                },
                "client_name": {
                    "type": "string"
                },
                "upn": {
                    "type": "string"
                },
                "scope": {
                    "type": "string"
                },
                "audience": {
                    "type": "string"
                },
                "token": {
                    "type": "string"
                },
                "refresh_token": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "expired": {
                    "type": "boolean"
                },
                "is_active": {
                    "type": "boolean"
                },
                "source": {
                    "type": "string"
                },
                "parent_id": {
                    "type": "string"
                },
                "classification": {
                    "type": "string"
                },
                "is_prt_bound": {
                    "type": "boolean"
                },
                "display_name": {
                    "type": "string"
                },
                "source_type": {
                    "type": "string"
                },
                "cache_path": {
                    "type": "string"
                },
                "imported_from": {
                    "type": "string"
                },
                "tenant_id": {
                    "type": "string"
                },
                "metadata": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "last_used_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "consolesdk.TokenStats": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "by_kind": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "by_classification": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "expired": {
                    "type": "integer"
                },
                "refresh_used": {
                    "type": "integer"
                },
                "refresh_unused": {
                    "type": "integer"
                }
            }
        },
        "consolesdk.UseRefreshRequest": {
            "type": "object",
            "properties": {
                "client_id": {
                    "type": "string"
                },
                "scope": {
                    "type": "string"
                },
                "activate": {
                    "type": "boolean"
                }
            }
        },
        "consolesdk.UseRefreshResponse": {
            "type": "object",
            "properties": {
                "token": {
                    "$ref": "#/definitions/consolesdk.Token"
                },
                "refresh_token_rotated": {
                    "type": "boolean"
                },
                "scope": {
                    "type": "string"
                },
                "expires_in": {
                    "type": "integer"
                }
            }
        }
    },
    "securityDefinitions": {
        "APIKeyAuth": {
            "description": "Operator API key. Format: \"Bearer sk_...\". Send X-OTP as well once TOTP is enabled.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Specter Token Console API",
	Description:      "Token pool, audience resolution and FOCI exchange for captured Entra ID tokens.\n\nResponses routinely carry token material and are never cacheable.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
