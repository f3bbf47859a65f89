// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go -o internal/docs`.
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
        "/transactions": {
            "get": {"tags": ["transactions"], "summary": "Get user transactions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Paginated transactions"}}},
            "post": {"tags": ["transactions"], "summary": "Create a transaction", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Transaction created"}}}
        },
        "/transactions/{id}": {
            "get": {"tags": ["transactions"], "summary": "Get transaction by ID", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Transaction details"}}},
            "put": {"tags": ["transactions"], "summary": "Update transaction", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Updated transaction"}}},
            "delete": {"tags": ["transactions"], "summary": "Delete transaction", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Transaction deleted"}}}
        },
        "/budgets": {
            "get": {"tags": ["budgets"], "summary": "Get budgets", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Paginated budgets"}}},
            "post": {"tags": ["budgets"], "summary": "Create a budget", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Budget created"}}}
        },
        "/budgets/status": {
            "get": {"tags": ["budgets"], "summary": "Get budget status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Budget status"}}}
        },
        "/budgets/alerts": {
            "get": {"tags": ["budgets"], "summary": "Get budget alerts", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Triggered alerts"}}}
        },
        "/budgets/{id}": {
            "get": {"tags": ["budgets"], "summary": "Get budget by ID", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Budget details"}}},
            "put": {"tags": ["budgets"], "summary": "Update budget", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Updated budget"}}},
            "delete": {"tags": ["budgets"], "summary": "Delete budget", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Budget deleted"}}}
        },
        "/budgets/{id}/progress": {
            "get": {"tags": ["budgets"], "summary": "Get budget progress", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Budget progress"}}}
        },
        "/recurring": {
            "get": {"tags": ["recurring"], "summary": "Get recurring transactions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Paginated recurring transactions"}}},
            "post": {"tags": ["recurring"], "summary": "Create a recurring transaction", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Recurring transaction created"}}}
        },
        "/recurring/upcoming": {
            "get": {"tags": ["recurring"], "summary": "Get upcoming recurring transactions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Upcoming recurring transactions"}}}
        },
        "/recurring/{id}": {
            "get": {"tags": ["recurring"], "summary": "Get recurring transaction by ID", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Recurring transaction"}}},
            "put": {"tags": ["recurring"], "summary": "Update recurring transaction", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Updated recurring transaction"}}},
            "delete": {"tags": ["recurring"], "summary": "Delete recurring transaction", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Recurring transaction deleted"}}}
        },
        "/recurring/{id}/execute": {
            "post": {"tags": ["recurring"], "summary": "Execute recurring transaction now", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Execution result"}}}
        },
        "/goals": {
            "get": {"tags": ["goals"], "summary": "Get goals", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Paginated goals"}}},
            "post": {"tags": ["goals"], "summary": "Create a goal", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Goal created"}}}
        },
        "/goals/stats": {
            "get": {"tags": ["goals"], "summary": "Get goal statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Goal statistics"}}}
        },
        "/goals/{id}": {
            "get": {"tags": ["goals"], "summary": "Get goal by ID", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Goal"}}},
            "put": {"tags": ["goals"], "summary": "Update goal", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Updated goal"}}},
            "delete": {"tags": ["goals"], "summary": "Delete goal", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Goal deleted"}}}
        },
        "/goals/{id}/add": {
            "post": {"tags": ["goals"], "summary": "Contribute to goal", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Updated goal"}}}
        },
        "/notifications": {
            "get": {"tags": ["notifications"], "summary": "Get notifications", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Notification feed"}}}
        },
        "/pipeline/recurring/execute": {
            "post": {"tags": ["pipeline"], "summary": "Execute due recurring transactions", "parameters": [{"type": "string", "name": "X-API-Key", "in": "header", "required": true}], "responses": {"200": {"description": "Per-rule outcomes"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Finman API",
	Description:      "Finman tracks income and expenses, runs recurring transactions on a schedule and alerts when budgets run hot.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
