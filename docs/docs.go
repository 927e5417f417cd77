// Package docs registers the order-service OpenAPI document with swag.
// The document is maintained by hand; keep it in step with the @Router
// annotations in cmd/order-service/handlers.go.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/orders": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Create order",
                "parameters": [
                    {"description": "order payload", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.CreateResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/order.StockErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/orders/all": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List all orders",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}}}
            }
        },
        "/orders/my-orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List caller's orders",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}}}
            }
        },
        "/orders/delivery/my-deliveries": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["delivery"],
                "summary": "List orders assigned to the caller",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}}}
            }
        },
        "/orders/manager/pending": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["delivery"],
                "summary": "List confirmed orders awaiting a delivery man",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}}}
            }
        },
        "/orders/manager/delivery-man/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["delivery"],
                "summary": "List orders of one delivery man",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get order",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Delete order, restoring stock unless cancelled",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.DeleteResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/orders/{id}/items": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get order items",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Item"}}}}
            }
        },
        "/orders/{id}/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get order status (cached)",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/order.StatusView"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Change order status",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"description": "target status", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.StatusResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/orders/{id}/assign-delivery": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["delivery"],
                "summary": "Assign a delivery man",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"description": "delivery man", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.AssignDeliveryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/orders/{id}/unassign-delivery": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["delivery"],
                "summary": "Unassign the delivery man",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}}}
            }
        }
    },
    "definitions": {
        "order.CreateOrderItem": {
            "type": "object",
            "required": ["product_id", "quantity"],
            "properties": {
                "product_id": {"type": "string"},
                "quantity": {"type": "integer", "example": 2},
                "price_at_purchase": {"type": "string", "example": "249.99"}
            }
        },
        "order.CreateOrderRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "order_number": {"type": "string"},
                "total_amount": {"type": "string", "example": "499.98"},
                "tax_amount": {"type": "string"},
                "shipping_cost": {"type": "string"},
                "discount_amount": {"type": "string"},
                "shipping_address_id": {"type": "string"},
                "billing_address_id": {"type": "string"},
                "notes": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.CreateOrderItem"}}
            }
        },
        "order.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "order_number": {"type": "string"},
                "total_amount": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "assigned", "in_transit", "delivered", "cancelled"]},
                "delivery_man_id": {"type": "string"},
                "assigned_at": {"type": "string"},
                "tracking_number": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "order.Item": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "order_id": {"type": "string"},
                "product_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "price_at_purchase": {"type": "string"}
            }
        },
        "order.StockIssue": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "product_name": {"type": "string"},
                "requested": {"type": "integer"},
                "available": {"type": "integer"},
                "issue": {"type": "string"}
            }
        },
        "order.LowStockWarning": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "product_name": {"type": "string"},
                "remaining_after_order": {"type": "integer"}
            }
        },
        "order.CreateResult": {
            "type": "object",
            "properties": {
                "order": {"$ref": "#/definitions/order.Order"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.Item"}},
                "low_stock_warnings": {"type": "array", "items": {"$ref": "#/definitions/order.LowStockWarning"}}
            }
        },
        "order.StockErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "stock_issues": {"type": "array", "items": {"$ref": "#/definitions/order.StockIssue"}}
            }
        },
        "order.UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "example": "confirmed"},
                "tracking_number": {"type": "string"}
            }
        },
        "order.StatusResult": {
            "type": "object",
            "properties": {
                "order": {"$ref": "#/definitions/order.Order"},
                "stock_restored": {"type": "boolean"}
            }
        },
        "order.StatusView": {
            "type": "object",
            "properties": {
                "order_id": {"type": "string"},
                "status": {"type": "string"},
                "user_id": {"type": "string"},
                "delivery_man_id": {"type": "string"}
            }
        },
        "order.DeleteResult": {
            "type": "object",
            "properties": {
                "deleted": {"type": "boolean"},
                "stock_restored": {"type": "boolean"}
            }
        },
        "order.AssignDeliveryRequest": {
            "type": "object",
            "required": ["delivery_man_id"],
            "properties": {"delivery_man_id": {"type": "string"}}
        },
        "product.HTTPError": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "not found"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Gemstone Orders API",
	Description:      "Order lifecycle and inventory consistency service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
