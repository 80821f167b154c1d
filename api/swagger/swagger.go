package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS API",
        "description": "Course checkout, enrollment reconciliation, reminders and attendance.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Payments", "description": "Checkout orders and provider webhooks"},
        {"name": "Cron", "description": "Scheduler entry points"},
        {"name": "Catalog", "description": "Public course catalog"},
        {"name": "Dashboard", "description": "Student enrollments and attendance"},
        {"name": "Notifications", "description": "Notification bell and realtime stream"},
        {"name": "Attendance", "description": "Admin attendance marking"}
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
                    "200": {"description": "Dependencies reachable"},
                    "503": {"description": "At least one dependency failed"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/payments/razorpay/order": {
            "post": {
                "tags": ["Payments"],
                "summary": "Create a payment order",
                "description": "Converts the rupee amount to paise and opens a provider order. The caller's id and batchId travel as order notes.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "Provider order", "schema": {"$ref": "#/definitions/Order"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/FlatError"}},
                    "500": {"description": "Failed to create order", "schema": {"$ref": "#/definitions/FlatError"}}
                }
            }
        },
        "/api/payments/razorpay/webhook": {
            "post": {
                "tags": ["Payments"],
                "summary": "Receive payment provider events",
                "description": "Verifies the HMAC-SHA256 signature over the raw body, then activates the enrollment for payment.captured events.",
                "parameters": [
                    {"name": "X-Razorpay-Signature", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WebhookEvent"}}
                ],
                "responses": {
                    "200": {"description": "Acknowledged", "schema": {"$ref": "#/definitions/Ack"}},
                    "400": {"description": "Missing or invalid signature, invalid payload, missing metadata", "schema": {"$ref": "#/definitions/FlatError"}},
                    "413": {"description": "Payload too large", "schema": {"$ref": "#/definitions/FlatError"}},
                    "500": {"description": "Database update failed", "schema": {"$ref": "#/definitions/FlatError"}}
                }
            }
        },
        "/api/cron/notify-upcoming": {
            "get": {
                "tags": ["Cron"],
                "summary": "Notify students of lectures starting soon",
                "parameters": [
                    {"name": "secret", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Sweep finished", "schema": {"$ref": "#/definitions/Message"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/FlatError"}},
                    "500": {"description": "Sweep failed", "schema": {"$ref": "#/definitions/FlatError"}}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List active courses with open batches",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{slug}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get a course by slug",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/me/enrollments": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "List my enrollments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/me/attendance": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "List my attendance history",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Latest notifications and unread count",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark all notifications read",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications/stream": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Realtime notification stream",
                "description": "Server-sent events. New notifications arrive as notification events; ping events keep the connection open.",
                "produces": ["text/event-stream"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/api/v1/admin/lectures/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Lecture roster with current marks",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lecture not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Attendance"],
                "summary": "Mark attendance",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateOrderRequest": {
            "type": "object",
            "required": ["amount", "currency"],
            "properties": {
                "amount": {"type": "number", "description": "Rupees, at most two decimals"},
                "currency": {"type": "string", "example": "INR"},
                "batchId": {"type": "string"}
            }
        },
        "Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "entity": {"type": "string"},
                "amount": {"type": "integer", "description": "Paise"},
                "amount_paid": {"type": "integer"},
                "amount_due": {"type": "integer"},
                "currency": {"type": "string"},
                "receipt": {"type": "string"},
                "status": {"type": "string"},
                "attempts": {"type": "integer"},
                "notes": {"type": "object"},
                "created_at": {"type": "integer"}
            }
        },
        "WebhookEvent": {
            "type": "object",
            "properties": {
                "event": {"type": "string", "example": "payment.captured"},
                "payload": {
                    "type": "object",
                    "properties": {
                        "payment": {
                            "type": "object",
                            "properties": {
                                "entity": {
                                    "type": "object",
                                    "properties": {
                                        "id": {"type": "string"},
                                        "order_id": {"type": "string"},
                                        "amount": {"type": "integer"},
                                        "notes": {
                                            "type": "object",
                                            "description": "May arrive as an empty array when the order carried no notes",
                                            "properties": {
                                                "userId": {"type": "string"},
                                                "batchId": {"type": "string"}
                                            }
                                        }
                                    }
                                }
                            }
                        }
                    }
                }
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "required": ["marks"],
            "properties": {
                "marks": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "required": ["userId", "status"],
                        "properties": {
                            "userId": {"type": "string"},
                            "status": {"type": "string", "enum": ["PRESENT", "ABSENT"]}
                        }
                    }
                }
            }
        },
        "Ack": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"}
            }
        },
        "Message": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "FlatError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
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
