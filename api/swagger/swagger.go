package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CourtLedger API",
        "description": "Lesson credit and payment ledger for a tennis coaching roster",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Coach login"},
        {"name": "Roster", "description": "Student roster management"},
        {"name": "Attendance", "description": "Lesson credit and payment operations"},
        {"name": "Finance", "description": "Cash panel and bookkeeping"},
        {"name": "Schedule", "description": "Weekly training grid"},
        {"name": "Activity", "description": "Audit trail"},
        {"name": "Exports", "description": "Asynchronous table exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange the coach password for an access token",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Wrong password"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Roster"],
                "summary": "List students (full rows for the coach, public projection otherwise)",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Roster"],
                "summary": "Register a new student",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate name"}
                }
            }
        },
        "/students/{name}": {
            "get": {
                "tags": ["Roster"],
                "summary": "Get one student",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown student"}
                }
            },
            "patch": {
                "tags": ["Roster"],
                "summary": "Manually adjust a student row",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Roster"],
                "summary": "Remove a student",
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/students/{name}/frozen": {
            "put": {
                "tags": ["Roster"],
                "summary": "Freeze or unfreeze a student",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/students/{name}/consume": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Deduct one lesson",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "No lessons remaining"}
                }
            }
        },
        "/students/{name}/refund": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Refund one lesson",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/students/{name}/packages": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Add lessons to a student's package",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/students/{name}/payments": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record a payment",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid amount"}
                }
            }
        },
        "/finance/summary": {
            "get": {
                "tags": ["Finance"],
                "summary": "Monthly revenue summary",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/finance/transactions": {
            "get": {
                "tags": ["Finance"],
                "summary": "Raw transaction ledger",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/finance/expenses": {
            "post": {
                "tags": ["Finance"],
                "summary": "Record a bookkeeping expense",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly training schedule",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Schedule"],
                "summary": "Replace the weekly schedule grid",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/activity": {
            "get": {
                "tags": ["Activity"],
                "summary": "Activity history, most recent first",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export job",
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "responses": {"200": {"description": "File"}}
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
