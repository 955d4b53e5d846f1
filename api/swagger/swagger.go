package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Dormi API",
        "description": "Dormitory management backend: disciplinary reports with automatic reprimand escalation, worship attendance, cleanliness reviews, and resident administration.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and account management"},
        {"name": "Reports", "description": "Disciplinary reports and escalation"},
        {"name": "Reprimands", "description": "Formal reprimands and printable slips"},
        {"name": "Attendance", "description": "Worship roll-call and bulk absences"},
        {"name": "Cleanliness", "description": "Room inspections and hallway rankings"},
        {"name": "Students", "description": "Resident administration"},
        {"name": "Dorms", "description": "Buildings, hallways, rooms, occupancy"},
        {"name": "Semesters", "description": "Academic periods"},
        {"name": "Users", "description": "Roles and monitor roster"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain a token",
                "responses": {
                    "200": {"description": "Token and profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Create an account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "User already exists"}
                }
            }
        },
        "/auth/reset-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Reset a password by registered email",
                "responses": {
                    "204": {"description": "Reset"},
                    "404": {"description": "Unknown email"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Submit a report; every Nth approved report in the month generates a reprimand",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Report created, reprimand included when the threshold was hit"},
                    "400": {"description": "Validation or reference failure"}
                }
            },
            "get": {
                "tags": ["Reports"],
                "summary": "List reports",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Paginated reports", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/approve": {
            "put": {
                "tags": ["Reports"],
                "summary": "Approve a pending report",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Approved"},
                    "404": {"description": "Not found or not pending"}
                }
            }
        },
        "/reports/{id}/reject": {
            "put": {
                "tags": ["Reports"],
                "summary": "Reject a pending report",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Rejected"}
                }
            }
        },
        "/attendance/absences": {
            "post": {
                "tags": ["Attendance"],
                "summary": "File absence reports for a list of students in one transaction",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Batch committed"},
                    "400": {"description": "Unknown service or student"}
                }
            }
        },
        "/reprimands": {
            "post": {
                "tags": ["Reprimands"],
                "summary": "Issue a reprimand manually",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            },
            "get": {
                "tags": ["Reprimands"],
                "summary": "List reprimands",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Reprimands with resolved names"}
                }
            }
        },
        "/reprimands/{id}/slip": {
            "get": {
                "tags": ["Reprimands"],
                "summary": "Download the printable slip",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF payload"}
                }
            }
        },
        "/cleanliness/stats": {
            "get": {
                "tags": ["Cleanliness"],
                "summary": "Hallway averages for the running and published windows",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Two-window statistics"}
                }
            }
        },
        "/semesters/close": {
            "post": {
                "tags": ["Semesters"],
                "summary": "Close the active semester and open the next",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Closed"}
                }
            }
        }
    },
    "definitions": {
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
