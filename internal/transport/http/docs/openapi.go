package docs

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec represents a simplified OpenAPI 3.0 specification
type OpenAPISpec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       Info                   `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

var spec OpenAPISpec

func init() {
	bearer := []map[string]interface{}{
		{"BearerAuth": []string{}},
	}

	jsonBody := func(schema map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": schema,
				},
			},
		}
	}

	responses := func(pairs ...string) map[string]interface{} {
		out := map[string]interface{}{}
		for i := 0; i+1 < len(pairs); i += 2 {
			out[pairs[i]] = map[string]interface{}{"description": pairs[i+1]}
		}
		return out
	}

	pagination := []map[string]interface{}{
		{"name": "page", "in": "query", "schema": map[string]interface{}{"type": "integer", "minimum": 1, "default": 1}},
		{"name": "page_size", "in": "query", "schema": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 100, "default": 20}},
	}

	idParam := []map[string]interface{}{
		{"name": "id", "in": "path", "required": true, "schema": map[string]interface{}{"type": "string", "format": "uuid"}},
	}

	spec = OpenAPISpec{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "Go API Starter",
			Description: "CRUD API starter: JWT auth with rotating refresh tokens, RBAC, file uploads, queued email",
			Version:     "1.0.0",
		},
		Servers: []Server{
			{URL: "http://localhost:8000", Description: "Local development server"},
		},
		Components: map[string]interface{}{
			"securitySchemes": map[string]interface{}{
				"BearerAuth": map[string]interface{}{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
		},
		Paths: map[string]interface{}{
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health Check",
					"description": "Always 200; body reports healthy or degraded per dependency",
					"operationId": "healthCheck",
					"tags":        []string{"Health"},
					"responses":   responses("200", "Health report"),
				},
			},
			"/ping": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Ping",
					"operationId": "ping",
					"tags":        []string{"Health"},
					"responses":   responses("200", "pong"),
				},
			},
			"/api/v1/auth/register": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Register User",
					"description": "Create an account and sign in. Returns the user plus an access/refresh token pair.",
					"operationId": "register",
					"tags":        []string{"Authentication"},
					"requestBody": jsonBody(map[string]interface{}{
						"type":     "object",
						"required": []string{"email", "username", "password"},
						"properties": map[string]interface{}{
							"email": map[string]interface{}{
								"type":    "string",
								"format":  "email",
								"example": "user@example.com",
							},
							"username": map[string]interface{}{
								"type":      "string",
								"minLength": 3,
								"maxLength": 30,
								"example":   "johndoe",
							},
							"password": map[string]interface{}{
								"type":      "string",
								"minLength": 8,
								"example":   "SecurePass123",
							},
							"full_name": map[string]interface{}{
								"type":    "string",
								"example": "John Doe",
							},
						},
					}),
					"responses": responses(
						"201", "User registered",
						"400", "Invalid input",
						"409", "Email or username already taken",
					),
				},
			},
			"/api/v1/auth/login": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Login",
					"description": "Authenticate with username or email and receive access/refresh tokens",
					"operationId": "login",
					"tags":        []string{"Authentication"},
					"requestBody": jsonBody(map[string]interface{}{
						"type":     "object",
						"required": []string{"identifier", "password"},
						"properties": map[string]interface{}{
							"identifier": map[string]interface{}{
								"type":        "string",
								"description": "username or email",
							},
							"password": map[string]interface{}{
								"type": "string",
							},
						},
					}),
					"responses": responses(
						"200", "Login successful",
						"401", "Invalid credentials",
						"429", "Too many attempts",
					),
				},
			},
			"/api/v1/auth/refresh": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Refresh Tokens",
					"description": "Rotate the refresh token (cookie or JSON body) for a new pair",
					"operationId": "refresh",
					"tags":        []string{"Authentication"},
					"responses": responses(
						"200", "New token pair",
						"401", "Invalid, expired, or reused refresh token",
					),
				},
			},
			"/api/v1/auth/logout": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Logout",
					"description": "Revoke the presented refresh token; idempotent",
					"operationId": "logout",
					"tags":        []string{"Authentication"},
					"responses":   responses("204", "Logged out"),
				},
			},
			"/api/v1/auth/me": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get Current User",
					"operationId": "getCurrentUser",
					"tags":        []string{"Authentication"},
					"security":    bearer,
					"responses": responses(
						"200", "User information",
						"401", "Unauthorized",
					),
				},
			},
			"/api/v1/auth/password": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Change Password",
					"description": "Requires the current password; revokes all sessions",
					"operationId": "changePassword",
					"tags":        []string{"Authentication"},
					"security":    bearer,
					"requestBody": jsonBody(map[string]interface{}{
						"type":     "object",
						"required": []string{"current_password", "new_password"},
						"properties": map[string]interface{}{
							"current_password": map[string]interface{}{"type": "string"},
							"new_password":     map[string]interface{}{"type": "string", "minLength": 8},
						},
					}),
					"responses": responses(
						"204", "Password changed",
						"401", "Wrong current password",
					),
				},
			},
			"/api/v1/auth/password-reset/request": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Request Password Reset",
					"description": "Always 202 regardless of whether the email is registered",
					"operationId": "passwordResetRequest",
					"tags":        []string{"Authentication"},
					"requestBody": jsonBody(map[string]interface{}{
						"type":     "object",
						"required": []string{"email"},
						"properties": map[string]interface{}{
							"email": map[string]interface{}{"type": "string", "format": "email"},
						},
					}),
					"responses": responses("202", "Accepted"),
				},
			},
			"/api/v1/auth/password-reset/validate": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Validate Password Reset Token",
					"description": "Pre-check a reset token without consuming it",
					"operationId": "passwordResetValidate",
					"tags":        []string{"Authentication"},
					"parameters": []map[string]interface{}{
						{"name": "token", "in": "query", "required": true, "schema": map[string]interface{}{"type": "string"}},
					},
					"responses": responses(
						"200", "Token is valid",
						"404", "Unknown or expired token",
					),
				},
			},
			"/api/v1/auth/password-reset/confirm": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Confirm Password Reset",
					"description": "Consume the one-time token and set a new password",
					"operationId": "passwordResetConfirm",
					"tags":        []string{"Authentication"},
					"requestBody": jsonBody(map[string]interface{}{
						"type":     "object",
						"required": []string{"token", "new_password"},
						"properties": map[string]interface{}{
							"token":        map[string]interface{}{"type": "string"},
							"new_password": map[string]interface{}{"type": "string", "minLength": 8},
						},
					}),
					"responses": responses(
						"204", "Password reset",
						"404", "Unknown or expired token",
					),
				},
			},
			"/api/v1/auth/verify-email/request": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Request Email Verification",
					"operationId": "verifyEmailRequest",
					"tags":        []string{"Authentication"},
					"security":    bearer,
					"responses":   responses("202", "Accepted"),
				},
			},
			"/api/v1/auth/verify-email/confirm": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Confirm Email Verification",
					"operationId": "verifyEmailConfirm",
					"tags":        []string{"Authentication"},
					"requestBody": jsonBody(map[string]interface{}{
						"type":     "object",
						"required": []string{"token"},
						"properties": map[string]interface{}{
							"token": map[string]interface{}{"type": "string"},
						},
					}),
					"responses": responses(
						"200", "Email verified",
						"404", "Unknown or expired token",
					),
				},
			},
			"/api/v1/users": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List Users",
					"description": "Admin only; offset pagination",
					"operationId": "listUsers",
					"tags":        []string{"Users"},
					"security":    bearer,
					"parameters":  pagination,
					"responses": responses(
						"200", "Paginated users",
						"403", "Requires admin",
					),
				},
			},
			"/api/v1/users/me": map[string]interface{}{
				"put": map[string]interface{}{
					"summary":     "Update Own Profile",
					"operationId": "updateMe",
					"tags":        []string{"Users"},
					"security":    bearer,
					"responses": responses(
						"200", "Updated user",
						"409", "Email or username already taken",
					),
				},
			},
			"/api/v1/users/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get User",
					"operationId": "getUser",
					"tags":        []string{"Users"},
					"security":    bearer,
					"parameters":  idParam,
					"responses": responses(
						"200", "User",
						"404", "Not found",
					),
				},
				"put": map[string]interface{}{
					"summary":     "Update User (admin)",
					"operationId": "updateUser",
					"tags":        []string{"Users"},
					"security":    bearer,
					"parameters":  idParam,
					"responses": responses(
						"200", "Updated user",
						"403", "Requires admin",
					),
				},
				"delete": map[string]interface{}{
					"summary":     "Delete User (admin)",
					"description": "Admins cannot delete themselves; the last admin is protected",
					"operationId": "deleteUser",
					"tags":        []string{"Users"},
					"security":    bearer,
					"parameters":  idParam,
					"responses": responses(
						"204", "Deleted",
						"403", "Requires admin",
					),
				},
			},
			"/api/v1/users/{id}/role": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Assign Role (admin)",
					"operationId": "setUserRole",
					"tags":        []string{"Users"},
					"security":    bearer,
					"parameters":  idParam,
					"requestBody": jsonBody(map[string]interface{}{
						"type":     "object",
						"required": []string{"role"},
						"properties": map[string]interface{}{
							"role": map[string]interface{}{
								"type": "string",
								"enum": []string{"user", "moderator", "admin"},
							},
						},
					}),
					"responses": responses(
						"200", "Role updated",
						"403", "Requires admin",
					),
				},
			},
			"/api/v1/files": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Upload File",
					"description": "Multipart form with one field named \"file\"",
					"operationId": "uploadFile",
					"tags":        []string{"Files"},
					"security":    bearer,
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"multipart/form-data": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"file": map[string]interface{}{
											"type":   "string",
											"format": "binary",
										},
									},
								},
							},
						},
					},
					"responses": responses(
						"201", "File stored",
						"400", "Too large or unsupported type",
					),
				},
				"get": map[string]interface{}{
					"summary":     "List Own Files",
					"operationId": "listFiles",
					"tags":        []string{"Files"},
					"security":    bearer,
					"parameters":  pagination,
					"responses":   responses("200", "Paginated files"),
				},
			},
			"/api/v1/files/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get File",
					"description": "Metadata plus a short-lived presigned download URL; owner or admin",
					"operationId": "getFile",
					"tags":        []string{"Files"},
					"security":    bearer,
					"parameters":  idParam,
					"responses": responses(
						"200", "File with download URL",
						"404", "Unknown ID, or not yours",
					),
				},
				"delete": map[string]interface{}{
					"summary":     "Delete File",
					"description": "Owner or admin; removes the object and the row",
					"operationId": "deleteFile",
					"tags":        []string{"Files"},
					"security":    bearer,
					"parameters":  idParam,
					"responses": responses(
						"204", "Deleted",
						"404", "Unknown ID, or not yours",
					),
				},
			},
		},
	}
}

// OpenAPIHandler returns the OpenAPI specification as JSON
func OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(spec)
}
