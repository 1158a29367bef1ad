package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the content API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>IISPPR MainSite API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "IISPPR MainSite", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } }
  },
  "paths": {
    "/api/auth/register": {
      "post": { "summary": "Register an admin", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "registered" }, "400": { "description": "missing field" }, "403": { "description": "registration disabled" }, "409": { "description": "duplicate" } } }
    },
    "/api/auth/login": {
      "post": { "summary": "Admin login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "token, refreshToken, admin" }, "401": { "description": "invalid credentials" }, "404": { "description": "unknown admin" } } }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Logout, drop the refresh session and revoke the access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/ads": {
      "get": { "summary": "List advertisements", "responses": { "200": { "description": "ads" } } },
      "post": { "summary": "Create advertisement (multipart title, description, image)", "security": [{"bearer": []}], "responses": { "201": { "description": "created" }, "400": { "description": "missing image or title" } } },
      "delete": { "summary": "Delete advertisements by ids", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" }, "404": { "description": "none matched" } } }
    },
    "/api/ads/{id}": {
      "get": { "summary": "Get advertisement", "responses": { "200": { "description": "ad" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update advertisement", "security": [{"bearer": []}], "responses": { "200": { "description": "updated" } } }
    },
    "/api/ads/unassign": {
      "delete": { "summary": "Remove an ad from a page slot", "security": [{"bearer": []}], "responses": { "200": { "description": "unassigned" }, "404": { "description": "no assignment" } } }
    },
    "/api/pageads": {
      "get": { "summary": "Ads rendered on a page", "parameters": [{"name":"page","in":"query","required":true,"schema":{"type":"string"}},{"name":"position","in":"query","schema":{"type":"string","enum":["top","bottom"]}}], "responses": { "200": { "description": "page, position, ads" }, "404": { "description": "no ads" } } },
      "post": { "summary": "Assign an ad to pages", "security": [{"bearer": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"adId":{"type":"string"},"pages":{"type":"array","items":{"type":"string"}},"position":{"type":"string"}}}}}}, "responses": { "200": { "description": "assigned" }, "400": { "description": "invalid input" }, "404": { "description": "unknown ad" } } },
      "patch": { "summary": "Move a page's ads to another position", "security": [{"bearer": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"page":{"type":"string"},"position":{"type":"string"},"from":{"type":"string"}}}}}}, "responses": { "200": { "description": "moved" }, "404": { "description": "no source slot" } } }
    },
    "/api/pageads/getall": {
      "get": { "summary": "Every assignment with resolved ads", "responses": { "200": { "description": "success, total, data" } } }
    },
    "/api/pageads/unassign": {
      "delete": { "summary": "Remove an ad from a page slot", "security": [{"bearer": []}], "responses": { "200": { "description": "unassigned" } } }
    },
    "/api/pageads/{pageName}": {
      "delete": { "summary": "Drop every assignment of a page", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" }, "404": { "description": "no assignments" } } }
    },
    "/api/testimonials": {
      "get": { "summary": "List testimonials", "responses": { "200": { "description": "testimonials" } } },
      "post": { "summary": "Create testimonial (multipart text, author, image)", "security": [{"bearer": []}], "responses": { "201": { "description": "created" } } },
      "delete": { "summary": "Delete testimonials by ids", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } }
    },
    "/api/testimonials/{id}": {
      "get": { "summary": "Get testimonial", "responses": { "200": { "description": "testimonial" } } },
      "put": { "summary": "Update testimonial", "security": [{"bearer": []}], "responses": { "200": { "description": "updated" } } }
    },
    "/api/documents": {
      "get": { "summary": "List articles or reports", "parameters": [{"name":"type","in":"query","required":true,"schema":{"type":"string","enum":["article","report"]}}], "responses": { "200": { "description": "documents" } } },
      "post": { "summary": "Upload a PDF document", "security": [{"bearer": []}], "responses": { "201": { "description": "created" } } },
      "delete": { "summary": "Delete documents by ids, per-item outcome", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted and failed lists" } } }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Get document", "responses": { "200": { "description": "document" } } },
      "delete": { "summary": "Delete one document", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
