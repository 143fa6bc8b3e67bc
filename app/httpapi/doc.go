// Package httpapi exposes the circulation use cases as a JSON API under /api, built on gin.
//
// Handlers only translate between HTTP and the command and query handlers. Business rejections
// become 4xx responses with a {"detail": "..."} body, infrastructure failures a generic 500.
package httpapi
