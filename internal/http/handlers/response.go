// Package handlers provides the HTTP handler implementations for the public
// API.
//
// This file defines the single response envelope every endpoint uses. The
// envelope is deliberately minimal, a success flag and a human-facing
// message, because the contact form's JavaScript is its only consumer, and
// because masked bot rejections must be byte-compatible with genuine
// acceptances (see the contact handler).
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "message": "Vielen Dank für Ihre Anfrage! ..." }
//
// Example error response:
//
//	HTTP/1.1 400 Bad Request
//	{ "success": false, "message": "Bitte geben Sie eine gültige deutsche Telefonnummer an." }
package handlers

import "github.com/gin-gonic/gin"

// Response is the envelope returned by all endpoints. Message is safe to
// display to users verbatim.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ok writes a success envelope with the given status and message.
func ok(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: true, Message: msg})
}

// fail aborts the request with a failure envelope. Unlike success envelopes,
// failure messages are field-specific and actionable; they are only used for
// conditions we deliberately surface (validation errors, rate limiting).
func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: msg})
}

// Fail is the exported variant of fail(), for use by router-level fallbacks
// (NoRoute, NoMethod) without depending on unexported helpers.
func Fail(c *gin.Context, status int, msg string) { fail(c, status, msg) }
