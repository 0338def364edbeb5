// Package server exposes the analyst and its session store over HTTP using gin.
//
// Routes:
//
//	POST   /api/v1/chat
//	GET    /api/v1/sessions
//	GET    /api/v1/sessions/:id
//	GET    /api/v1/sessions/:id/context?max_messages=N
//	GET    /api/v1/sessions/:id/messages?limit=N
//	DELETE /api/v1/sessions/:id
//	GET    /api/v1/stats
//	POST   /api/v1/maintenance/cleanup
//	POST   /api/v1/maintenance/clear
//	GET    /health
//
// Errors are rendered as {"error": "..."}.
package server
