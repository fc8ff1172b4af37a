// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used within the game handlers. These provide
// more specific reasons for closure than standard codes. Authentication runs
// before the upgrade, so auth failures are reported as HTTP statuses instead.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidGameIDError  = 3003 // Target game ID specified in the WS URL does not exist or is invalid.
)
