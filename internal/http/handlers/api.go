package handlers

import (
	"database/sql"

	"github.com/DiosyStephen/routAfare/internal/conversation"
	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/services"
)

// API bundles the handler dependencies so nothing is reached through
// package-level state.
type API struct {
	Engine   *conversation.Engine
	Services domain.ServiceStore
	Tickets  services.TicketService

	JWTSecret            []byte
	ProviderPassword     string
	ProviderPasswordHash string

	// Nil when running on the JSON file backend.
	DB *sql.DB
}
