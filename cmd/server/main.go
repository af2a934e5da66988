// Bot Fleet API
//
//	@title			Bot Fleet API
//	@version		1.0.0
//	@description	API for operating a multi-tenant fleet of WhatsApp bots backed by the whatsmeow library. Registers, validates, pairs, and supervises bots across tenants.
//	@termsOfService	https://github.com/botfleet/botfleet/blob/main/LICENSE
//
//	@contact.name	Bot Fleet API Support
//	@contact.url	https://github.com/botfleet/botfleet
//	@contact.email	support@botfleet.example
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				API key auth. Set AUTH_ENABLED=true in the environment to enable.
//
//	@securityDefinitions.basic	BasicAuth
//	@description				HTTP basic auth. Set AUTH_TYPE=basic in the environment to enable.
//
//	@schemes	http https
//	@produce	json
//	@accept		json
//
//	@tag.name			Registration
//	@tag.description	Bot registration, approval, and credential validation
//
//	@tag.name			Bots
//	@tag.description	Bot lifecycle operations: start, stop, restart, migrate, destroy
//
//	@tag.name			Tenants
//	@tag.description	Tenant listing and capacity
//
//	@tag.name			Pairing
//	@tag.description	Guest pairing-code sessions
//
//	@tag.name			Health
//	@tag.description	Application health and readiness
package main

import (
	"log"

	"botfleet/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Start(); err != nil {
		log.Printf("Application stopped: %v", err)
	}

	if err := application.Stop(); err != nil {
		log.Printf("Error stopping application: %v", err)
	}

	log.Println("Application stopped gracefully")
}
