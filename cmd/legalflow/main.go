package main

import "legalflow/internal/cli"

// @title LegalFlow Compliance API
// @version 1.0
// @description Gamified legal-compliance self-assessment with AI review of chat messages and documents
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cli.Execute()
}
