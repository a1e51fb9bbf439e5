// Command issuebadge runs the IssueBadge issuance API.
//
// @title                      IssueBadge Service API
// @version                    1.0
// @description                Issues digital badges through the IssueBadge service and keeps the local record of grants.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the JWT.
package main

import (
	"os"

	"github.com/issuebadge/issuebadge-service/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
