package common

import (
	"fmt"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner with version and environment.
func PrintBanner(config *Config) {
	banner.PrintSimple("Merx", GetVersion())
	if config != nil && config.IsProduction() {
		fmt.Println("  environment: production")
	}
}
