// Package main is the entry point of AdGuard User Rules.
package main

import (
	"github.com/AdguardTeam/AdGuardUserRules/internal/cmd"
)

func main() {
	cmd.Main()
}
