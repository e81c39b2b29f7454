// Package register registers all bus backends a board config can name.
package register

import (
	// for buses.
	_ "go.viam.com/fpdlink/components/board/fake"
	_ "go.viam.com/fpdlink/components/board/genericlinux"
	_ "go.viam.com/fpdlink/components/board/mcp2221"
)
