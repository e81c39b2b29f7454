// Package register registers all components
package register

import (
	// register bus backends.
	_ "go.viam.com/fpdlink/components/board/register"
)
