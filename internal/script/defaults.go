package script

import "time"

// DefaultLimits are the limits used when none are configured
var DefaultLimits = Limits{
	MaxExecutionTime: 5 * time.Second,
	MaxCallStackSize: 1000,
}

// GetDefaultLimits returns a copy of the default limits
func GetDefaultLimits() Limits {
	return DefaultLimits
}
