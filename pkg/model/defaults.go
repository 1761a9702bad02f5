package model

import (
	"time"
)

const (
	// FeeDivisor sets the treasury cut to 1/20th (5%) of the settled balance
	FeeDivisor = 20

	DefaultDenom          = "ustars"
	DefaultAddressPrefix  = "stars"
	DefaultServerPort     = 8080
	DefaultWatchSchedule  = "@every 1m"
	DefaultHookTimeout    = 60 * time.Second
	DefaultLogMaxSize     = 50 // megabytes
	DefaultLogMaxAge      = 30 // days
	DefaultLogMaxBackups  = 7
	DefaultSettlementMode = SettlementBasisCustody
)
