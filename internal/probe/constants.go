package probe

import "time"

// Defaults used when Config leaves a field unset.
const (
	DefaultRanges  = 200
	DefaultTimeout = 10 * time.Second
)

// Response content types checked by the probe.
const (
	contentTypeJSON = "application/json"
	contentTypeSVG  = "image/svg+xml"
)

// Check names reported in failures.
const (
	checkHealth       = "health"
	checkSites        = "sites"
	checkPieAll       = "pie_all_sites"
	checkPieSite      = "pie_single_site"
	checkScatterRange = "scatter_range"
	checkScatterEmpty = "scatter_inverted_range"
	checkBadRequest   = "scatter_bad_number"
	checkSVG          = "svg"
)

// PercentageMultiplier converts a ratio to a percentage.
const PercentageMultiplier = 100
