package models

// DefaultSiteName is shown in page titles when no site name is configured.
const DefaultSiteName = "Exception Pages"
