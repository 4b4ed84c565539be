package cli

var (
	PrintGuide     = printGuide
	GetIndexConfig = getIndexConfig
)
