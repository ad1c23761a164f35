package common

const (
	// RedisStreamScanResults carries one message per StockProfile produced
	// by a completed scan.
	RedisStreamScanResults = "scanner.results"
)
