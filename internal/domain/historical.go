package domain

// HistoricalRecord is one row of the historical dataset keyed by column name.
type HistoricalRecord map[string]any

// HistoricalWindow is the number of trailing rows served to clients.
const HistoricalWindow = 100
