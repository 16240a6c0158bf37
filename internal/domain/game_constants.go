package domain

// DefaultTotalRounds defines how many rounds a game runs in round-by-round mode,
// and how many boards a deck must hold in deck mode.
// Keep this centralized so tests or local runs can adjust the rule without touching multiple call sites.
const DefaultTotalRounds = 5

// MinBoardSize is the smallest legal board edge length.
const MinBoardSize = 2
