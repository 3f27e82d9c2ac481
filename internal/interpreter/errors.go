package interpreter

import "errors"

// Internal control signals of §4.4/§7. None of these ever surface past Run:
// they are folded into the returned Result.
var (
	errTraceIdxNotFound = errors.New("trace idx not found")
	errUnknownEncounter = errors.New("unknown encounter")
)
