package diagnostic

// Stable code strings, grouped by phase. Warning codes are the suppression
// keys consumed from the build config.
const (
	// Preparse
	PreUnexpectedToken    = "PRE001"
	PreUnmatchedDelimiter = "PRE002"
	PrePrematureEOF       = "PRE003"

	// Macro
	MacroNotFound      = "MAC001"
	MacroTooManyParams = "MAC002"
	MacroTooFewParams  = "MAC003"
	MacroKindMismatch  = "MAC004"
	MacroUnknownDollar = "MAC005"
	MacroDepthExceeded = "MAC006"
	MacroAmbiguous     = "MAC007"

	// Parse
	ParseExpectedToken      = "PAR001"
	ParseExpectedIdent      = "PAR002"
	ParseExpectedOnlyOne    = "PAR003"
	ParseUsizeOutOfRange    = "PAR004"
	ParseLiteralOutOfRange  = "PAR005"
	ParseSuffixOutOfRange   = "PAR006"
	ParseNotYetSupported    = "PAR007"

	// Analysis
	AnaNameNotFound        = "ANA001"
	AnaTypeMismatch        = "ANA002"
	AnaOperatorUnresolved  = "ANA003"
	AnaOperatorAmbiguous   = "ANA004"
	AnaGenericArity        = "ANA005"
	AnaDuplicateName       = "ANA006"
	AnaVariableNotMutable  = "ANA007"
	AnaRecursiveType       = "ANA008"
	AnaDuplicateOperator   = "ANA009"

	// Warnings
	WarnUnusedCapture      = "W001"
	WarnNonExhaustiveMatch = "W002"
	WarnUnreachableArm     = "W003"
	WarnUnusedVariable     = "W004"

	// Internal invariant violations (MIR lowering should never error)
	InternalInvariant = "INT001"
)
