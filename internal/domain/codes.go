package domain

// Canonical finding codes. These are part of the external contract:
// consumers match on the exact strings, so they must never drift.
const (
	// Policy sanity
	CodePolicySparesRange        = "POLICY_SPARES_RANGE"
	CodePolicyBinsEmpty          = "POLICY_BINS_EMPTY"
	CodePolicyBinsInvalid        = "POLICY_BINS_INVALID"
	CodePolicyBinsDuplicate      = "POLICY_BINS_DUPLICATE"
	CodePolicyBinsUnsorted       = "POLICY_BINS_UNSORTED"
	CodePolicyDACMaxMissing      = "POLICY_DAC_MAX_MISSING"
	CodePolicyDACMaxInvalid      = "POLICY_DAC_MAX_INVALID"
	CodePolicyDACMaxLTBin        = "POLICY_DAC_MAX_LT_SMALLEST_BIN"
	CodePolicyMediaDefaulted     = "POLICY_MEDIA_MISSING_DEFAULTED"
	CodePolicyRJ45BinsGT100M     = "POLICY_RJ45_BINS_GT_100M"
	CodePolicyDefaultNegative    = "POLICY_DEFAULT_NEGATIVE"
	CodePolicyRedundancyInvalid  = "POLICY_REDUNDANCY_INVALID"
	CodePolicyOversubDefaulted   = "POLICY_OVERSUB_DEFAULTED"
	CodePolicyOversubInvalid     = "POLICY_OVERSUB_INVALID"
	CodePolicyHeuristicsInvalid  = "POLICY_HEURISTICS_INVALID"
	CodePolicySectionDefaulted   = "POLICY_SECTION_DEFAULTED"

	// Port capacity
	CodePortCapacityTorSFP28      = "PORT_CAPACITY_TOR_SFP28"
	CodePortCapacityTorQSFP28     = "PORT_CAPACITY_TOR_QSFP28"
	CodePortCapacitySpineQSFP28   = "PORT_CAPACITY_SPINE_QSFP28"
	CodePortCapacitySpineNearFull = "PORT_CAPACITY_SPINE_NEAR_LIMIT"
	CodeMgmtRJ45Unvalidated       = "MGMT_RJ45_UNVALIDATED"
	CodeMissingTor                = "MISSING_TOR"

	// NIC compatibility
	CodeNICNoRack            = "NIC_COMPATIBILITY_NO_RACK"
	CodeNICSFP28             = "NIC_COMPATIBILITY_SFP28"
	CodeNICQSFP28Unsupported = "NIC_COMPATIBILITY_QSFP28_UNSUPPORTED"
	CodeNICRJ45Unmodeled     = "NIC_COMPATIBILITY_RJ45_UNMODELED"

	// Oversubscription
	CodeOversubNoUplinks   = "OVERSUB_NO_UPLINKS"
	CodeOversubRatio       = "OVERSUB_RATIO"
	CodeOversubRatioSite   = "OVERSUB_RATIO_SITE"
	CodeLineRateDefaulted  = "LINE_RATE_DEFAULTED"

	// Completeness
	CodeCompletenessMissingTor      = "COMPLETENESS_MISSING_TOR"
	CodeCompletenessTorRackMismatch = "COMPLETENESS_TOR_RACK_MISMATCH"
	CodeCompletenessNodeRackMissing = "COMPLETENESS_NODE_RACK_MISSING"
	CodeCompletenessMissingSpine    = "COMPLETENESS_MISSING_SPINE"
	CodeCompletenessSpineNoPorts    = "COMPLETENESS_SPINE_NO_PORTS"
	CodeCompletenessDuplicateGrid   = "COMPLETENESS_DUPLICATE_GRID"

	// Length feasibility / geometry
	CodeLengthExceedsMaxBin  = "LENGTH_EXCEEDS_MAX_BIN"
	CodeRJ45BinGT100M        = "RJ45_BIN_GT_100M"
	CodeSiteGeometryMissing  = "SITE_GEOMETRY_MISSING"
	CodeGeometryFallback     = "GEOMETRY_FALLBACK"

	// Redundancy
	CodeRedundancyDualHoming     = "REDUNDANCY_DUAL_HOMING"
	CodeRedundancyNICOdd         = "REDUNDANCY_NIC_ODD"
	CodeRedundancySingleTor      = "REDUNDANCY_SINGLE_TOR"
	CodeRedundancyTorUplinks     = "REDUNDANCY_TOR_UPLINKS"
	CodeRedundancyLAGSize        = "REDUNDANCY_LAG_SIZE"
	CodeRedundancyLACPUndeclared = "REDUNDANCY_LACP_UNDECLARED"
	CodeRedundancyMgmtDualHoming = "REDUNDANCY_MGMT_DUAL_HOMING"

	// Cross-validation
	CodeMissingLink     = "MISSING_LINK"
	CodePhantomItem     = "PHANTOM_ITEM"
	CodeMismatchedBin   = "MISMATCHED_BIN"
	CodeMismatchedMedia = "MISMATCHED_MEDIA"
	CodeCountMismatch   = "COUNT_MISMATCH"

	// Roundtrip
	CodeRoundtripPortOveralloc  = "ROUNDTRIP_PORT_OVERALLOC"
	CodeRoundtripUnmappedClass  = "ROUNDTRIP_UNMAPPED_CLASS"
	CodeRoundtripSparesRounding = "ROUNDTRIP_SPARES_ROUNDING"

	// Calculation
	CodeCalcInfeasibleDropped = "CALC_INFEASIBLE_DROPPED"
)
