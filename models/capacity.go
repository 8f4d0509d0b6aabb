// models/capacity.go
package models

import "strings"

// Flow indicator codes used by the source feed. Anything else fails validation.
const (
	FlowDelivery = "D"
	FlowReceipt  = "R"
)

// Flag labels used by the source feed for the boolean-like indicator columns.
const (
	FlagYes = "Y"
	FlagNo  = "N"
)

// CapacityRecord represents one row of operationally available capacity data.
// CSV tags EXACTLY match the source feed's headers; db tags match the tec_data
// table columns. The capacity/quantity fields are pointers because the feed
// leaves them blank for some locations.
type CapacityRecord struct {
	Loc             string `csv:"Loc" db:"loc"`
	LocZn           string `csv:"Loc Zn" db:"loc_zn"`
	LocName         string `csv:"Loc Name" db:"loc_name"`
	LocPurpDesc     string `csv:"Loc Purp Desc" db:"loc_purp_desc"`
	LocQTI          string `csv:"Loc/QTI" db:"loc_qti"` // Note: slash in header
	FlowInd         string `csv:"Flow Ind" db:"flow_ind"`
	DC              *int   `csv:"DC" db:"dc"`
	OPC             *int   `csv:"OPC" db:"opc"`
	TSQ             *int   `csv:"TSQ" db:"tsq"`
	OAC             *int   `csv:"OAC" db:"oac"`
	IT              string `csv:"IT" db:"it"`
	AuthOverrunInd  string `csv:"Auth Overrun Ind" db:"auth_overrun_ind"`
	NomCapExceedInd string `csv:"Nom Cap Exceed Ind" db:"nom_cap_exceed_ind"`
	AllQtyAvail     string `csv:"All Qty Avail" db:"all_qty_avail"`
	QtyReason       string `csv:"Qty Reason" db:"qty_reason"`
}

// ExpectedHeader is the fixed 15-column header the source publishes, in order.
var ExpectedHeader = []string{
	"Loc", "Loc Zn", "Loc Name", "Loc Purp Desc", "Loc/QTI",
	"Flow Ind", "DC", "OPC", "TSQ", "OAC",
	"IT", "Auth Overrun Ind", "Nom Cap Exceed Ind", "All Qty Avail", "Qty Reason",
}

// Column identifies a position within ExpectedHeader for row-level checks.
type Column struct {
	Index int
	Name  string
}

// Column positions within ExpectedHeader, used by row-level validation.
var (
	NumericColumns = []Column{{6, "DC"}, {7, "OPC"}, {8, "TSQ"}, {9, "OAC"}}
	FlagColumns    = []Column{{10, "IT"}, {11, "Auth Overrun Ind"}, {12, "Nom Cap Exceed Ind"}, {13, "All Qty Avail"}}
)

const (
	ColumnLoc     = 0
	ColumnFlowInd = 5
)

// CycleIDs lists the publication slot ids in enumeration order. The source
// publishes up to six snapshots per gas day under these ids.
var CycleIDs = []int{0, 1, 3, 4, 5, 7}

// NormalizeColumn maps a source header label to its storage column key:
// lower-case, with spaces and slashes replaced by underscores.
// e.g. "Loc Zn" -> "loc_zn", "Loc/QTI" -> "loc_qti".
// At upload time the mapping is realized by the parallel csv/db tag pairs on
// CapacityRecord; this function is the canonical definition those pairs must
// agree with.
func NormalizeColumn(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "/", "_")
	return key
}

// ValidFlow reports whether a flow indicator value is one of the known codes.
// Empty is allowed; the record simply has no flow direction.
func ValidFlow(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || v == FlowDelivery || v == FlowReceipt
}

// ValidFlag reports whether a boolean-like indicator value belongs to the
// finite label set {Y, N, ""}.
func ValidFlag(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || v == FlagYes || v == FlagNo
}
