// utils/cycles.go
package utils

import "fmt"

// cycleNames maps publication cycle ids to the slot names the source
// documents for them.
var cycleNames = map[int]string{
	0: "timely",
	1: "evening",
	3: "intraday_1",
	4: "intraday_2",
	5: "final",
	7: "intraday_3",
}

// CycleName returns the publication slot name for a cycle id, or a
// "cycle_N" placeholder for ids outside the known set.
func CycleName(cycle int) string {
	if name, ok := cycleNames[cycle]; ok {
		return name
	}
	return fmt.Sprintf("cycle_%d", cycle)
}
