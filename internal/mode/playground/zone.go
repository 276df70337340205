package playground

import "github.com/zjrosen/phonrule/internal/formula"

// Zone ID format for the playground:
// - Formula cells: cell:{cell}
// - Rule tabs: rule:{name}

const (
	zoneCellPrefix = "cell:"
	zoneRulePrefix = "rule:"
)

func makeCellZoneID(cell formula.CellID) string {
	return zoneCellPrefix + cell.String()
}

func makeRuleZoneID(name string) string {
	return zoneRulePrefix + name
}
