package output

// DefaultAssumptions lists key modeling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Benefits are in today's dollars; future COLAs are not projected",
	"Monthly benefits are floored to the whole dollar",
	"Discounting is monthly at (1+r)^(-k/12) from the current month",
	"Spousal benefits start once both spouses have filed and stop when the survivor benefit would begin",
	"Survivor benefit amounts are not included in totals",
	"No earnings test, WEP/GPO, or taxation of benefits",
}
