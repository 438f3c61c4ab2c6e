package federation

// PriorityOrder is the fixed tie-break order applied when more than one
// backend confirms a reference in the same settling round (spec §4.I):
// offline indices first, then the remote backends in this exact sequence.
// Configuration-visible: federation wiring builds the enabled-backend list
// in this order and the orchestrator never reorders it.
var PriorityOrder = []string{
	// offline indices are inserted ahead of this list by the wiring code,
	// since their names are configuration-dependent (e.g. "DBLP (offline)").
	"CrossRef",
	"DBLP",
	"OpenAlex",
	"arXiv",
	"SemanticScholar",
	"Europe PMC",
	"PubMed",
	"ACL Anthology",
	"NeurIPS",
	"SSRN",
}

// rank returns name's position in priority. Local (offline) backends rank
// -1 (highest priority, "offline indices first"); any other name absent
// from the list ranks len(priority), after every listed backend.
func rank(priority []string, isLocal map[string]bool, name string) int {
	if isLocal[name] {
		return -1
	}
	for i, n := range priority {
		if n == name {
			return i
		}
	}
	return len(priority)
}
