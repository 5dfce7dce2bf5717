package routing

import (
	"regexp"
	"strings"

	"github.com/aarondill/TaraBomSheets/internal/catalog"
)

// Classification decides which route family an item uses
type Classification int

const (
	Manufactured Classification = iota
	Assembly
)

// Suffix returns the route family suffix used in group-type keys
func (c Classification) Suffix() string {
	if c == Assembly {
		return "ASSY"
	}
	return "MFG"
}

func (c Classification) String() string {
	if c == Assembly {
		return "assembly"
	}
	return "manufactured"
}

var (
	assyWord       = regexp.MustCompile(`\bASSY\b`)
	fracmasterWord = regexp.MustCompile(`\bFRACMASTER\b`)
)

const assemblyComponentPrefix = "AP"

// Classify guesses whether item is an assembly. This is a best-effort
// heuristic over the description and component codes, checked in order:
// the whole word ASSY, the whole word FRACMASTER, any component code
// starting with AP. Everything else is manufactured.
func Classify(item catalog.CatalogItem, components []ComponentItem) Classification {
	if assyWord.MatchString(item.Description) {
		return Assembly
	}
	if fracmasterWord.MatchString(item.Description) {
		return Assembly
	}
	for _, c := range components {
		if strings.HasPrefix(c.ItemCode, assemblyComponentPrefix) {
			return Assembly
		}
	}
	return Manufactured
}
