package tree

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/phamducminh/rootline/pkg/slice"
)

// RenderGEDCOM serializes the snapshot as a GEDCOM-style text document.
//
// Individuals appear in id order. Family groups are derived from the graph:
// one per distinct parent set of a child, merged with spouse edges between
// the same pair, keyed and emitted in a deterministic order. Rendering the
// same snapshot twice is byte-identical.
func RenderGEDCOM(snapshot *Snapshot) []byte {
	var b strings.Builder

	b.WriteString("0 HEAD\n")
	b.WriteString("1 SOUR ROOTLINE\n")
	b.WriteString("1 GEDC\n")
	b.WriteString("2 VERS 5.5.1\n")
	b.WriteString("1 CHAR UTF-8\n")

	for _, p := range snapshot.People {
		fmt.Fprintf(&b, "0 @I%d@ INDI\n", p.ID)
		fmt.Fprintf(&b, "1 NAME %s /%s/\n", p.GivenName, p.FamilyName)
		if p.Gender != nil {
			fmt.Fprintf(&b, "1 SEX %s\n", gedcomSex(*p.Gender))
		}
		writeGedcomEvent(&b, "BIRT", p.BirthDate, p.BirthPlace)
		writeGedcomEvent(&b, "DEAT", p.DeathDate, p.DeathPlace)
	}

	for i, family := range buildFamilies(snapshot) {
		fmt.Fprintf(&b, "0 @F%d@ FAM\n", i+1)
		if len(family.partners) > 0 {
			fmt.Fprintf(&b, "1 HUSB @I%d@\n", family.partners[0])
		}
		if len(family.partners) > 1 {
			fmt.Fprintf(&b, "1 WIFE @I%d@\n", family.partners[1])
		}
		for _, child := range family.children {
			fmt.Fprintf(&b, "1 CHIL @I%d@\n", child)
		}
	}

	b.WriteString("0 TRLR\n")
	return []byte(b.String())
}

func writeGedcomEvent(b *strings.Builder, tag string, date, place *string) {
	if date == nil && place == nil {
		return
	}
	fmt.Fprintf(b, "1 %s\n", tag)
	if date != nil {
		fmt.Fprintf(b, "2 DATE %s\n", *date)
	}
	if place != nil {
		fmt.Fprintf(b, "2 PLAC %s\n", *place)
	}
}

func gedcomSex(gender string) string {
	switch strings.ToLower(gender) {
	case "male", "m":
		return "M"
	case "female", "f":
		return "F"
	}
	return "U"
}

// family is a partner pair (or single parent) with their shared children.
type family struct {
	key      string
	partners []int64
	children []int64
}

// buildFamilies groups parent and spouse edges into family units.
// The key is the sorted partner id list, so a child's two parents and the
// spouse edge between them land in the same unit.
func buildFamilies(snapshot *Snapshot) []family {
	parents := snapshot.parentMap()

	units := map[string]*family{}
	register := func(partners []int64) *family {
		sort.Slice(partners, func(i, j int) bool { return partners[i] < partners[j] })
		key := strings.Join(slice.Map(partners, func(id int64) string {
			return strconv.FormatInt(id, 10)
		}), ";")
		if unit, ok := units[key]; ok {
			return unit
		}
		unit := &family{key: key, partners: partners}
		units[key] = unit
		return unit
	}

	for _, edge := range snapshot.Edges {
		if edge.Type == "spouse" {
			register([]int64{edge.Person1ID, edge.Person2ID})
		}
	}

	// Children sorted for a stable CHIL order within each unit.
	childIDs := make([]int64, 0, len(parents))
	for childID := range parents {
		childIDs = append(childIDs, childID)
	}
	sort.Slice(childIDs, func(i, j int) bool { return childIDs[i] < childIDs[j] })

	for _, childID := range childIDs {
		unit := register(append([]int64(nil), parents[childID]...))
		unit.children = append(unit.children, childID)
	}

	ordered := make([]family, 0, len(units))
	for _, unit := range units {
		ordered = append(ordered, *unit)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })
	return ordered
}
