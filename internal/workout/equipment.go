package workout

import (
	"sort"
	"strings"
)

// EquipmentTag is a canonical equipment identifier.
type EquipmentTag string

// Equipment tag constants.
const (
	EquipmentBarbell      EquipmentTag = "barbell"
	EquipmentDumbbell     EquipmentTag = "dumbbell"
	EquipmentBodyweight   EquipmentTag = "bodyweight"
	EquipmentCable        EquipmentTag = "cable"
	EquipmentMachine      EquipmentTag = "machine"
	EquipmentKettlebell   EquipmentTag = "kettlebell"
	EquipmentBands        EquipmentTag = "bands"
	EquipmentMedicineBall EquipmentTag = "medicine_ball"
	EquipmentExerciseBall EquipmentTag = "exercise_ball"
	EquipmentEZBar        EquipmentTag = "ez_bar"
	EquipmentPVC          EquipmentTag = "pvc"
	EquipmentFlatBench    EquipmentTag = "flat_bench"
	EquipmentInclineBench EquipmentTag = "incline_bench"
	EquipmentDeclineBench EquipmentTag = "decline_bench"
	EquipmentSquatRack    EquipmentTag = "squat_rack"
	EquipmentSmithMachine EquipmentTag = "smith_machine"
	EquipmentPullupBar    EquipmentTag = "pullup_bar"
	EquipmentFoamRoll     EquipmentTag = "foam_roll"
)

// equipmentSet is a set of canonical equipment tags.
type equipmentSet map[EquipmentTag]struct{}

func newEquipmentSet(tags ...EquipmentTag) equipmentSet {
	s := make(equipmentSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

func (s equipmentSet) add(tags ...EquipmentTag) {
	for _, t := range tags {
		s[t] = struct{}{}
	}
}

func (s equipmentSet) contains(tag EquipmentTag) bool {
	_, ok := s[tag]
	return ok
}

// subsetOf reports whether every tag in s is available in other.
func (s equipmentSet) subsetOf(other equipmentSet) bool {
	for t := range s {
		if !other.contains(t) {
			return false
		}
	}
	return true
}

// containsAny reports whether any of the tags is in the set.
func (s equipmentSet) containsAny(tags ...EquipmentTag) bool {
	for _, t := range tags {
		if s.contains(t) {
			return true
		}
	}
	return false
}

// sorted returns the tags in lexical order for stable output and logging.
func (s equipmentSet) sorted() []EquipmentTag {
	tags := make([]EquipmentTag, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// declaredEquipmentTags maps raw catalog equipment strings to canonical tags.
var declaredEquipmentTags = map[string]EquipmentTag{
	"barbell":       EquipmentBarbell,
	"dumbbell":      EquipmentDumbbell,
	"dumbbells":     EquipmentDumbbell,
	"body only":     EquipmentBodyweight,
	"bodyweight":    EquipmentBodyweight,
	"cable":         EquipmentCable,
	"machine":       EquipmentMachine,
	"kettlebell":    EquipmentKettlebell,
	"kettlebells":   EquipmentKettlebell,
	"bands":         EquipmentBands,
	"medicine ball": EquipmentMedicineBall,
	"exercise ball": EquipmentExerciseBall,
	"e-z curl bar":  EquipmentEZBar,
	"foam roll":     EquipmentFoamRoll,
}

// equipmentRule adds tags implied by the exercise name. Rules are additive
// and order-independent: a rule never removes a tag added by another rule.
type equipmentRule struct {
	match func(name string) bool
	tags  []EquipmentTag
}

func nameContains(substrings ...string) func(string) bool {
	return func(name string) bool {
		for _, s := range substrings {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}
}

var nameEquipmentRules = []equipmentRule{
	{
		// A flat bench press still needs a bench even when the catalog only
		// declares the barbell. Incline/decline variants carry their own tag.
		match: func(name string) bool {
			return strings.Contains(name, "bench press") &&
				!strings.Contains(name, "incline") &&
				!strings.Contains(name, "decline")
		},
		tags: []EquipmentTag{EquipmentFlatBench},
	},
	{match: nameContains("incline"), tags: []EquipmentTag{EquipmentInclineBench}},
	{match: nameContains("decline"), tags: []EquipmentTag{EquipmentDeclineBench}},
	{match: nameContains("pvc"), tags: []EquipmentTag{EquipmentPVC}},
	{match: nameContains("medicine ball"), tags: []EquipmentTag{EquipmentMedicineBall}},
	{match: nameContains("landmine"), tags: []EquipmentTag{EquipmentBarbell, EquipmentSquatRack}},
	{match: nameContains("smith"), tags: []EquipmentTag{EquipmentSmithMachine}},
	{match: nameContains("cable"), tags: []EquipmentTag{EquipmentCable}},
	{match: nameContains("barbell"), tags: []EquipmentTag{EquipmentBarbell}},
	{match: nameContains("dumbbell"), tags: []EquipmentTag{EquipmentDumbbell}},
	{match: nameContains("kettlebell"), tags: []EquipmentTag{EquipmentKettlebell}},
	{match: nameContains("pull-up", "pull up", "chin-up", "chin up"), tags: []EquipmentTag{EquipmentPullupBar}},
	{match: nameContains("band"), tags: []EquipmentTag{EquipmentBands}},
}

// resolveEquipment maps an exercise to its full required-equipment set: the
// declared tag plus everything the name implies. Resolution is monotonic; the
// result is always a superset of the declared equipment and never empty.
func resolveEquipment(ex Exercise) equipmentSet {
	resolved := make(equipmentSet)
	if tag, ok := declaredEquipmentTags[strings.ToLower(strings.TrimSpace(ex.Equipment))]; ok {
		resolved.add(tag)
	}

	name := strings.ToLower(ex.Name)
	for _, rule := range nameEquipmentRules {
		if rule.match(name) {
			resolved.add(rule.tags...)
		}
	}

	if len(resolved) == 0 {
		resolved.add(EquipmentBodyweight)
	}
	return resolved
}

// loadableImplements are implements that take progressive external load.
var loadableImplements = []EquipmentTag{
	EquipmentBarbell,
	EquipmentDumbbell,
	EquipmentMachine,
	EquipmentCable,
	EquipmentKettlebell,
	EquipmentEZBar,
	EquipmentSmithMachine,
}

// isLoadable reports whether the resolved set includes a loadable implement.
func isLoadable(resolved equipmentSet) bool {
	return resolved.containsAny(loadableImplements...)
}

// isBandsOnly reports whether elastic resistance is the only implement in the
// resolved set.
func isBandsOnly(resolved equipmentSet) bool {
	if !resolved.contains(EquipmentBands) {
		return false
	}
	return resolved.subsetOf(newEquipmentSet(EquipmentBands, EquipmentBodyweight))
}

// isBodyweightOnly reports whether the exercise needs no equipment at all.
func isBodyweightOnly(resolved equipmentSet) bool {
	return resolved.subsetOf(newEquipmentSet(EquipmentBodyweight))
}
