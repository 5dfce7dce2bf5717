package routing

// AssignStageIDs numbers the stage list and the components of one product.
//
// The first two stage lines share id 1 and every component gets id 1. From
// the third line on, each RouteStage opens the next stage; a resource stays
// in the stage it follows. With no stages at all the components stay
// unstaged.
func AssignStageIDs(stages []StageLine, items []ComponentItem) ([]Staged, []Staged) {
	stagedItems := make([]Staged, len(items))

	if len(stages) == 0 {
		for i, item := range items {
			stagedItems[i] = Staged{LineItem: item, StageID: Unstaged}
		}
		return nil, stagedItems
	}

	for i, item := range items {
		stagedItems[i] = Staged{LineItem: item, StageID: 1}
	}

	stagedStages := make([]Staged, len(stages))
	id := StageID(1)
	for i, s := range stages {
		if i >= 2 && s.Kind() == KindRouteStage {
			id++
		}
		stagedStages[i] = Staged{LineItem: s, StageID: id}
	}

	return stagedStages, stagedItems
}
