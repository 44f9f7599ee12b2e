package preview

import "cherrypick/internal/types"

// conflictBags reports the bags where the merged decision is strictly more
// restrictive than the model's proposal. The merged decision always wins;
// the conflict flag only marks that the model underestimated the item so a
// reviewer can look at the label again.
func conflictBags(draft *types.Draft, decision types.Decision) []types.Bag {
	if draft == nil {
		return nil
	}
	var bags []types.Bag
	if types.MoreRestrictive(decision.CarryOn.Status, draft.CarryOn.Status) {
		bags = append(bags, types.BagCarryOn)
	}
	if types.MoreRestrictive(decision.Checked.Status, draft.Checked.Status) {
		bags = append(bags, types.BagChecked)
	}
	return bags
}
