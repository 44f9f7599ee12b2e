package perception

import (
	"cherrypick/internal/taxonomy"
	"cherrypick/internal/types"
)

// MissingParams returns the required parameters of canonical that are not
// present in params, in taxonomy order. When the category carries an
// at-least-one-of group and none of its members is present, every member is
// reported so the UI can offer all the ways to fill the gap. The caller
// merges request params, label hints, and model-extracted params before
// asking.
func MissingParams(canonical string, params types.ItemParams, tax *taxonomy.Engine) []string {
	var missing []string
	for _, name := range tax.RequiredParams(canonical) {
		if !params.Has(name) {
			missing = append(missing, string(name))
		}
	}
	if anyOf := tax.AnyOfParams(canonical); len(anyOf) > 0 {
		satisfied := false
		for _, name := range anyOf {
			if params.Has(name) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			for _, name := range anyOf {
				missing = append(missing, string(name))
			}
		}
	}
	return missing
}

// EffectiveParams layers the three parameter sources: explicit request
// params win, then label-derived hints, then what the model read off the
// label. Model numbers are only trusted when the guard accepted the draft.
func EffectiveParams(request types.ItemParams, label string, draft *types.Draft) types.ItemParams {
	merged := request.Merge(ExtractHints(label))
	if draft != nil {
		merged = merged.Merge(draft.Params)
	}
	return merged
}
