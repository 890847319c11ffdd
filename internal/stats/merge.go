package stats

import "strings"

// legacyCategoryAliases maps legacy flat stat prefixes to the normalized
// category names used by the modern format. The schema changed across game
// versions; the merge step absorbs that variance so consumers see one
// stable shape.
var legacyCategoryAliases = map[string]string{
	"mineBlock":      "mined",
	"breakItem":      "broken",
	"craftItem":      "crafted",
	"useItem":        "used",
	"pickup":         "picked_up",
	"drop":           "dropped",
	"killEntity":     "killed",
	"entityKilledBy": "killed_by",
}

// MergeCategories collapses a raw statistics document into the normalized
// schema: category and counter keys lose their "minecraft:" namespace, and
// legacy flat "stat.*" keys are regrouped under their modern category names.
// Counters that alias to the same normalized key are summed.
func MergeCategories(source map[string]any) map[string]any {
	merged := make(map[string]any)

	if stats, ok := source["stats"].(map[string]any); ok {
		// Modern format: {"stats": {"minecraft:mined": {"minecraft:stone": 1}}}
		for category, counters := range stats {
			m, ok := counters.(map[string]any)
			if !ok {
				continue
			}
			bucket := categoryBucket(merged, stripNamespace(category))
			for key, value := range m {
				addCounter(bucket, stripNamespace(key), value)
			}
		}
		return merged
	}

	// Legacy format: {"stat.mineBlock.minecraft.stone": 1, "stat.jump": 2}
	for key, value := range source {
		category, counter, ok := splitLegacyKey(key)
		if !ok {
			continue
		}
		addCounter(categoryBucket(merged, category), counter, value)
	}
	return merged
}

// stripNamespace removes a "minecraft:" prefix, leaving other namespaces
// (modded counters) intact.
func stripNamespace(key string) string {
	return strings.TrimPrefix(key, "minecraft:")
}

// splitLegacyKey parses a legacy "stat.<type>[.<qualifier>...]" key into a
// normalized (category, counter) pair. Untyped stats ("stat.jump") land in
// the custom category.
func splitLegacyKey(key string) (category, counter string, ok bool) {
	rest, ok := strings.CutPrefix(key, "stat.")
	if !ok || rest == "" {
		return "", "", false
	}

	head, tail, hasQualifier := strings.Cut(rest, ".")
	alias, aliased := legacyCategoryAliases[head]
	if !aliased || !hasQualifier {
		// "stat.jump", "stat.playOneMinute" and similar counters.
		return "custom", rest, true
	}

	// "stat.mineBlock.minecraft.stone" -> ("mined", "stone")
	counter = strings.TrimPrefix(tail, "minecraft.")
	counter = strings.ReplaceAll(counter, ".", "_")
	return alias, counter, true
}

func categoryBucket(merged map[string]any, category string) map[string]any {
	if bucket, ok := merged[category].(map[string]any); ok {
		return bucket
	}
	bucket := make(map[string]any)
	merged[category] = bucket
	return bucket
}

// addCounter adds a numeric counter into a bucket, summing on collision.
// JSON numbers decode as float64.
func addCounter(bucket map[string]any, key string, value any) {
	n, ok := value.(float64)
	if !ok {
		return
	}
	if prev, ok := bucket[key].(float64); ok {
		n += prev
	}
	bucket[key] = n
}
