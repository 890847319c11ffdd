package stats

import (
	"reflect"
	"testing"
)

func TestMergeCategories_Modern(t *testing.T) {
	source := map[string]any{
		"stats": map[string]any{
			"minecraft:custom": map[string]any{
				"minecraft:play_time": float64(72000),
				"minecraft:jump":      float64(10),
			},
			"minecraft:killed": map[string]any{
				"minecraft:zombie": float64(3),
			},
		},
		"DataVersion": float64(3700),
	}

	merged := MergeCategories(source)

	want := map[string]any{
		"custom": map[string]any{
			"play_time": float64(72000),
			"jump":      float64(10),
		},
		"killed": map[string]any{
			"zombie": float64(3),
		},
	}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged = %v, want %v", merged, want)
	}
}

func TestMergeCategories_ModdedNamespacePreserved(t *testing.T) {
	source := map[string]any{
		"stats": map[string]any{
			"minecraft:mined": map[string]any{
				"create:brass_block": float64(7),
			},
		},
	}

	merged := MergeCategories(source)
	mined := merged["mined"].(map[string]any)
	if mined["create:brass_block"] != float64(7) {
		t.Errorf("modded counter = %v, want 7 under its own namespace", mined)
	}
}

func TestMergeCategories_Legacy(t *testing.T) {
	source := map[string]any{
		"stat.mineBlock.minecraft.stone": float64(42),
		"stat.killEntity.Zombie":         float64(3),
		"stat.jump":                      float64(10),
		"stat.playOneMinute":             float64(72000),
		"achievement.openInventory":      float64(1), // not a stat, dropped
	}

	merged := MergeCategories(source)

	mined, ok := merged["mined"].(map[string]any)
	if !ok || mined["stone"] != float64(42) {
		t.Errorf("mined = %v, want stone: 42", merged["mined"])
	}
	killed, ok := merged["killed"].(map[string]any)
	if !ok || killed["Zombie"] != float64(3) {
		t.Errorf("killed = %v, want Zombie: 3", merged["killed"])
	}
	custom, ok := merged["custom"].(map[string]any)
	if !ok {
		t.Fatalf("custom category missing: %v", merged)
	}
	if custom["jump"] != float64(10) || custom["playOneMinute"] != float64(72000) {
		t.Errorf("custom = %v, want jump and playOneMinute counters", custom)
	}
	if _, ok := merged["achievement"]; ok {
		t.Error("achievement keys should not produce a category")
	}
}

func TestMergeCategories_AliasCollisionSums(t *testing.T) {
	// Two source counters normalizing to the same key are summed.
	source := map[string]any{
		"stats": map[string]any{
			"minecraft:custom": map[string]any{
				"minecraft:jump": float64(5),
				"jump":           float64(2),
			},
		},
	}

	merged := MergeCategories(source)
	custom := merged["custom"].(map[string]any)
	if custom["jump"] != float64(7) {
		t.Errorf("jump = %v, want 7 (summed)", custom["jump"])
	}
}

func TestMergeCategories_Empty(t *testing.T) {
	merged := MergeCategories(map[string]any{})
	if len(merged) != 0 {
		t.Errorf("merged = %v, want empty", merged)
	}
}

func TestMergeCategories_NonNumericIgnored(t *testing.T) {
	source := map[string]any{
		"stats": map[string]any{
			"minecraft:custom": map[string]any{
				"minecraft:jump": "many",
			},
		},
	}

	merged := MergeCategories(source)
	custom := merged["custom"].(map[string]any)
	if _, ok := custom["jump"]; ok {
		t.Error("non-numeric counter should be ignored")
	}
}
